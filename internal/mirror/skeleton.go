// Package mirror expands CUE skeletons into annotated Go source.
//
// A skeleton describes the contract surface of a package that cannot carry
// annotations itself (typically the standard library or a third-party
// dependency). Expanding it yields a mirror package of thin delegating
// wrappers, re-export aliases and impl-block marker stubs, all annotated
// with the usual comment directives so the rewrite engine can process the
// generated source like hand-written code.
package mirror

import (
	"fmt"
	"go/ast"
	"go/parser"
	gotoken "go/token"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/directive"
)

// Skeleton is a parsed mirror description.
type Skeleton struct {
	// Source is the import path of the mirrored package.
	Source string
	// Package is the name of the generated mirror package.
	Package string
	// Reexports lists names surfaced unchanged from the source package.
	Reexports Reexports
	// Funcs are the wrapper functions, in skeleton order.
	Funcs []FuncSpec
	// Impls are the method contract blocks, in skeleton order.
	Impls []ImplSpec
	// Mods are nested modules, each expanded into its own mirror
	// package under the parent's directory.
	Mods []*Skeleton
}

// Reexports are grouped by declaration form because Go aliases types,
// constants and function values differently.
type Reexports struct {
	Types  []string
	Consts []string
	Funcs  []string
}

// FuncSpec is one wrapper function.
type FuncSpec struct {
	// Name of the wrapped function in the source package.
	Name string
	// Signature is the author-written Go signature text.
	Signature string
	// Decl is the parsed signature; the receiver is always nil and every
	// parameter is named.
	Decl *ast.FuncDecl
	// Preconditions in skeleton order.
	Preconditions []contract.CfgPrecondition
	NoDoc         bool
	NoDebugAssert bool
}

// ImplSpec is one impl block: method contracts for a type of the source
// package, carried by generated zero-argument marker stubs.
type ImplSpec struct {
	TypeName string
	Methods  []MethodSpec
}

// MethodSpec is one method contract inside an impl block.
type MethodSpec struct {
	Name          string
	Preconditions []contract.CfgPrecondition
	NoDoc         bool
}

// SkeletonError is a skeleton compilation error with source position.
type SkeletonError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SkeletonError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load compiles skeleton source into a Skeleton.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func Load(filename string, src []byte) (*Skeleton, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return Compile(v)
}

// Compile parses a CUE value into a Skeleton. The value is the skeleton
// struct itself, with source, package, and optional reexport/fn/impl/mod
// fields at its top level.
func Compile(v cue.Value) (*Skeleton, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	source, err := requiredString(v, "source")
	if err != nil {
		return nil, err
	}

	pkg, err := requiredString(v, "pkg")
	if err != nil {
		return nil, err
	}
	if !isGoIdent(pkg) {
		return nil, &SkeletonError{
			Field:   "pkg",
			Message: fmt.Sprintf("%q is not a valid Go package name", pkg),
			Pos:     v.LookupPath(cue.ParsePath("pkg")).Pos(),
		}
	}

	return compileModule(v, source, pkg, "")
}

// compileModule parses the shared module shape. The same shape recurs under
// every mod field, so nested modules reuse the whole pipeline with only the
// error field prefix and the source/pkg defaults differing.
func compileModule(v cue.Value, source, pkg, prefix string) (*Skeleton, error) {
	sk := &Skeleton{Source: source, Package: pkg}

	var err error
	sk.Reexports, err = parseReexports(v, prefix)
	if err != nil {
		return nil, err
	}
	sk.Funcs, err = parseFuncs(v, prefix)
	if err != nil {
		return nil, err
	}
	sk.Impls, err = parseImpls(v, prefix)
	if err != nil {
		return nil, err
	}
	sk.Mods, err = parseMods(v, sk, prefix)
	if err != nil {
		return nil, err
	}

	if len(sk.Funcs) == 0 && len(sk.Impls) == 0 && len(sk.Mods) == 0 && sk.Reexports.empty() {
		return nil, &SkeletonError{
			Field:   prefix + "fn",
			Message: "skeleton declares nothing to generate",
			Pos:     v.Pos(),
		}
	}

	return sk, nil
}

// parseMods reads the optional mod struct: one nested module per field.
// A nested module mirrors a subpackage of the parent source; its source
// and package name default to the parent source extended by the label and
// the label itself, and both can be overridden explicitly.
func parseMods(v cue.Value, parent *Skeleton, prefix string) ([]*Skeleton, error) {
	modVal := v.LookupPath(cue.ParsePath("mod"))
	if !modVal.Exists() {
		return nil, nil
	}

	iter, err := modVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var mods []*Skeleton
	for iter.Next() {
		label := iter.Label()
		field := prefix + "mod." + label
		mv := iter.Value()

		if !isGoIdent(label) {
			return nil, &SkeletonError{
				Field:   field,
				Message: fmt.Sprintf("%q is not a valid module name", label),
				Pos:     mv.Pos(),
			}
		}

		source, err := optionalString(mv, "source", parent.Source+"/"+label)
		if err != nil {
			return nil, err
		}
		pkg, err := optionalString(mv, "pkg", label)
		if err != nil {
			return nil, err
		}
		if !isGoIdent(pkg) {
			return nil, &SkeletonError{
				Field:   field + ".pkg",
				Message: fmt.Sprintf("%q is not a valid Go package name", pkg),
				Pos:     mv.LookupPath(cue.ParsePath("pkg")).Pos(),
			}
		}

		sub, err := compileModule(mv, source, pkg, field+".")
		if err != nil {
			return nil, err
		}
		mods = append(mods, sub)
	}

	return mods, nil
}

func (r Reexports) empty() bool {
	return len(r.Types) == 0 && len(r.Consts) == 0 && len(r.Funcs) == 0
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &SkeletonError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &SkeletonError{
			Field:   field,
			Message: field + " must not be empty",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

func optionalString(v cue.Value, field, fallback string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return fallback, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &SkeletonError{
			Field:   field,
			Message: field + " must not be empty",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// parseReexports reads the optional reexport struct with types, consts and
// funcs name lists.
func parseReexports(v cue.Value, prefix string) (Reexports, error) {
	var out Reexports

	reVal := v.LookupPath(cue.ParsePath("reexport"))
	if !reVal.Exists() {
		return out, nil
	}

	for _, group := range []struct {
		field string
		into  *[]string
	}{
		{"types", &out.Types},
		{"consts", &out.Consts},
		{"funcs", &out.Funcs},
	} {
		listVal := reVal.LookupPath(cue.ParsePath(group.field))
		if !listVal.Exists() {
			continue
		}
		iter, err := listVal.List()
		if err != nil {
			return out, formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return out, formatCUEError(err)
			}
			if !isGoIdent(name) {
				return out, &SkeletonError{
					Field:   prefix + "reexport." + group.field,
					Message: fmt.Sprintf("%q is not a valid Go identifier", name),
					Pos:     iter.Value().Pos(),
				}
			}
			*group.into = append(*group.into, name)
		}
	}

	return out, nil
}

// parseFuncs reads the optional fn struct: one field per wrapper, labeled by
// function name.
func parseFuncs(v cue.Value, prefix string) ([]FuncSpec, error) {
	var funcs []FuncSpec

	fnVal := v.LookupPath(cue.ParsePath("fn"))
	if !fnVal.Exists() {
		return funcs, nil
	}

	iter, err := fnVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		fv := iter.Value()

		sigVal := fv.LookupPath(cue.ParsePath("signature"))
		if !sigVal.Exists() {
			return nil, &SkeletonError{
				Field:   prefix + "fn." + name,
				Message: "signature is required",
				Pos:     fv.Pos(),
			}
		}
		sig, err := sigVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		decl, err := parseSignature(name, sig)
		if err != nil {
			return nil, &SkeletonError{
				Field:   prefix + "fn." + name + ".signature",
				Message: err.Error(),
				Pos:     sigVal.Pos(),
			}
		}

		pre, err := parseClauses(fv, prefix+"fn."+name)
		if err != nil {
			return nil, err
		}

		funcs = append(funcs, FuncSpec{
			Name:          name,
			Signature:     sig,
			Decl:          decl,
			Preconditions: pre,
			NoDoc:         boolField(fv, "no_doc"),
			NoDebugAssert: boolField(fv, "no_debug_assert"),
		})
	}

	return funcs, nil
}

// parseImpls reads the optional impl struct: one field per mirrored type,
// each with a method struct.
func parseImpls(v cue.Value, prefix string) ([]ImplSpec, error) {
	var impls []ImplSpec

	implVal := v.LookupPath(cue.ParsePath("impl"))
	if !implVal.Exists() {
		return impls, nil
	}

	iter, err := implVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		typeName := iter.Label()
		impl := ImplSpec{TypeName: typeName}

		methodVal := iter.Value().LookupPath(cue.ParsePath("method"))
		if !methodVal.Exists() {
			return nil, &SkeletonError{
				Field:   prefix + "impl." + typeName,
				Message: "at least one method is required",
				Pos:     iter.Value().Pos(),
			}
		}

		methodIter, err := methodVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for methodIter.Next() {
			name := methodIter.Label()
			pre, err := parseClauses(methodIter.Value(), prefix+"impl."+typeName+".method."+name)
			if err != nil {
				return nil, err
			}
			impl.Methods = append(impl.Methods, MethodSpec{
				Name:          name,
				Preconditions: pre,
				NoDoc:         boolField(methodIter.Value(), "no_doc"),
			})
		}
		if len(impl.Methods) == 0 {
			return nil, &SkeletonError{
				Field:   prefix + "impl." + typeName,
				Message: "at least one method is required",
				Pos:     iter.Value().Pos(),
			}
		}

		impls = append(impls, impl)
	}

	return impls, nil
}

// parseClauses reads the optional pre list of clause payloads. Clauses are
// validated here so skeleton errors surface at compile time, not when the
// generated source is later rewritten.
func parseClauses(v cue.Value, field string) ([]contract.CfgPrecondition, error) {
	preVal := v.LookupPath(cue.ParsePath("pre"))
	if !preVal.Exists() {
		return nil, nil
	}

	iter, err := preVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var clauses []contract.CfgPrecondition
	for iter.Next() {
		payload, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		clause, err := directive.ParseCfgClause(payload)
		if err != nil {
			return nil, &SkeletonError{
				Field:   field + ".pre",
				Message: err.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		clauses = append(clauses, clause)
	}

	if err := contract.CheckPredicates(clauses); err != nil {
		return nil, &SkeletonError{
			Field:   field + ".pre",
			Message: err.Error(),
			Pos:     preVal.Pos(),
		}
	}

	return clauses, nil
}

func boolField(v cue.Value, field string) bool {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false
	}
	b, err := fv.Bool()
	return err == nil && b
}

// parseSignature parses a Go function signature like
// "func Read(src *byte, n int) int" and validates it as a wrapper shape.
func parseSignature(name, sig string) (*ast.FuncDecl, error) {
	file, err := parser.ParseFile(gotoken.NewFileSet(), "signature.go", "package p\n"+sig, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	if len(file.Decls) != 1 {
		return nil, fmt.Errorf("signature must contain exactly one function declaration")
	}
	decl, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok {
		return nil, fmt.Errorf("signature must be a function declaration")
	}
	if decl.Recv != nil {
		return nil, fmt.Errorf("wrapper signatures cannot have a receiver, use an impl block")
	}
	if decl.Name.Name != name {
		return nil, fmt.Errorf("signature names %s, field is labeled %s", decl.Name.Name, name)
	}
	for _, param := range decl.Type.Params.List {
		if len(param.Names) == 0 {
			return nil, fmt.Errorf("every parameter must be named so the wrapper can delegate")
		}
	}
	return decl, nil
}

func isGoIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		return &SkeletonError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
