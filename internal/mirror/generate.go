package mirror

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"path"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/doc"
	"github.com/aticu/pre/internal/encode"
)

// File is one generated mirror source file, addressed relative to the
// mirror root directory.
type File struct {
	Path   string
	Source []byte
}

// GenerateTree expands the skeleton and all nested modules. Every module
// becomes its own package directory under its parent, so the generated
// layout mirrors the source package hierarchy. A module that only holds
// submodules contributes no file of its own.
func GenerateTree(sk *Skeleton) ([]File, error) {
	return generateTree(sk, "")
}

func generateTree(sk *Skeleton, dir string) ([]File, error) {
	var files []File
	if !sk.bodyEmpty() {
		src, err := Generate(sk)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path.Join(dir, sk.Package+".go"), Source: src})
	}
	for _, mod := range sk.Mods {
		sub, err := generateTree(mod, path.Join(dir, mod.Package))
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}
	return files, nil
}

func (sk *Skeleton) bodyEmpty() bool {
	return len(sk.Funcs) == 0 && len(sk.Impls) == 0 && sk.Reexports.empty()
}

// Generate expands the skeleton into one annotated Go source file. The
// output carries ordinary comment directives, so feeding it through the
// rewrite engine attaches the declared contracts like on hand-written code.
func Generate(sk *Skeleton) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "// Code generated by pre mirror; DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "// Package %s mirrors %s with attached contracts.\n", sk.Package, sk.Source)
	fmt.Fprintf(&b, "package %s\n\n", sk.Package)

	alias := sourceAlias(sk)
	fmt.Fprintf(&b, "import %s %q\n\n", alias, sk.Source)

	writeReexports(&b, sk.Reexports, alias)

	for _, fn := range sk.Funcs {
		if err := writeWrapper(&b, fn, alias); err != nil {
			return nil, err
		}
	}
	for _, impl := range sk.Impls {
		writeImplStubs(&b, impl)
	}

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated mirror for %s: %w", sk.Source, err)
	}
	return src, nil
}

// sourceAlias picks the local import name for the mirrored package. The
// path base is used when it is a usable identifier distinct from the mirror
// package itself.
func sourceAlias(sk *Skeleton) string {
	base := path.Base(sk.Source)
	if !isGoIdent(base) || base == sk.Package {
		return "source"
	}
	return base
}

func writeReexports(b *bytes.Buffer, re Reexports, alias string) {
	for _, name := range re.Types {
		fmt.Fprintf(b, "type %s = %s.%s\n", name, alias, name)
	}
	for _, name := range re.Consts {
		fmt.Fprintf(b, "const %s = %s.%s\n", name, alias, name)
	}
	for _, name := range re.Funcs {
		fmt.Fprintf(b, "var %s = %s.%s\n", name, alias, name)
	}
	if !re.empty() {
		fmt.Fprintln(b)
	}
}

// writeWrapper emits one thin delegating wrapper with its directives.
func writeWrapper(b *bytes.Buffer, fn FuncSpec, alias string) error {
	fmt.Fprintf(b, "// %s delegates to %s.%s.\n", fn.Name, alias, fn.Name)
	if !fn.NoDoc {
		if block := doc.Comment(clausesOf(fn.Preconditions)); block != "" {
			fmt.Fprintf(b, "//\n%s", block)
		}
	}
	writeDirectives(b, fn.Preconditions)
	if fn.NoDoc {
		fmt.Fprintf(b, "//pre: no_doc\n")
	}
	if fn.NoDebugAssert {
		fmt.Fprintf(b, "//pre: no_debug_assert\n")
	}
	if len(fn.Preconditions) == 0 {
		// Nothing declared: the bare sentinel still marks the wrapper as
		// contract-aware.
		fmt.Fprintf(b, "//pre:\n")
	}

	fmt.Fprintf(b, "%s {\n\t", fn.Signature)
	if returnsResults(fn.Decl) {
		fmt.Fprintf(b, "return ")
	}
	fmt.Fprintf(b, "%s.%s(%s)\n}\n\n", alias, fn.Name, delegationArgs(fn.Decl))
	return nil
}

// writeImplStubs emits the zero-argument marker stubs carrying the method
// contracts of one impl block.
func writeImplStubs(b *bytes.Buffer, impl ImplSpec) {
	for _, m := range impl.Methods {
		stub := encode.ImplStubName(impl.TypeName, m.Name)
		fmt.Fprintf(b, "// %s carries the contract of (%s).%s and is never called directly.\n",
			stub, impl.TypeName, m.Name)
		if !m.NoDoc {
			if block := doc.Comment(clausesOf(m.Preconditions)); block != "" {
				fmt.Fprintf(b, "//\n%s", block)
			}
		}
		writeDirectives(b, m.Preconditions)
		if m.NoDoc {
			fmt.Fprintf(b, "//pre: no_doc\n")
		}
		if len(m.Preconditions) == 0 {
			fmt.Fprintf(b, "//pre:\n")
		}
		fmt.Fprintf(b, "func %s() {}\n\n", stub)
	}
}

func writeDirectives(b *bytes.Buffer, clauses []contract.CfgPrecondition) {
	for _, c := range clauses {
		fmt.Fprintf(b, "//pre: %s\n", clauseDirective(c))
	}
}

// clauseDirective renders a clause back into directive payload form.
func clauseDirective(c contract.CfgPrecondition) string {
	display := contract.Display(c.Precondition)
	if c.When != "" {
		return fmt.Sprintf("when(%s) %s", c.When, display)
	}
	return display
}

func clausesOf(clauses []contract.CfgPrecondition) []contract.Precondition {
	out := make([]contract.Precondition, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, c.Precondition)
	}
	return out
}

func returnsResults(decl *ast.FuncDecl) bool {
	return decl.Type.Results != nil && len(decl.Type.Results.List) > 0
}

// delegationArgs flattens the wrapper's parameter names into the argument
// list of the delegating call, spreading a trailing variadic parameter.
func delegationArgs(decl *ast.FuncDecl) string {
	var b bytes.Buffer
	params := decl.Type.Params.List
	for i, param := range params {
		variadic := i == len(params)-1 && isEllipsis(param.Type)
		for j, name := range param.Names {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name.Name)
			if variadic && j == len(param.Names)-1 {
				b.WriteString("...")
			}
		}
	}
	return b.String()
}

func isEllipsis(expr ast.Expr) bool {
	_, ok := expr.(*ast.Ellipsis)
	return ok
}
