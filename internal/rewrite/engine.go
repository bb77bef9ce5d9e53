package rewrite

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/tools/go/ast/astutil"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/diag"
	"github.com/aticu/pre/internal/directive"
	"github.com/aticu/pre/internal/encode"
)

// DefaultSupportImport is the import path of the runtime support package
// referenced by generated assertions.
const DefaultSupportImport = "github.com/aticu/pre"

// Config selects how one engine instance rewrites. A strategy is chosen
// once per configuration and applied to every file of the run.
type Config struct {
	// Tags is the set of enabled build tags for when(...) predicates.
	Tags map[string]bool
	// Strategy selects the contract encoding. Empty means structural.
	Strategy encode.Strategy
	// SupportImport overrides the runtime support package import path.
	// Empty means DefaultSupportImport.
	SupportImport string
}

// Engine is the synchronous, single-pass source rewriter. Each file is
// parsed, rewritten and emitted independently and deterministically; no
// state survives between calls.
type Engine struct {
	cfg Config
	enc encode.Encoder
}

// New creates an engine for the given configuration.
func New(cfg Config) (*Engine, error) {
	enc, err := encode.New(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if cfg.SupportImport == "" {
		cfg.SupportImport = DefaultSupportImport
	}
	return &Engine{cfg: cfg, enc: enc}, nil
}

// DeclContract records the contract attached to one rewritten declaration,
// for the documentation renderer and the contract index.
type DeclContract struct {
	// Name is the function or method name.
	Name string
	// Receiver is the receiver type name for methods, empty otherwise.
	Receiver string
	// Clauses is the active precondition list in canonical order, with
	// canonically-equal duplicates removed.
	Clauses []contract.Precondition
	// NoDoc marks declarations excluded from generated documentation.
	NoDoc bool
	// Pos is the declaration's position.
	Pos token.Position
}

// Result is the outcome of rewriting one file.
type Result struct {
	// PassID identifies this pass.
	PassID uuid.UUID
	// Output is the rewritten source, or the original input unchanged when
	// the pass recorded hard errors (best-effort fallback so downstream
	// tooling keeps working).
	Output []byte
	// Rewritten is false when Output is the fallback or when nothing in
	// the file carried annotations.
	Rewritten bool
	// Diagnostics holds everything the pass reported, flushed atomically.
	Diagnostics []diag.Diagnostic
	// Contracts lists the declarations whose contracts were rewritten.
	Contracts []DeclContract
}

// fileContext carries the per-file state threaded through one pass.
type fileContext struct {
	fset *token.FileSet
	sink *diag.Sink
	cmap ast.CommentMap
	// pkgNames holds the local names of the file's imports; used to tell
	// package-qualified function paths from method calls.
	pkgNames map[string]bool
	// supportAlias is the local name the support package is (or will be)
	// imported under. Resolved once per file and passed explicitly.
	supportAlias string
	// supportImported is true if the file already imports the support
	// package.
	supportImported bool
	// needSupport is set when generated code references the support
	// package.
	needSupport bool
	// callDirectives counts call annotations seen in the current
	// declaration, for the redundant-sentinel warning.
	callDirectives int
	// companions collects declarations to append to the file.
	companions []ast.Decl
	// contracts collects rewritten declaration contracts.
	contracts []DeclContract
	// touched is set as soon as anything in the file was rewritten.
	touched bool
}

// RewriteFile runs one pass over a single source file and returns the
// rewritten text together with all diagnostics.
func (e *Engine) RewriteFile(filename string, src []byte) (*Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	sink := diag.NewSink()
	fctx := &fileContext{
		fset: fset,
		sink: sink,
		cmap: ast.NewCommentMap(fset, file, file.Comments),
	}
	e.resolveImports(file, fctx)

	for _, d := range file.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		e.processFunc(fn, fctx)
	}

	if len(fctx.companions) > 0 {
		file.Decls = append(file.Decls, fctx.companions...)
		fctx.touched = true
	}
	if fctx.needSupport && !fctx.supportImported {
		astutil.AddImport(fset, file, e.cfg.SupportImport)
	}

	res := &Result{PassID: sink.PassID, Contracts: fctx.contracts}

	if sink.HasErrors() || !fctx.touched {
		// Dummy fallback: hand back the input so downstream tooling can
		// keep presenting diagnostics on real code.
		res.Output = src
		res.Diagnostics = sink.Flush()
		return res, nil
	}

	// The output is compile-only shadow source: comments are dropped so the
	// printer cannot displace them into generated code. Build constraints
	// must survive the drop or the shadow file would compile into every
	// configuration.
	constraints := buildConstraints(file)
	file.Comments = nil

	var buf bytes.Buffer
	for _, line := range constraints {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if len(constraints) > 0 {
		buf.WriteByte('\n')
	}
	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("print %s: %w", filename, err)
	}

	res.Output = buf.Bytes()
	res.Rewritten = true
	res.Diagnostics = sink.Flush()
	return res, nil
}

// buildConstraints collects the build constraint lines from the file
// header. Only comments before the package clause can constrain the build.
func buildConstraints(file *ast.File) []string {
	var lines []string
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if strings.HasPrefix(c.Text, "//go:build") || strings.HasPrefix(c.Text, "// +build") {
				lines = append(lines, c.Text)
			}
		}
	}
	return lines
}

// resolveImports records the file's import names and the support package
// alias.
func (e *Engine) resolveImports(file *ast.File, fctx *fileContext) {
	fctx.pkgNames = make(map[string]bool)
	fctx.supportAlias = "pre"

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(importPath)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		fctx.pkgNames[name] = true
		if importPath == e.cfg.SupportImport {
			fctx.supportAlias = name
			fctx.supportImported = true
		}
	}
}

// processFunc applies declaration and call-site rewriting to one function.
func (e *Engine) processFunc(fn *ast.FuncDecl, fctx *fileContext) {
	ann := directive.ParseDecl(fn, fctx.fset, fctx.sink)
	if !ann.Present {
		e.warnOrphanedCallDirectives(fn, fctx)
		return
	}

	fctx.callDirectives = 0
	if fn.Body != nil {
		e.processBlocks(fn.Body, fctx)
	}

	if len(ann.Preconditions) > 0 {
		e.rewriteDecl(fn, ann, fctx)
	} else if !ann.NoDoc && !ann.NoDebugAssert && fctx.callDirectives == 0 {
		fctx.sink.Warnf(ann.Span, "this directive does not do anything")
	}
}

// processBlocks rewrites annotated call statements in every statement list
// of the body.
func (e *Engine) processBlocks(body *ast.BlockStmt, fctx *fileContext) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.BlockStmt:
			node.List = e.processStmts(node.List, fctx)
		case *ast.CaseClause:
			node.Body = e.processStmts(node.Body, fctx)
		case *ast.CommClause:
			node.Body = e.processStmts(node.Body, fctx)
		}
		return true
	})
}

func (e *Engine) processStmts(list []ast.Stmt, fctx *fileContext) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list))
	for _, stmt := range list {
		ann := directive.ParseCallComments(fctx.cmap[stmt], fctx.fset, fctx.sink)
		if !ann.Present {
			out = append(out, stmt)
			continue
		}
		fctx.callDirectives++
		repl := e.rewriteCallStmt(stmt, ann, fctx)
		if repl == nil {
			out = append(out, stmt)
			continue
		}
		fctx.touched = true
		out = append(out, repl...)
	}
	return out
}

// warnOrphanedCallDirectives reports call annotations inside functions that
// never enabled assurance processing; they would otherwise be silently
// ignored.
func (e *Engine) warnOrphanedCallDirectives(fn *ast.FuncDecl, fctx *fileContext) {
	if fn.Body == nil {
		return
	}
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		stmt, ok := n.(ast.Stmt)
		if !ok {
			return true
		}
		for _, group := range fctx.cmap[stmt] {
			for _, c := range group.List {
				if hasCallDirective(c.Text) {
					fctx.sink.WarnWithHelp(fctx.fset.Position(c.Pos()),
						"add a //pre: directive to "+fn.Name.Name+" to enable assurance processing",
						"this directive is ignored because the enclosing function has no //pre: directive")
				}
			}
		}
		return true
	})
}

func hasCallDirective(comment string) bool {
	for _, prefix := range []string{directive.AssurePrefix, directive.ForwardPrefix, directive.DefPrefix} {
		if len(comment) >= len(prefix) && comment[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
