package rewrite

import (
	"go/ast"
	"go/token"

	"github.com/aticu/pre/internal/diag"
	"github.com/aticu/pre/internal/directive"
	"github.com/aticu/pre/internal/encode"
)

// callee describes what a call expression's function operand looks like.
type callee struct {
	// segments is the full dotted path when the operand is a plain
	// identifier chain, nil otherwise.
	segments []string
	// method is true for receiver-based calls: a selector whose leftmost
	// operand is not an imported package name.
	method bool
	// generic is the instantiation wrapper around the path, if any.
	generic ast.Expr
}

// resolveCallee classifies call.Fun. pkgNames holds the local names of the
// file's imports; a selector rooted in one of them is a cross-package
// function path, anything else with a receiver is a method call.
func resolveCallee(call *ast.CallExpr, pkgNames map[string]bool) callee {
	fun := call.Fun
	var generic ast.Expr
	switch g := fun.(type) {
	case *ast.IndexExpr:
		generic, fun = g, g.X
	case *ast.IndexListExpr:
		generic, fun = g, g.X
	}

	segments := identChain(fun)
	if segments == nil {
		return callee{}
	}
	method := len(segments) > 1 && !pkgNames[segments[0]]
	return callee{segments: segments, method: method, generic: generic}
}

// identChain flattens a selector chain of plain identifiers, or nil.
func identChain(expr ast.Expr) []string {
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}
	case *ast.SelectorExpr:
		base := identChain(e.X)
		if base == nil {
			return nil
		}
		return append(base, e.Sel.Name)
	default:
		return nil
	}
}

// pathExpr builds the selector chain for dotted path segments.
func pathExpr(segments []string) ast.Expr {
	var expr ast.Expr = ast.NewIdent(segments[0])
	for _, seg := range segments[1:] {
		expr = &ast.SelectorExpr{X: expr, Sel: ast.NewIdent(seg)}
	}
	return expr
}

// forwardTarget is a resolved redirection.
type forwardTarget struct {
	// rewrite is the new callee path when the call itself is redirected
	// (direct and replace forms on function calls).
	rewrite []string
	// stub is the zero-argument stub path when only the contract lookup is
	// redirected (impl forwards, and any forward on a method call).
	stub []string
}

// resolveForward turns a forward/def directive into a concrete target for
// the given callee. Returns nil after reporting when resolution fails.
func resolveForward(fwd *directive.Forward, c callee, fset *token.FileSet, callPos token.Pos, sink *diag.Sink) *forwardTarget {
	pos := fwd.Pos

	if c.segments == nil {
		sink.ErrorWithHelp(fset.Position(callPos),
			"use a direct path to the function instead",
			"unable to determine at compile time which function is being called")
		return nil
	}

	fnName := c.segments[len(c.segments)-1]

	switch fwd.Kind {
	case directive.ForwardImpl:
		return &forwardTarget{stub: stubPath(fwd.Path, fnName)}

	case directive.ForwardReplace:
		if c.method {
			sink.ErrorWithHelp(pos,
				"replace it with a direct location, such as "+directive.JoinPath(fwd.To),
				"a replacement forward directive is not supported for method calls")
			return nil
		}
		rewritten := replacePrefix(fwd.From, fwd.To, c.segments, pos, sink)
		if rewritten == nil {
			return nil
		}
		return &forwardTarget{rewrite: rewritten}

	default: // direct
		if c.method {
			// Directing a method forward is equivalent to the impl form:
			// the call itself keeps its receiver-based invocation and only
			// the stub carries the contract.
			return &forwardTarget{stub: stubPath(fwd.Path, fnName)}
		}
		return &forwardTarget{rewrite: append(append([]string{}, fwd.Path...), c.segments...)}
	}
}

// stubPath addresses the generated marker stub for an impl block: the last
// segment of the directive path names the owning type, the rest the mirror
// module it lives in.
func stubPath(implPath []string, fnName string) []string {
	typeName := implPath[len(implPath)-1]
	out := append([]string{}, implPath[:len(implPath)-1]...)
	return append(out, encode.ImplStubName(typeName, fnName))
}

// replacePrefix verifies that from is a segment-wise prefix of path and
// splices to in its place. On mismatch it reports the first differing
// segment and suggests a valid prefix.
func replacePrefix(from, to, path []string, pos token.Position, sink *diag.Sink) []string {
	if len(from) > len(path) {
		sink.ErrorWithHelp(pos,
			"try specifying a prefix of "+directive.JoinPath(path),
			"cannot replace %s in this path: the prefix is longer than the path itself",
			directive.JoinPath(from))
		return nil
	}
	for i := range from {
		if from[i] != path[i] {
			sink.ErrorWithHelp(pos,
				"try specifying a prefix of "+directive.JoinPath(path),
				"cannot replace %s in this path: %s != %s",
				directive.JoinPath(from), from[i], path[i])
			return nil
		}
	}
	out := append([]string{}, to...)
	return append(out, path[len(from):]...)
}
