package rewrite

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"

	"github.com/aticu/pre/internal/directive"
	"github.com/aticu/pre/internal/encode"
)

// rewriteCallStmt rewrites one annotated call statement. It returns the
// replacement statement list, or nil when the statement must be left
// unmodified (no unambiguous call, or a structural error already reported).
func (e *Engine) rewriteCallStmt(stmt ast.Stmt, ann directive.CallAnnotations, fctx *fileContext) []ast.Stmt {
	call := extractFromStmt(stmt)
	if call == nil {
		// Descent found no unambiguous call: warn and leave the expression
		// untouched.
		if ann.Forward != nil {
			fctx.sink.Warnf(ann.Forward.Pos, "this is ignored for non-call expressions")
		}
		for range ann.Assurances {
			fctx.sink.Warnf(ann.Span, "this is ignored for non-call expressions")
		}
		return nil
	}

	if call.Ellipsis.IsValid() {
		fctx.sink.Errorf(fctx.fset.Position(call.Pos()),
			"cannot attach a contract to a call spreading its final argument: the hidden argument must come last")
		return nil
	}

	c := resolveCallee(call, fctx.pkgNames)

	if ann.Forward == nil {
		return e.assureCall(stmt, call, c, ann, fctx)
	}

	target := resolveForward(ann.Forward, c, fctx.fset, call.Pos(), fctx.sink)
	if target == nil {
		return nil
	}

	if target.stub != nil {
		// The original call keeps its ordinary invocation and evaluation
		// semantics; the never-executed branch alone carries the
		// contract-checked stub invocation.
		stubCall := &ast.CallExpr{Fun: pathExpr(target.stub)}
		stubCall.Args = append(stubCall.Args, e.enc.ForCall(target.stub, ann.Assurances).Arg)
		return []ast.Stmt{stmt, neverExecuted(
			&ast.ExprStmt{X: stubCall},
			&ast.ExprStmt{X: panicUnreachable()},
		)}
	}

	// Direct/replace on a function call: the call itself is redirected to
	// the contract-bearing definition. A never-executed reference to the
	// original callee keeps its import used and its inference visible.
	original := cloneCall(fctx.fset, call)
	newFun := pathExpr(target.rewrite)
	switch g := c.generic.(type) {
	case *ast.IndexExpr:
		g.X = newFun
	case *ast.IndexListExpr:
		g.X = newFun
	default:
		call.Fun = newFun
	}
	call.Args = append(call.Args, e.enc.ForCall(target.rewrite, ann.Assurances).Arg)

	stmts := []ast.Stmt{stmt}
	if original != nil {
		stmts = append(stmts, neverExecuted(&ast.ExprStmt{X: original}))
	}
	return stmts
}

// assureCall handles the plain case: same callee, hidden argument appended.
func (e *Engine) assureCall(stmt ast.Stmt, call *ast.CallExpr, c callee, ann directive.CallAnnotations, fctx *fileContext) []ast.Stmt {
	if e.enc.Strategy() == encode.Nominal && c.segments == nil {
		fctx.sink.ErrorWithHelp(fctx.fset.Position(call.Pos()),
			"use a direct path to the function instead, or the structural encoding",
			"unable to determine at compile time which function is being called")
		return nil
	}
	call.Args = append(call.Args, e.enc.ForCall(c.segments, ann.Assurances).Arg)
	return []ast.Stmt{stmt}
}

// neverExecuted wraps statements in a branch the compiler type-checks but
// control flow can never reach.
func neverExecuted(stmts ...ast.Stmt) ast.Stmt {
	return &ast.IfStmt{
		Cond: ast.NewIdent("false"),
		Body: &ast.BlockStmt{List: stmts},
	}
}

func panicUnreachable() *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  ast.NewIdent("panic"),
		Args: []ast.Expr{&ast.BasicLit{Kind: token.STRING, Value: `"unreachable"`}},
	}
}

// cloneCall deep-copies a call expression by printing and re-parsing it.
// Returns nil if the round trip fails; callers then skip the companion
// statement rather than fail the pass.
func cloneCall(fset *token.FileSet, call *ast.CallExpr) ast.Expr {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, call); err != nil {
		return nil
	}
	expr, err := parser.ParseExpr(buf.String())
	if err != nil {
		return nil
	}
	return expr
}
