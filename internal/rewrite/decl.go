package rewrite

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/directive"
	"github.com/aticu/pre/internal/encode"
)

// rewriteDecl attaches the encoded contract to a declaration: the hidden
// parameter, the inlined self-checks for boolean clauses, and (for the
// nominal encoding) the companion marker type.
func (e *Engine) rewriteDecl(fn *ast.FuncDecl, ann directive.DeclAnnotations, fctx *fileContext) {
	if err := contract.CheckPredicates(ann.Preconditions); err != nil {
		fctx.sink.Errorf(ann.Span, "%v", err)
		return
	}

	active := contract.ActiveClauses(ann.Preconditions, e.cfg.Tags)
	if len(active) == 0 {
		// Every clause is compiled out under the current tag set; the
		// contract is not checked in this configuration.
		return
	}

	if isVariadic(fn) {
		fctx.sink.Errorf(ann.Span,
			"cannot attach a contract to a variadic declaration: the hidden parameter must come last")
		return
	}

	name := fn.Name.Name
	if fn.Recv != nil {
		if e.enc.Strategy() == encode.Nominal {
			fctx.sink.ErrorWithHelp(ann.Span,
				"use the structural encoding for methods",
				"the nominal encoding cannot name a marker type for a method")
			return
		}
	}

	enc := e.enc.ForDeclaration(name, active)
	fn.Type.Params.List = append(fn.Type.Params.List, enc.Param)
	if enc.Companion != nil {
		fctx.companions = append(fctx.companions, enc.Companion)
	}

	if !ann.NoDebugAssert && fn.Body != nil {
		fn.Body.List = append(e.selfChecks(active, ann.Span, fctx), fn.Body.List...)
	}

	fctx.touched = true
	fctx.contracts = append(fctx.contracts, DeclContract{
		Name:     name,
		Receiver: receiverType(fn),
		Clauses:  contract.DedupCanonical(active),
		NoDoc:    ann.NoDoc,
		Pos:      ann.Span,
	})
}

// selfChecks builds the runtime assertions prepended to the body for
// boolean clauses.
func (e *Engine) selfChecks(active []contract.Precondition, span token.Position, fctx *fileContext) []ast.Stmt {
	var out []ast.Stmt
	for _, p := range active {
		if p.Kind != contract.KindBoolean {
			continue
		}
		cond, err := parser.ParseExpr(p.Text)
		if err != nil {
			// The clause parser vetted this expression already; a failure
			// here means the two parsers disagree and is worth surfacing.
			fctx.sink.Errorf(span, "cannot inline runtime check for %s: %v", contract.Display(p), err)
			continue
		}
		fctx.needSupport = true
		out = append(out, &ast.ExprStmt{X: &ast.CallExpr{
			Fun: &ast.SelectorExpr{
				X:   ast.NewIdent(fctx.supportAlias),
				Sel: ast.NewIdent("Assert"),
			},
			Args: []ast.Expr{
				cond,
				&ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(contract.Display(p))},
			},
		}})
	}
	return out
}

func isVariadic(fn *ast.FuncDecl) bool {
	params := fn.Type.Params.List
	if len(params) == 0 {
		return false
	}
	_, ok := params[len(params)-1].Type.(*ast.Ellipsis)
	return ok
}

// receiverType names the receiver's base type, or "".
func receiverType(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	typ := fn.Recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	if idx, ok := typ.(*ast.IndexExpr); ok {
		typ = idx.X
	}
	if idx, ok := typ.(*ast.IndexListExpr); ok {
		typ = idx.X
	}
	if ident, ok := typ.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}
