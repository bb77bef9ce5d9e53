package rewrite

import "go/ast"

// extractCall locates the single call expression an annotation applies to,
// descending through wrapper expressions when the nested call is
// unambiguous.
//
// The shapes handled here are a closed list: a wrapper either has exactly
// one place a call can hide (paren, unary, deref, type assertion, slice
// base), exactly two where precisely one side must contain the call (binary
// operators, indexing), or a block whose single statement is searched.
// Everything else is terminal: no unambiguous call found, the caller warns
// and leaves the expression alone.
func extractCall(expr ast.Expr) *ast.CallExpr {
	switch e := expr.(type) {
	case *ast.CallExpr:
		return e
	case *ast.ParenExpr:
		return extractCall(e.X)
	case *ast.UnaryExpr:
		return extractCall(e.X)
	case *ast.StarExpr:
		return extractCall(e.X)
	case *ast.TypeAssertExpr:
		return extractCall(e.X)
	case *ast.SliceExpr:
		return extractCall(e.X)
	case *ast.BinaryExpr:
		return exactlyOne(extractCall(e.X), extractCall(e.Y))
	case *ast.IndexExpr:
		return exactlyOne(extractCall(e.X), extractCall(e.Index))
	case *ast.FuncLit:
		return extractFromBlock(e.Body)
	default:
		return nil
	}
}

// extractFromStmt searches the statement shapes a call annotation can be
// attached to.
func extractFromStmt(stmt ast.Stmt) *ast.CallExpr {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return extractCall(s.X)
	case *ast.AssignStmt:
		if len(s.Rhs) == 1 {
			return extractCall(s.Rhs[0])
		}
		return nil
	case *ast.ReturnStmt:
		if len(s.Results) == 1 {
			return extractCall(s.Results[0])
		}
		return nil
	case *ast.DeferStmt:
		return s.Call
	case *ast.GoStmt:
		return s.Call
	case *ast.SendStmt:
		return extractCall(s.Value)
	case *ast.BlockStmt:
		return extractFromBlock(s)
	default:
		return nil
	}
}

func extractFromBlock(block *ast.BlockStmt) *ast.CallExpr {
	if len(block.List) != 1 {
		return nil
	}
	return extractFromStmt(block.List[0])
}

func exactlyOne(a, b *ast.CallExpr) *ast.CallExpr {
	if (a == nil) == (b == nil) {
		return nil
	}
	if a != nil {
		return a
	}
	return b
}
