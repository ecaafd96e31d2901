package ast

// Rewrite rebuilds e, replacing every CellRef leaf (including both
// corners of a RangeRef) via refFn and leaving every other node
// structurally equivalent but freshly allocated, so the result shares no
// mutable state with e — callers build a rewritten snapshot before
// committing it (spec.md §9: "AST-to-AST transformer parameterized by a
// policy object"). If refFn turns either corner of a range into anything
// other than a CellRef (i.e. an #REF! ErrorLiteral), the whole range
// collapses to that error.
func Rewrite(e Expression, refFn func(CellRef) Expression) Expression {
	switch n := e.(type) {
	case *CellRef:
		return refFn(*n)
	case *RangeRef:
		startRes := refFn(*n.Start)
		endRes := refFn(*n.End)
		startRef, startOK := startRes.(*CellRef)
		endRef, endOK := endRes.(*CellRef)
		if !startOK {
			return startRes
		}
		if !endOK {
			return endRes
		}
		return &RangeRef{Token: n.Token, Start: startRef, End: endRef}
	case *UnaryExpr:
		return &UnaryExpr{Token: n.Token, Op: n.Op, X: Rewrite(n.X, refFn)}
	case *BinaryExpr:
		return &BinaryExpr{Token: n.Token, Op: n.Op, X: Rewrite(n.X, refFn), Y: Rewrite(n.Y, refFn)}
	case *CallExpr:
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = Rewrite(a, refFn)
		}
		return &CallExpr{Token: n.Token, Name: n.Name, Args: args}
	default:
		return e
	}
}
