package ast

// Ref is a single (sheet-qualified or not) reference discovered by a
// syntactic walk of an expression tree.
type Ref struct {
	HasSheet bool
	Sheet    string
	Start    CellRef
	End      CellRef // equal to Start for a single-cell reference
	IsRange  bool
}

// CollectReferences walks the full AST of e — including every branch of a
// conditional, regardless of which one evaluation would actually take —
// and returns every cell/range reference it contains, one entry per
// occurrence (a reference written twice appears twice). It is used to
// rewire dependency-graph edges; it is deliberately independent
// of evaluation-time laziness, which only affects which branch's *value*
// gets computed, not which references the cell statically depends on.
func CollectReferences(e Expression) []Ref {
	var out []Ref
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case *CellRef:
			out = append(out, Ref{HasSheet: n.HasSheet, Sheet: n.Sheet, Start: *n, End: *n})
		case *RangeRef:
			out = append(out, Ref{HasSheet: n.Start.HasSheet, Sheet: n.Start.Sheet, Start: *n.Start, End: *n.End, IsRange: true})
		case *UnaryExpr:
			walk(n.X)
		case *BinaryExpr:
			walk(n.X)
			walk(n.Y)
		case *CallExpr:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}
