package workbook

import (
	"gridcalc/address"
	"gridcalc/graph"
	"gridcalc/value"
)

// The methods in this file satisfy eval.Workbook, letting the evaluator
// read cell values and register INDIRECT's dynamic edges without eval
// importing workbook (spec.md §2's component dependency order: E sits
// below F).

// CellValue implements eval.Workbook.
func (w *Workbook) CellValue(sheetLower string, addr address.CellAddress) (value.Value, bool) {
	s, ok := w.sheets[sheetLower]
	if !ok {
		return nil, false
	}
	if addr.Col > address.MaxCol || addr.Row > address.MaxRow {
		return nil, false
	}
	c, ok := s.Lookup(addr)
	if !ok {
		return value.Empty, true
	}
	return c.Value, true
}

// SheetExists implements eval.Workbook.
func (w *Workbook) SheetExists(sheetLower string) bool {
	_, ok := w.sheets[sheetLower]
	return ok
}

// RangeValues implements eval.Workbook.
func (w *Workbook) RangeValues(sheetLower string, r address.CellRange) ([][]value.Value, bool) {
	s, ok := w.sheets[sheetLower]
	if !ok {
		return nil, false
	}
	minCol, maxCol, minRow, maxRow := r.Rectangle()
	grid := make([][]value.Value, 0, maxRow-minRow+1)
	for row := minRow; row <= maxRow; row++ {
		line := make([]value.Value, 0, maxCol-minCol+1)
		for col := minCol; col <= maxCol; col++ {
			c, ok := s.Lookup(address.CellAddress{Col: col, Row: row})
			if !ok {
				line = append(line, value.Empty)
				continue
			}
			line = append(line, c.Value)
		}
		grid = append(grid, line)
	}
	return grid, true
}

// RecordDynamicRef implements eval.Workbook: INDIRECT references are not
// present in the static AST, so this adds the edge directly to the graph
// at evaluation time (spec.md §9's open question) and reports whether the
// new edge closes
// a cycle back to the evaluating cell so the call site can short-circuit
// to CircularReference within the same evaluation instead of waiting for
// a later commit to discover it.
func (w *Workbook) RecordDynamicRef(fromSheetLower, fromAddrLower, toSheetLower, toAddrLower string) bool {
	from := vertexKey(fromSheetLower, fromAddrLower)
	to := vertexKey(toSheetLower, toAddrLower)
	wouldCycle := from == to || outgoingReaches(w.graph, to, from)
	w.graph.AddEdge(from, to)
	return wouldCycle
}

// outgoingReaches reports whether target is reachable from start by
// following outgoing edges only — a directed-path check, unlike
// graph.Reachable's bidirectional "affected subgraph" traversal.
func outgoingReaches(g *graph.Graph, start, target graph.Vertex) bool {
	visited := map[graph.Vertex]bool{start: true}
	queue := []graph.Vertex{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == target {
			return true
		}
		for _, n := range g.Outgoing(v) {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}
