package workbook

import (
	"fmt"
	"sort"
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/eval"
	"gridcalc/graph"
	"gridcalc/lexer"
	"gridcalc/parser"
	"gridcalc/sheet"
	"gridcalc/value"
)

// SetCellContents runs the full commit protocol of spec.md §4.F for a
// single cell edit.
func (w *Workbook) SetCellContents(sheetName, a1 string, text string) error {
	// 1. Validate inputs before any mutation.
	s, ok := w.lookupSheet(sheetName)
	if !ok {
		return fmt.Errorf("unknown sheet %q", sheetName)
	}
	addr, err := address.Parse(a1)
	if err != nil {
		return err
	}

	// 2. Canonicalize text.
	trimmed, isNone := canonicalizeContent(text)

	// 3. Locate/create the target cell. Retain its pre-edit value so step
	// 9's change comparison is against the value before this edit, even
	// though a non-formula literal's Value is assigned below, ahead of
	// the evaluation pass.
	target := s.Get(addr)
	oldValue := target.Value
	vKey := vertexKey(strings.ToLower(s.Name), addr.Normalized())

	// 4. Parse (or classify) the new content.
	switch {
	case isNone:
		target.Contents = nil
		target.Parsed = nil
		target.ParseFailed = false
		target.Value = value.Empty
	case strings.HasPrefix(trimmed, "="):
		contents := trimmed
		target.Contents = &contents
		expr, parseOK := parseFormula(trimmed[1:])
		if !parseOK {
			target.Parsed = nil
			target.ParseFailed = true
		} else {
			target.Parsed = expr
			target.ParseFailed = false
		}
	default:
		contents := trimmed
		target.Contents = &contents
		target.Parsed = nil
		target.ParseFailed = false
		target.Value = classifyLiteral(trimmed)
	}

	if target.IsEmpty() {
		s.ShrinkIfBoundary(addr)
	} else {
		s.Touch(addr)
	}

	// 5. Rewire edges.
	w.graph.ClearOutgoing(vKey)
	if target.Parsed != nil {
		addRefEdges(w.graph, vKey, strings.ToLower(s.Name), target.Parsed)
	}

	if target.IsEmpty() && !w.graph.HasIncoming(vKey) {
		s.Delete(addr)
		w.graph.DropVertex(vKey)
	}

	// 6-9. Cycle detection, evaluation, propagation, notification.
	changed := w.recomputeFromWithOverride([]graph.Vertex{vKey}, map[graph.Vertex]value.Value{vKey: oldValue})
	w.invoke(changed)
	return nil
}

// parseFormula parses the expression after the leading '=' and reports
// whether parsing succeeded with no errors.
func parseFormula(exprText string) (ast.Expression, bool) {
	p := parser.New(lexer.New(exprText))
	expr := p.ParseFormula()
	if len(p.Errors()) > 0 {
		return nil, false
	}
	return expr, true
}

// addRefEdges adds fromVertex -> r for every static reference in parsed,
// expanding a range reference into one edge per cell in its rectangle. A
// cell reached more than once (a repeated reference, overlapping ranges)
// gets one edge instance per occurrence; Graph.Outgoing still lists it
// once (spec.md I2). An unqualified reference binds to fromSheetLower.
func addRefEdges(g *graph.Graph, fromVertex graph.Vertex, fromSheetLower string, parsed ast.Expression) {
	for _, ref := range ast.CollectReferences(parsed) {
		refSheet := fromSheetLower
		if ref.HasSheet {
			refSheet = strings.ToLower(ref.Sheet)
		}
		if !ref.IsRange {
			g.AddEdge(fromVertex, vertexKey(refSheet, ref.Start.Addr.Normalized()))
			continue
		}
		rect := address.CellRange{Start: ref.Start.Addr, End: ref.End.Addr}
		for _, a := range rect.Addresses() {
			g.AddEdge(fromVertex, vertexKey(refSheet, a.Normalized()))
		}
	}
}

// cellForVertex resolves the sheet.Cell backing a graph vertex. If the
// vertex's sheet exists but holds no record for the address (a dangling
// reference, or a cell just dropped), it returns a detached Empty cell
// and adds no record to the sheet, so a dropped cell stays dropped.
// Returns ok=false when the vertex's sheet has been deleted or never
// existed.
func (w *Workbook) cellForVertex(v graph.Vertex) (*sheet.Cell, bool) {
	sheetLower, addrLower := splitVertex(v)
	s, ok := w.sheets[sheetLower]
	if !ok {
		return nil, false
	}
	addr, err := address.Parse(addrLower)
	if err != nil {
		return nil, false
	}
	if c, ok := s.Lookup(addr); ok {
		return c, true
	}
	return sheet.NewCell(), true
}

func (w *Workbook) displayRef(v graph.Vertex) ChangedCell {
	sheetLower, addrLower := splitVertex(v)
	name := sheetLower
	if s, ok := w.sheets[sheetLower]; ok {
		name = s.Name
	}
	addrDisplay := addrLower
	if addr, err := address.Parse(addrLower); err == nil {
		addrDisplay = addr.String()
	}
	return ChangedCell{Sheet: name, Addr: addrDisplay}
}

// recomputeFrom implements steps 6-9 of the commit protocol over the
// union of the incoming*/outgoing* subgraphs reachable from seeds. It
// merges spec.md's steps 7 ("evaluate T") and 8 ("propagate to D") into a
// single topological pass over the reachable set — T is itself a member
// of that set, and Kahn's algorithm already places it after everything it
// depends on, so evaluating T as part of the same ordered pass produces
// the identical result with no special-casing.
func (w *Workbook) recomputeFrom(seeds []graph.Vertex) []ChangedCell {
	return w.recomputeFromWithOverride(seeds, nil)
}

// recomputeFromWithOverride is recomputeFrom, but the pre-edit value used
// for step 9's change comparison is taken from override (when present)
// rather than the cell's current Value. This matters for every cell whose
// Value a commit assigns before recomputation runs: SetCellContents's
// target, and the cells MoveCells/CopyCells and SortRegion write or
// erase. By the time this function would otherwise take its "old"
// snapshot the mutation has already happened.
func (w *Workbook) recomputeFromWithOverride(seeds []graph.Vertex, override map[graph.Vertex]value.Value) []ChangedCell {
	scope := make(map[graph.Vertex]bool)
	for _, seed := range seeds {
		for v := range graph.Reachable(w.graph, seed) {
			scope[v] = true
		}
	}
	if len(scope) == 0 {
		return nil
	}

	type snapshot struct {
		cell *sheet.Cell
		old  value.Value
	}
	cells := make(map[graph.Vertex]snapshot, len(scope))
	for v := range scope {
		c, ok := w.cellForVertex(v)
		if !ok {
			continue
		}
		old := c.Value
		if o, has := override[v]; has {
			old = o
		}
		cells[v] = snapshot{cell: c, old: old}
	}

	cyclic := graph.CyclicVertices(w.graph, scope)
	for v := range scope {
		snap, ok := cells[v]
		if !ok {
			continue
		}
		snap.cell.InCycle = cyclic[v]
		if cyclic[v] {
			snap.cell.Value = value.NewError(value.ErrCircular, "")
		}
	}

	order := graph.KahnOrder(w.graph, scope, cyclic)
	for _, v := range order {
		snap, ok := cells[v]
		if !ok {
			continue
		}
		c := snap.cell
		switch {
		case c.ParseFailed:
			c.Value = value.NewError(value.ErrParse, "")
		case c.Parsed != nil:
			sheetLower, addrLower := splitVertex(v)
			ctx := &eval.Context{SheetLower: sheetLower, AddrLower: addrLower, Workbook: w}
			c.Value = w.eval.Eval(c.Parsed, ctx)
		}
	}

	var changed []ChangedCell
	var changedVertices []graph.Vertex
	for v, snap := range cells {
		if !value.Equal(snap.old, snap.cell.Value) {
			changedVertices = append(changedVertices, v)
		}
	}
	sort.Slice(changedVertices, func(i, j int) bool { return changedVertices[i] < changedVertices[j] })
	for _, v := range changedVertices {
		changed = append(changed, w.displayRef(v))
	}
	return changed
}
