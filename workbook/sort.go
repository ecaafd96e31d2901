package workbook

import (
	"fmt"
	"sort"
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/graph"
	"gridcalc/value"
)

// sortRowKey is one row's comparison tuple, cached once per row so the
// sort does not re-read the workbook O(n log n) times.
type sortRowKey struct {
	row  uint32
	vals []value.Value
}

// SortRegion implements spec.md §4.F's sort_region: a stable row sort over
// [startA1, endA1] keyed by sortCols (1-based column offsets within the
// rectangle, signed for ascending/descending), followed by rewriting every
// in-region formula reference's row component to the row it logically
// followed (spec.md scenario S6).
func (w *Workbook) SortRegion(sheetName, startA1, endA1 string, sortCols []int) error {
	s, ok := w.lookupSheet(sheetName)
	if !ok {
		return fmt.Errorf("unknown sheet %q", sheetName)
	}
	start, err := address.Parse(startA1)
	if err != nil {
		return err
	}
	end, err := address.Parse(endA1)
	if err != nil {
		return err
	}
	minCol, maxCol, minRow, maxRow := (address.CellRange{Start: start, End: end}).Rectangle()

	seen := make(map[int]bool, len(sortCols))
	for _, sc := range sortCols {
		if sc == 0 {
			return fmt.Errorf("sort_region: column offset must not be zero")
		}
		off := sc
		if off < 0 {
			off = -off
		}
		if uint32(off-1) > maxCol-minCol {
			return fmt.Errorf("sort_region: column offset %d outside region", sc)
		}
		if seen[sc] {
			return fmt.Errorf("sort_region: duplicate column offset %d", sc)
		}
		seen[sc] = true
	}

	rows := make([]uint32, 0, maxRow-minRow+1)
	keys := make(map[uint32]sortRowKey, maxRow-minRow+1)
	for row := minRow; row <= maxRow; row++ {
		rows = append(rows, row)
		vals := make([]value.Value, len(sortCols))
		for i, sc := range sortCols {
			off := uint32(sc - 1)
			if sc < 0 {
				off = uint32(-sc - 1)
			}
			col := minCol + off
			c, ok := s.Lookup(address.CellAddress{Col: col, Row: row})
			if !ok {
				vals[i] = value.Empty
			} else {
				vals[i] = c.Value
			}
		}
		keys[row] = sortRowKey{row: row, vals: vals}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := keys[rows[i]], keys[rows[j]]
		for idx, sc := range sortCols {
			cmp := value.SortCompare(ki.vals[idx], kj.vals[idx])
			if sc < 0 {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	// oldOfNewRow[newRow] = the row that now occupies newRow, pre-sort.
	oldOfNewRow := make(map[uint32]uint32, len(rows))
	newOfOldRow := make(map[uint32]uint32, len(rows))
	for i, oldRow := range rows {
		newRow := minRow + uint32(i)
		oldOfNewRow[newRow] = oldRow
		newOfOldRow[oldRow] = newRow
	}

	// Snapshot the whole rectangle's cells by (col, old row) before any
	// mutation, then write the permuted grid (P7: pure content permutation).
	type cellSnapshot struct {
		contents    *string
		parsed      ast.Expression
		parseFailed bool
		val         value.Value
	}
	snap := make(map[address.CellAddress]cellSnapshot)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			addr := address.CellAddress{Col: col, Row: row}
			c, ok := s.Lookup(addr)
			if !ok {
				continue
			}
			snap[addr] = cellSnapshot{contents: c.Contents, parsed: c.Parsed, parseFailed: c.ParseFailed, val: c.Value}
		}
	}

	sheetKey := strings.ToLower(s.Name)
	var seeds []graph.Vertex

	// Rewrite every formula elsewhere in the workbook (this sheet, outside
	// the rectangle, or any other sheet via a qualified reference) whose
	// references point into the sorted rectangle. Cells inside the
	// rectangle are handled separately below, from the pre-mutation
	// snapshot, since their own position also moves.
	inRect := func(a address.CellAddress) bool {
		return a.Col >= minCol && a.Col <= maxCol && a.Row >= minRow && a.Row <= maxRow
	}
	for otherSheetKey, otherSheet := range w.sheets {
		for addr, c := range otherSheet.Cells {
			if otherSheetKey == sheetKey && inRect(addr) {
				continue
			}
			if c.Parsed == nil {
				continue
			}
			changedAny := false
			rewritten := ast.Rewrite(c.Parsed, sortRowRefFnTracking(sheetKey, otherSheetKey, minCol, maxCol, minRow, maxRow, newOfOldRow, &changedAny))
			if !changedAny {
				continue
			}
			c.Parsed = rewritten
			text := "=" + ast.Format(rewritten)
			c.Contents = &text
			v := vertexKey(otherSheetKey, addr.Normalized())
			w.graph.ClearOutgoing(v)
			addRefEdges(w.graph, v, otherSheetKey, rewritten)
			seeds = append(seeds, v)
		}
	}

	// Pre-sort values for step 9's change comparison: literal cells get
	// their permuted Value assigned below, before recomputation runs.
	override := make(map[graph.Vertex]value.Value)
	for col := minCol; col <= maxCol; col++ {
		for newRow := minRow; newRow <= maxRow; newRow++ {
			oldRow := oldOfNewRow[newRow]
			srcAddr := address.CellAddress{Col: col, Row: oldRow}
			destAddr := address.CellAddress{Col: col, Row: newRow}
			v := vertexKey(sheetKey, destAddr.Normalized())
			w.graph.ClearOutgoing(v)
			if c, ok := s.Lookup(destAddr); ok {
				override[v] = c.Value
			}

			old, hadContent := snap[srcAddr]
			if !hadContent || old.contents == nil {
				if c, ok := s.Lookup(destAddr); ok {
					c.Contents, c.Parsed, c.ParseFailed, c.Value = nil, nil, false, value.Empty
					s.ShrinkIfBoundary(destAddr)
					if !w.graph.HasIncoming(v) {
						s.Delete(destAddr)
						w.graph.DropVertex(v)
					}
				}
				seeds = append(seeds, v)
				continue
			}

			c := s.Get(destAddr)
			c.ParseFailed = old.parseFailed
			if old.parsed == nil {
				contents := *old.contents
				c.Contents = &contents
				c.Parsed = nil
				c.Value = old.val
			} else {
				rewritten := ast.Rewrite(old.parsed, sortRowRefFn(sheetKey, sheetKey, minCol, maxCol, minRow, maxRow, newOfOldRow))
				text := "=" + ast.Format(rewritten)
				c.Contents = &text
				c.Parsed = rewritten
				addRefEdges(w.graph, v, sheetKey, rewritten)
			}
			s.Touch(destAddr)
			seeds = append(seeds, v)
		}
	}

	changed := w.recomputeFromWithOverride(seeds, override)
	w.invoke(changed)
	return nil
}

// sortRowRefFn rewrites a reference's row component to the row it
// logically followed after the permutation. containingSheetKey is the
// sheet the formula being rewritten itself lives on, needed to resolve an
// unqualified reference to its own sheet rather than assuming it targets
// the sorted sheet. Only a reference whose effective target sheet is
// targetSheetKey, whose row component isn't absolute, and whose column and
// (pre-sort) row both land inside the sorted rectangle is touched;
// everything else is left untouched (spec.md §4.F sort_region).
func sortRowRefFn(targetSheetKey, containingSheetKey string, minCol, maxCol, minRow, maxRow uint32, newOfOldRow map[uint32]uint32) func(ast.CellRef) ast.Expression {
	return func(ref ast.CellRef) ast.Expression {
		effectiveSheet := containingSheetKey
		if ref.HasSheet {
			effectiveSheet = strings.ToLower(ref.Sheet)
		}
		if effectiveSheet != targetSheetKey {
			return &ref
		}
		if ref.Addr.RowAbs {
			return &ref
		}
		if ref.Addr.Col < minCol || ref.Addr.Col > maxCol || ref.Addr.Row < minRow || ref.Addr.Row > maxRow {
			return &ref
		}
		newRow, ok := newOfOldRow[ref.Addr.Row]
		if !ok {
			return &ref
		}
		ref.Addr.Row = newRow
		return &ref
	}
}

// sortRowRefFnTracking is sortRowRefFn plus a *bool set true the first
// time it actually changes a reference, letting the caller skip rewriting
// (and reparenting graph edges for) a cell whose formula is untouched.
func sortRowRefFnTracking(targetSheetKey, containingSheetKey string, minCol, maxCol, minRow, maxRow uint32, newOfOldRow map[uint32]uint32, changed *bool) func(ast.CellRef) ast.Expression {
	inner := sortRowRefFn(targetSheetKey, containingSheetKey, minCol, maxCol, minRow, maxRow, newOfOldRow)
	return func(ref ast.CellRef) ast.Expression {
		out := inner(ref)
		if rewritten, ok := out.(*ast.CellRef); ok && rewritten.Addr.Row != ref.Addr.Row {
			*changed = true
		}
		return out
	}
}
