package workbook

import (
	"fmt"
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/graph"
	"gridcalc/sheet"
	"gridcalc/value"
)

// regionCellPlan is the snapshot built by planRegionMove before any
// mutation happens — spec.md §4.F: "Apply all rewrites into a snapshot,
// then erase the source region ... and write the destination."
type regionCellPlan struct {
	dest        address.CellAddress
	contents    *string
	parsed      ast.Expression
	parseFailed bool
	literal     value.Value // non-nil only for a non-formula cell
}

// shiftRefFn builds an ast.Rewrite policy that shifts every non-absolute
// reference component by (dx, dy), replacing a reference that would land
// outside [A1, ZZZZ9999] with a #REF! literal (spec.md §4.F move/copy).
func shiftRefFn(dx, dy int64) func(ast.CellRef) ast.Expression {
	return func(ref ast.CellRef) ast.Expression {
		col, row := int64(ref.Addr.Col), int64(ref.Addr.Row)
		if !ref.Addr.ColAbs {
			col += dx
		}
		if !ref.Addr.RowAbs {
			row += dy
		}
		if col < 0 || col > address.MaxCol || row < 0 || row > address.MaxRow {
			return &ast.ErrorLiteral{Kind: value.ErrBadReference}
		}
		ref.Addr.Col, ref.Addr.Row = uint32(col), uint32(row)
		return &ref
	}
}

// planRegionMove builds the shifted snapshot of the source rectangle
// without touching the workbook.
func planRegionMove(src *sheet.Sheet, rect address.CellRange, dx, dy int64) []regionCellPlan {
	minCol, maxCol, minRow, maxRow := rect.Rectangle()
	var plans []regionCellPlan
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			addr := address.CellAddress{Col: col, Row: row}
			dest := address.CellAddress{Col: uint32(int64(col) + dx), Row: uint32(int64(row) + dy)}
			c, ok := src.Lookup(addr)
			if !ok || c.Contents == nil {
				plans = append(plans, regionCellPlan{dest: dest})
				continue
			}
			if c.Parsed == nil && !c.ParseFailed {
				text := *c.Contents
				plans = append(plans, regionCellPlan{dest: dest, contents: &text, literal: c.Value})
				continue
			}
			if c.ParseFailed {
				text := *c.Contents
				plans = append(plans, regionCellPlan{dest: dest, contents: &text, parseFailed: true})
				continue
			}
			shifted := ast.Rewrite(c.Parsed, shiftRefFn(dx, dy))
			text := "=" + ast.Format(shifted)
			plans = append(plans, regionCellPlan{dest: dest, contents: &text, parsed: shifted})
		}
	}
	return plans
}

func moveOrCopy(w *Workbook, sheetName, startA1, endA1, toA1, toSheetName string, erase bool) error {
	src, ok := w.lookupSheet(sheetName)
	if !ok {
		return fmt.Errorf("unknown sheet %q", sheetName)
	}
	if toSheetName == "" {
		toSheetName = sheetName
	}
	dst, ok := w.lookupSheet(toSheetName)
	if !ok {
		return fmt.Errorf("unknown sheet %q", toSheetName)
	}
	start, err := address.Parse(startA1)
	if err != nil {
		return err
	}
	end, err := address.Parse(endA1)
	if err != nil {
		return err
	}
	to, err := address.Parse(toA1)
	if err != nil {
		return err
	}

	rect := address.CellRange{Start: start, End: end}
	minCol, maxCol, minRow, maxRow := rect.Rectangle()
	dx := int64(to.Col) - int64(minCol)
	dy := int64(to.Row) - int64(minRow)

	destMaxCol := int64(maxCol) + dx
	destMaxRow := int64(maxRow) + dy
	if int64(to.Col) < 0 || destMaxCol > address.MaxCol || int64(to.Row) < 0 || destMaxRow > address.MaxRow {
		return fmt.Errorf("move/copy target out of bounds")
	}

	plans := planRegionMove(src, rect, dx, dy)

	srcKey := strings.ToLower(src.Name)
	dstKey := strings.ToLower(dst.Name)

	destSet := make(map[address.CellAddress]bool, len(plans))
	for _, p := range plans {
		destSet[p.dest] = true
	}

	var seeds []graph.Vertex
	// Pre-mutation values for step 9's change comparison: the loops below
	// assign literal Values before recomputation runs.
	override := make(map[graph.Vertex]value.Value)
	if erase {
		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				addr := address.CellAddress{Col: col, Row: row}
				if srcKey == dstKey && destSet[addr] {
					continue // overwritten by the destination write below
				}
				v := vertexKey(srcKey, addr.Normalized())
				w.graph.ClearOutgoing(v)
				if c, ok := src.Lookup(addr); ok {
					override[v] = c.Value
					c.Contents = nil
					c.Parsed = nil
					c.ParseFailed = false
					c.Value = value.Empty
					src.ShrinkIfBoundary(addr)
					if !w.graph.HasIncoming(v) {
						src.Delete(addr)
						w.graph.DropVertex(v)
					}
				}
				seeds = append(seeds, v)
			}
		}
	}

	for _, p := range plans {
		v := vertexKey(dstKey, p.dest.Normalized())
		w.graph.ClearOutgoing(v)
		c := dst.Get(p.dest)
		override[v] = c.Value
		c.Contents = p.contents
		c.Parsed = p.parsed
		c.ParseFailed = p.parseFailed
		switch {
		case p.contents == nil:
			c.Value = value.Empty
		case p.literal != nil:
			c.Value = p.literal
		}
		if c.IsEmpty() {
			dst.ShrinkIfBoundary(p.dest)
		} else {
			dst.Touch(p.dest)
		}
		if p.parsed != nil {
			addRefEdges(w.graph, v, dstKey, p.parsed)
		}
		seeds = append(seeds, v)
	}

	changed := w.recomputeFromWithOverride(seeds, override)
	w.invoke(changed)
	return nil
}

// MoveCells implements spec.md §4.F's move_cells: shift the rectangle
// [startA1, endA1] to top-left toA1 on toSheetName (defaulting to
// sheetName), erasing the source afterward.
func (w *Workbook) MoveCells(sheetName, startA1, endA1, toA1, toSheetName string) error {
	return moveOrCopy(w, sheetName, startA1, endA1, toA1, toSheetName, true)
}

// CopyCells is MoveCells without erasing the source region.
func (w *Workbook) CopyCells(sheetName, startA1, endA1, toA1, toSheetName string) error {
	return moveOrCopy(w, sheetName, startA1, endA1, toA1, toSheetName, false)
}
