package workbook

import (
	"fmt"
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/graph"
)

// RenameSheet validates newName, rewrites every formula in the workbook
// that names old (case-insensitively) to name newName instead (quoting
// iff newName requires it), rewrites graph vertex keys atomically, and
// re-evaluates every affected cell, emitting one batched notification
// after the rename completes (spec.md §4.F sheet lifecycle).
func (w *Workbook) RenameSheet(old, newName string) error {
	oldKey := strings.ToLower(old)
	s, ok := w.sheets[oldKey]
	if !ok {
		return fmt.Errorf("unknown sheet %q", old)
	}
	if err := address.ValidSheetName(newName); err != nil {
		return err
	}
	newKey := strings.ToLower(newName)
	if newKey != oldKey {
		if _, exists := w.sheets[newKey]; exists {
			return fmt.Errorf("sheet %q already exists", newName)
		}
	}

	var rewrittenOldVertices []graph.Vertex
	for sheetLower, sh := range w.sheets {
		for addr, c := range sh.Cells {
			if c.Parsed == nil {
				continue
			}
			changedAny := false
			newExpr := ast.Rewrite(c.Parsed, func(ref ast.CellRef) ast.Expression {
				if ref.HasSheet && strings.EqualFold(ref.Sheet, old) {
					changedAny = true
					ref.Sheet = newName
				}
				return &ref
			})
			if !changedAny {
				continue
			}
			c.Parsed = newExpr
			newText := "=" + ast.Format(newExpr)
			c.Contents = &newText
			rewrittenOldVertices = append(rewrittenOldVertices, vertexKey(sheetLower, addr.Normalized()))
		}
	}

	w.graph.RenameSheetVertices(func(v graph.Vertex) graph.Vertex {
		sheetLower, addrLower := splitVertex(v)
		if sheetLower == oldKey {
			return vertexKey(newKey, addrLower)
		}
		return v
	})

	if newKey != oldKey {
		delete(w.sheets, oldKey)
		s.Name = newName
		w.sheets[newKey] = s
		for i, k := range w.order {
			if k == oldKey {
				w.order[i] = newKey
			}
		}
	}

	seedSet := make(map[graph.Vertex]bool)
	for _, v := range w.graph.Vertices() {
		sheetLower, _ := splitVertex(v)
		if sheetLower == newKey {
			seedSet[v] = true
		}
	}
	for _, v := range rewrittenOldVertices {
		sheetLower, addrLower := splitVertex(v)
		if sheetLower == oldKey {
			sheetLower = newKey
		}
		seedSet[vertexKey(sheetLower, addrLower)] = true
	}
	seeds := make([]graph.Vertex, 0, len(seedSet))
	for v := range seedSet {
		seeds = append(seeds, v)
	}

	changed := w.recomputeFrom(seeds)
	w.invoke(changed)
	return nil
}
