// Package eval implements the tree-walking formula evaluator and builtin
// function library of spec.md §4.E, grounded on karl/interpreter's
// Eval/evalNode dispatch shape (interpreter/eval_core.go) but over the
// much smaller CellValue lattice instead of karl's general-purpose value
// types.
package eval

import (
	"gridcalc/address"
	"gridcalc/value"
)

// Workbook is the narrow view of the workbook the evaluator needs. It is
// implemented by the workbook package; eval never imports workbook, to
// keep the dependency order of spec.md §2 (E sits below F).
type Workbook interface {
	// CellValue returns the current value of (sheetLower, addr), with
	// ok=false when the sheet does not exist or addr lies outside
	// [A1, ZZZZ9999]. A cell that was never written reads as Empty.
	CellValue(sheetLower string, addr address.CellAddress) (value.Value, bool)

	// SheetExists reports whether a sheet is currently registered.
	SheetExists(sheetLower string) bool

	// RangeValues returns the rectangular grid of cell values for r on the
	// given sheet, row-major, or ok=false if the sheet does not exist.
	RangeValues(sheetLower string, r address.CellRange) (grid [][]value.Value, ok bool)

	// RecordDynamicRef registers an edge discovered only at evaluation
	// time (INDIRECT — spec.md §9's open question) from the evaluating
	// cell to the resolved target, and reports whether adding it would
	// immediately close a cycle back to the evaluating cell.
	RecordDynamicRef(fromSheetLower, fromAddrLower, toSheetLower, toAddrLower string) (wouldCycle bool)
}

// Reference identifies a single cell touched during evaluation.
type Reference struct {
	SheetLower string
	AddrLower  string
}

// Context carries the per-evaluation state: which sheet/cell is being
// evaluated (for unqualified references and INDIRECT's self-cycle check)
// and the workbook view.
type Context struct {
	SheetLower string
	AddrLower  string
	Workbook   Workbook
}
