// Package sheet implements the Cell and Sheet records of spec.md §3,
// grounded on broyeztony-karl/spreadsheet/sheet.go's Cell/Sheet shape but
// generalized from a string-keyed cell store to the richer record spec.md
// requires (contents, parsed AST, parse-failure flag, cycle flag).
package sheet

import (
	"gridcalc/ast"
	"gridcalc/value"
)

// Cell is a single spreadsheet cell (spec.md §3).
type Cell struct {
	Contents    *string // trimmed user input; nil means "no content"
	Value       value.Value
	Parsed      ast.Expression
	ParseFailed bool
	InCycle     bool
}

// NewCell returns a fresh, empty cell.
func NewCell() *Cell {
	return &Cell{Value: value.Empty}
}

// IsEmpty reports whether the cell currently has no content.
func (c *Cell) IsEmpty() bool {
	return c == nil || c.Contents == nil
}

// IsFormula reports whether the cell's contents begin with '='.
func (c *Cell) IsFormula() bool {
	return c.Contents != nil && len(*c.Contents) > 0 && (*c.Contents)[0] == '='
}
