// Package workbook implements the recomputation engine of spec.md §4.F:
// the commit protocol, sheet lifecycle, and region operations, built atop
// graph, eval, sheet, ast, address and value. Grounded on
// broyeztony-karl/spreadsheet's Sheet-registry shape (interpreter/evaluator
// own a flat map of named state) generalized to an ordered, case-
// insensitive sheet registry plus a dependency graph and a change-
// notification fan-out.
package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"gridcalc/address"
	"gridcalc/ast"
	"gridcalc/eval"
	"gridcalc/graph"
	"gridcalc/sheet"
	"gridcalc/value"
)

// ChangedCell identifies one cell whose value changed as a result of a
// commit (spec.md §4.F step 9).
type ChangedCell struct {
	Sheet string
	Addr  string
}

// Callback is the notification contract of spec.md §6. A callback that
// panics is isolated by safeInvoke and must not affect
// subsequent callbacks or the commit that triggered it.
type Callback func(w *Workbook, changed []ChangedCell)

// Workbook is the root container: sheets, the dependency graph, and
// registered notification callbacks (spec.md §3).
type Workbook struct {
	order        []string // lower(name), insertion order
	sheets       map[string]*sheet.Sheet
	graph        *graph.Graph
	eval         *eval.Evaluator
	callbacks    []Callback
	sheetCounter int
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{
		sheets: make(map[string]*sheet.Sheet),
		graph:  graph.New(),
		eval:   eval.New(),
	}
}

// RegisterCallback adds a notification callback, invoked once per
// top-level commit (spec.md §6).
func (w *Workbook) RegisterCallback(cb Callback) {
	w.callbacks = append(w.callbacks, cb)
}

func (w *Workbook) invoke(changed []ChangedCell) {
	if len(changed) == 0 {
		return
	}
	for _, cb := range w.callbacks {
		w.safeInvoke(cb, changed)
	}
}

// safeInvoke isolates a panicking callback so it cannot affect subsequent
// callbacks or unwind into the commit that triggered it (spec.md §4.F
// step 9: "a callback that throws is isolated").
func (w *Workbook) safeInvoke(cb Callback, changed []ChangedCell) {
	defer func() { recover() }()
	cb(w, changed)
}

// SheetNames returns the sheet display names in workbook order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, 0, len(w.order))
	for _, key := range w.order {
		if s, ok := w.sheets[key]; ok {
			out = append(out, s.Name)
		}
	}
	return out
}

func (w *Workbook) lookupSheet(name string) (*sheet.Sheet, bool) {
	s, ok := w.sheets[strings.ToLower(name)]
	return s, ok
}

// NewSheet appends a new sheet, auto-naming it "SheetN" when name is
// empty, where N counts up from the last auto-assigned number and skips
// names already in use. If other cells already reference this sheet name
// (a forward-declared, previously-BadReference vertex), those dependents
// are re-evaluated now that the sheet exists (spec.md §4.F sheet
// lifecycle).
func (w *Workbook) NewSheet(name string) (string, error) {
	if name == "" {
		name = w.nextAutoName()
	}
	if err := address.ValidSheetName(name); err != nil {
		return "", err
	}
	key := strings.ToLower(name)
	if _, exists := w.sheets[key]; exists {
		return "", fmt.Errorf("sheet %q already exists", name)
	}
	w.sheets[key] = sheet.New(name)
	w.order = append(w.order, key)

	var seeds []graph.Vertex
	for _, v := range w.graph.Vertices() {
		sheetLower, _ := splitVertex(v)
		if sheetLower == key {
			seeds = append(seeds, v)
		}
	}
	changed := w.recomputeFrom(seeds)
	w.invoke(changed)
	return name, nil
}

func (w *Workbook) nextAutoName() string {
	for {
		w.sheetCounter++
		name := "Sheet" + strconv.Itoa(w.sheetCounter)
		if _, exists := w.sheets[strings.ToLower(name)]; !exists {
			return name
		}
	}
}

// DelSheet removes name's cells from the store. Graph vertices that are
// incoming targets from other sheets are retained (the graph package is
// sheet-registry agnostic, so simply dropping the Sheet record achieves
// this); their sources are re-evaluated to BadReference.
func (w *Workbook) DelSheet(name string) error {
	key := strings.ToLower(name)
	if _, ok := w.sheets[key]; !ok {
		return fmt.Errorf("unknown sheet %q", name)
	}
	var seeds []graph.Vertex
	for _, v := range w.graph.Vertices() {
		sheetLower, _ := splitVertex(v)
		if sheetLower == key {
			seeds = append(seeds, v)
		}
	}
	delete(w.sheets, key)
	newOrder := make([]string, 0, len(w.order))
	for _, k := range w.order {
		if k != key {
			newOrder = append(newOrder, k)
		}
	}
	w.order = newOrder

	changed := w.recomputeFrom(seeds)
	w.invoke(changed)
	return nil
}

// MoveSheet repositions name to index (0-based) in the sheet sequence;
// pure reordering, no recomputation (spec.md §4.F).
func (w *Workbook) MoveSheet(name string, index int) error {
	key := strings.ToLower(name)
	pos := -1
	for i, k := range w.order {
		if k == key {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("unknown sheet %q", name)
	}
	if index < 0 || index >= len(w.order) {
		return fmt.Errorf("move_sheet: index %d out of range", index)
	}
	w.order = append(w.order[:pos], w.order[pos+1:]...)
	tail := make([]string, len(w.order[index:]))
	copy(tail, w.order[index:])
	w.order = append(append(w.order[:index:index], key), tail...)
	return nil
}

// CopySheet deep-copies name under an auto-generated "name_k" suffix. The
// copy's formulas are retained verbatim; unqualified references continue
// to bind to the containing sheet, which is now the copy (spec.md §4.F).
func (w *Workbook) CopySheet(name string) (string, error) {
	src, ok := w.lookupSheet(name)
	if !ok {
		return "", fmt.Errorf("unknown sheet %q", name)
	}
	newName := w.nextCopyName(src.Name)
	key := strings.ToLower(newName)
	dst := sheet.New(newName)
	w.sheets[key] = dst
	w.order = append(w.order, key)

	for addr, c := range src.Cells {
		nc := dst.Get(addr)
		if c.Contents != nil {
			text := *c.Contents
			nc.Contents = &text
		}
		nc.Value = c.Value
		nc.Parsed = c.Parsed
		nc.ParseFailed = c.ParseFailed
		if !nc.IsEmpty() {
			dst.Touch(addr)
		}
		if nc.Parsed != nil {
			from := vertexKey(key, addr.Normalized())
			for _, ref := range ast.CollectReferences(nc.Parsed) {
				refSheet := key
				if ref.HasSheet {
					refSheet = strings.ToLower(ref.Sheet)
				}
				if !ref.IsRange {
					w.graph.AddEdge(from, vertexKey(refSheet, ref.Start.Addr.Normalized()))
					continue
				}
				rect := address.CellRange{Start: ref.Start.Addr, End: ref.End.Addr}
				for _, a := range rect.Addresses() {
					w.graph.AddEdge(from, vertexKey(refSheet, a.Normalized()))
				}
			}
		}
	}
	return newName, nil
}

func (w *Workbook) nextCopyName(base string) string {
	n := 1
	for {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, exists := w.sheets[strings.ToLower(candidate)]; !exists {
			return candidate
		}
		n++
	}
}

// GetCellValue returns the current value of a cell (Empty for a cell that
// has never been written).
func (w *Workbook) GetCellValue(sheetName, a1 string) (value.Value, error) {
	s, ok := w.lookupSheet(sheetName)
	if !ok {
		return nil, fmt.Errorf("unknown sheet %q", sheetName)
	}
	addr, err := address.Parse(a1)
	if err != nil {
		return nil, err
	}
	c, ok := s.Lookup(addr)
	if !ok {
		return value.Empty, nil
	}
	return c.Value, nil
}

// GetCellContents returns the raw stored contents of a cell, or "" if it
// has none.
func (w *Workbook) GetCellContents(sheetName, a1 string) (string, error) {
	s, ok := w.lookupSheet(sheetName)
	if !ok {
		return "", fmt.Errorf("unknown sheet %q", sheetName)
	}
	addr, err := address.Parse(a1)
	if err != nil {
		return "", err
	}
	c, ok := s.Lookup(addr)
	if !ok || c.Contents == nil {
		return "", nil
	}
	return *c.Contents, nil
}

// Extent returns a sheet's bounding-box extent (spec.md I4).
func (w *Workbook) Extent(sheetName string) (cols, rows uint32, err error) {
	s, ok := w.lookupSheet(sheetName)
	if !ok {
		return 0, 0, fmt.Errorf("unknown sheet %q", sheetName)
	}
	cols, rows = s.Extent()
	return cols, rows, nil
}
