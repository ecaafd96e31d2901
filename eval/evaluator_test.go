package eval

import (
	"testing"

	"gridcalc/address"
	"gridcalc/lexer"
	"gridcalc/parser"
	"gridcalc/value"
)

// fakeWorkbook is a minimal in-memory Workbook used only by this package's
// tests, grounded on the single-sheet cell map shape of
// broyeztony-karl/spreadsheet's Sheet.
type fakeWorkbook struct {
	sheets map[string]map[address.CellAddress]value.Value
	cyclic bool // forces RecordDynamicRef to report a cycle, for the INDIRECT test
}

func newFakeWorkbook() *fakeWorkbook {
	return &fakeWorkbook{sheets: map[string]map[address.CellAddress]value.Value{"sheet1": {}}}
}

func (w *fakeWorkbook) set(sheetLower, a1 string, v value.Value) {
	addr, err := address.Parse(a1)
	if err != nil {
		panic(err)
	}
	if w.sheets[sheetLower] == nil {
		w.sheets[sheetLower] = map[address.CellAddress]value.Value{}
	}
	w.sheets[sheetLower][addr] = v
}

func (w *fakeWorkbook) CellValue(sheetLower string, addr address.CellAddress) (value.Value, bool) {
	m, ok := w.sheets[sheetLower]
	if !ok {
		return nil, false
	}
	v, ok := m[addr]
	if !ok {
		return value.Empty, true
	}
	return v, true
}

func (w *fakeWorkbook) SheetExists(sheetLower string) bool {
	_, ok := w.sheets[sheetLower]
	return ok
}

func (w *fakeWorkbook) RangeValues(sheetLower string, r address.CellRange) ([][]value.Value, bool) {
	if !w.SheetExists(sheetLower) {
		return nil, false
	}
	minCol, maxCol, minRow, maxRow := r.Rectangle()
	var grid [][]value.Value
	for row := minRow; row <= maxRow; row++ {
		var line []value.Value
		for col := minCol; col <= maxCol; col++ {
			v, _ := w.CellValue(sheetLower, address.CellAddress{Col: col, Row: row})
			line = append(line, v)
		}
		grid = append(grid, line)
	}
	return grid, true
}

func (w *fakeWorkbook) RecordDynamicRef(fromSheetLower, fromAddrLower, toSheetLower, toAddrLower string) bool {
	return w.cyclic
}

func mustEval(t *testing.T, e *Evaluator, wb *fakeWorkbook, sheetLower, addrLower, formula string) value.Value {
	t.Helper()
	p := parser.New(lexer.New(formula))
	expr := p.ParseFormula()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error in %q: %v", formula, errs)
	}
	ctx := &Context{SheetLower: sheetLower, AddrLower: addrLower, Workbook: wb}
	return e.Eval(expr, ctx)
}

func assertNumber(t *testing.T, v value.Value, want string) {
	t.Helper()
	n, ok := v.(value.NumberValue)
	if !ok {
		t.Fatalf("expected Number, got %T (%v)", v, v)
	}
	if got := n.CanonicalString(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func assertString(t *testing.T, v value.Value, want string) {
	t.Helper()
	s, ok := v.(value.StringValue)
	if !ok {
		t.Fatalf("expected String, got %T (%v)", v, v)
	}
	if s.Value != want {
		t.Errorf("got %q, want %q", s.Value, want)
	}
}

func assertBool(t *testing.T, v value.Value, want bool) {
	t.Helper()
	b, ok := v.(value.BoolValue)
	if !ok {
		t.Fatalf("expected Bool, got %T (%v)", v, v)
	}
	if b.Value != want {
		t.Errorf("got %v, want %v", b.Value, want)
	}
}

func assertErrorKind(t *testing.T, v value.Value, want value.ErrorKind) {
	t.Helper()
	errv, ok := value.AsError(v)
	if !ok {
		t.Fatalf("expected Error, got %T (%v)", v, v)
	}
	if errv.Kind_ != want {
		t.Errorf("got %s, want %s", errv.Kind_.Spelling(), want.Spelling())
	}
}

func TestArithmetic(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a1", "1+2*3"), "7")
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a1", "(1+2)*3"), "9")
	assertErrorKind(t, mustEval(t, e, wb, "sheet1", "a1", "1/0"), value.ErrDivideByZero)
	assertErrorKind(t, mustEval(t, e, wb, "sheet1", "a1", "0/0"), value.ErrDivideByZero)
}

func TestConcatAndCompare(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	assertString(t, mustEval(t, e, wb, "sheet1", "a1", `"foo"&"bar"`), "foobar")
	assertBool(t, mustEval(t, e, wb, "sheet1", "a1", "1<2"), true)
	assertBool(t, mustEval(t, e, wb, "sheet1", "a1", `"B">"a"`), true)
}

func TestCellReference(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	wb.set("sheet1", "B1", value.NewNumberFromInt(10))
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a1", "B1*2"), "20")

	_, ok := wb.CellValue("sheet1", mustAddr("C1"))
	if !ok {
		t.Fatalf("expected sheet1 to exist")
	}
	assertErrorKind(t, mustEval(t, e, wb, "sheet1", "a1", "Missing!B1"), value.ErrBadReference)
}

func mustAddr(a1 string) address.CellAddress {
	a, err := address.Parse(a1)
	if err != nil {
		panic(err)
	}
	return a
}

func TestConditionalLaziness(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	assertString(t, mustEval(t, e, wb, "sheet1", "a1", `IFERROR(1/0, "ok")`), "ok")
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a1", "IF(FALSE, 1/0, 42)"), "42")
}

func TestChoose(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a1", `CHOOSE(2, 1/0, 99, 3)`), "99")
	assertErrorKind(t, mustEval(t, e, wb, "sheet1", "a1", `CHOOSE(5, 1, 2)`), value.ErrType)
}

func TestAggregateFunctions(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	wb.set("sheet1", "A1", value.NewNumberFromInt(1))
	wb.set("sheet1", "A2", value.NewNumberFromInt(2))
	wb.set("sheet1", "A3", value.NewNumberFromInt(3))
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a4", "SUM(A1:A3)"), "6")
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a4", "AVERAGE(A1:A3)"), "2")
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a4", "MIN(A1:A3, 0)"), "0")
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a4", "MAX(A1:A3)"), "3")
	assertErrorKind(t, mustEval(t, e, wb, "sheet1", "a4", "AVERAGE(D1)"), value.ErrDivideByZero)
}

func TestLookup(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	wb.set("sheet1", "A1", value.StringValue{Value: "x"})
	wb.set("sheet1", "A2", value.StringValue{Value: "y"})
	wb.set("sheet1", "B1", value.NewNumberFromInt(10))
	wb.set("sheet1", "B2", value.NewNumberFromInt(20))
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a4", `VLOOKUP("y", A1:B2, 2)`), "20")
}

func TestIndirect(t *testing.T) {
	e := New()
	wb := newFakeWorkbook()
	wb.set("sheet1", "B1", value.NewNumberFromInt(5))
	assertNumber(t, mustEval(t, e, wb, "sheet1", "a1", `INDIRECT("B1")`), "5")

	wb.cyclic = true
	assertErrorKind(t, mustEval(t, e, wb, "sheet1", "a1", `INDIRECT("B1")`), value.ErrCircular)
}
