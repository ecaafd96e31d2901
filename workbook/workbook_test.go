package workbook

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"gridcalc/value"
)

func mustNumber(t *testing.T, v value.Value) float64 {
	t.Helper()
	n, ok := v.(value.NumberValue)
	require.Truef(t, ok, "expected Number, got %T (%v)", v, v)
	f, _ := n.Big.Float64()
	return f
}

func mustString(t *testing.T, v value.Value) string {
	t.Helper()
	s, ok := v.(value.StringValue)
	require.Truef(t, ok, "expected String, got %T (%v)", v, v)
	return s.Value
}

func mustError(t *testing.T, v value.Value) value.ErrorKind {
	t.Helper()
	e, ok := v.(value.ErrorValue)
	require.Truef(t, ok, "expected Error, got %T (%v)", v, v)
	return e.Kind_
}

func TestSetCellContentsArithmeticAndNotify(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	var notified []ChangedCell
	w.RegisterCallback(func(_ *Workbook, changed []ChangedCell) {
		notified = append(notified, changed...)
	})

	require.NoError(t, w.SetCellContents("Sheet1", "A1", "2"))
	require.NoError(t, w.SetCellContents("Sheet1", "B1", "=A1*3"))
	v, err := w.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	require.Equal(t, float64(6), mustNumber(t, v))
	require.NotEmpty(t, notified)

	notified = nil
	require.NoError(t, w.SetCellContents("Sheet1", "A1", "5"))
	v, err = w.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	require.Equal(t, float64(15), mustNumber(t, v))
	require.Contains(t, notified, ChangedCell{Sheet: "Sheet1", Addr: "A1"})
	require.Contains(t, notified, ChangedCell{Sheet: "Sheet1", Addr: "B1"})
}

func TestSetCellContentsCircularReference(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, w.SetCellContents("Sheet1", "A1", "=B1+1"))
	require.NoError(t, w.SetCellContents("Sheet1", "B1", "=A1+1"))

	va, err := w.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	require.Equal(t, value.ErrCircular, mustError(t, va))
	vb, err := w.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	require.Equal(t, value.ErrCircular, mustError(t, vb))
}

func TestClearingContentDeletesDanglingCell(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, w.SetCellContents("Sheet1", "A1", "hello"))
	require.NoError(t, w.SetCellContents("Sheet1", "A1", ""))
	text, err := w.GetCellContents("Sheet1", "A1")
	require.NoError(t, err)
	require.Empty(t, text)
	s, ok := w.lookupSheet("Sheet1")
	require.True(t, ok)
	require.Empty(t, s.Cells, "A1 has no content and no dependents, so its record is dropped")
}

func TestContentClassification(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, w.SetCellContents("Sheet1", "A1", "'123"))
	v, _ := w.GetCellValue("Sheet1", "A1")
	require.Equal(t, "123", mustString(t, v))

	require.NoError(t, w.SetCellContents("Sheet1", "A2", "TRUE"))
	v, _ = w.GetCellValue("Sheet1", "A2")
	b, ok := v.(value.BoolValue)
	require.True(t, ok)
	require.True(t, b.Value)

	require.NoError(t, w.SetCellContents("Sheet1", "A3", "#REF!"))
	v, _ = w.GetCellValue("Sheet1", "A3")
	require.Equal(t, value.ErrBadReference, mustError(t, v))
}

func TestSheetLifecycle(t *testing.T) {
	w := New()
	name, err := w.NewSheet("")
	require.NoError(t, err)
	require.Equal(t, "Sheet1", name)

	require.NoError(t, w.SetCellContents(name, "A1", "=Sheet2!A1+1"))
	v, err := w.GetCellValue(name, "A1")
	require.NoError(t, err)
	require.Equal(t, value.ErrBadReference, mustError(t, v))

	_, err = w.NewSheet("Sheet2")
	require.NoError(t, err)
	require.NoError(t, w.SetCellContents("Sheet2", "A1", "9"))
	v, err = w.GetCellValue(name, "A1")
	require.NoError(t, err)
	require.Equal(t, float64(10), mustNumber(t, v))

	require.NoError(t, w.DelSheet("Sheet2"))
	v, err = w.GetCellValue(name, "A1")
	require.NoError(t, err)
	require.Equal(t, value.ErrBadReference, mustError(t, v))
}

func TestCopySheetKeepsFormulasBoundToCopy(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, w.SetCellContents("Sheet1", "A1", "4"))
	require.NoError(t, w.SetCellContents("Sheet1", "B1", "=A1*2"))

	copyName, err := w.CopySheet("Sheet1")
	require.NoError(t, err)
	require.Equal(t, "Sheet1_1", copyName)

	require.NoError(t, w.SetCellContents(copyName, "A1", "10"))
	v, err := w.GetCellValue(copyName, "B1")
	require.NoError(t, err)
	require.Equal(t, float64(20), mustNumber(t, v))

	v, err = w.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	require.Equal(t, float64(8), mustNumber(t, v))
}

func TestRenameSheetRewritesReferences(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	_, err = w.NewSheet("Sheet2")
	require.NoError(t, err)

	require.NoError(t, w.SetCellContents("Sheet2", "A1", "=Sheet1!A1+1"))
	require.NoError(t, w.SetCellContents("Sheet1", "A1", "1"))

	require.NoError(t, w.RenameSheet("Sheet1", "Inputs"))
	text, err := w.GetCellContents("Sheet2", "A1")
	require.NoError(t, err)
	require.Equal(t, "=Inputs!A1+1", text)

	v, err := w.GetCellValue("Sheet2", "A1")
	require.NoError(t, err)
	require.Equal(t, float64(2), mustNumber(t, v))
}

func TestMoveCellsShiftsReferencesAndErasesSource(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, w.SetCellContents("Sheet1", "A1", "5"))
	require.NoError(t, w.SetCellContents("Sheet1", "A2", "=A1+1"))
	require.NoError(t, w.SetCellContents("Sheet1", "A3", "=$A$1+1"))

	require.NoError(t, w.MoveCells("Sheet1", "A1", "A3", "B1", ""))

	for _, a1 := range []string{"A1", "A2", "A3"} {
		text, err := w.GetCellContents("Sheet1", a1)
		require.NoError(t, err)
		require.Empty(t, text, "source cell %s should be erased", a1)
	}

	v, err := w.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	require.Equal(t, float64(5), mustNumber(t, v))

	text, err := w.GetCellContents("Sheet1", "B2")
	require.NoError(t, err)
	require.Equal(t, "=B1+1", text)
	v, err = w.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	require.Equal(t, float64(6), mustNumber(t, v))

	text, err = w.GetCellContents("Sheet1", "B3")
	require.NoError(t, err)
	require.Equal(t, "=$A$1+1", text, "absolute reference component must not shift")
}

func TestMoveCellsOutOfBoundsProducesRef(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	// B1 references A1 (column 0); shifting the cell one column left during
	// the move also shifts its reference one column left, landing on
	// column -1, which is out of bounds.
	require.NoError(t, w.SetCellContents("Sheet1", "B1", "=A1"))

	require.NoError(t, w.MoveCells("Sheet1", "B1", "B1", "A1", ""))
	text, err := w.GetCellContents("Sheet1", "A1")
	require.NoError(t, err)
	require.Contains(t, text, "#REF!")
}

func TestCopyCellsLeavesSourceIntact(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, w.SetCellContents("Sheet1", "A1", "7"))

	require.NoError(t, w.CopyCells("Sheet1", "A1", "A1", "B1", ""))

	v, err := w.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	require.Equal(t, float64(7), mustNumber(t, v))
	v, err = w.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	require.Equal(t, float64(7), mustNumber(t, v))
}

// TestSortRegionScenarioS6 mirrors spec.md's S6 scenario: sort keys are
// column 2 (age) ascending then column 1 (name) descending, which orders
// the 25-year-olds Charlie before Alice (descending name breaks the tie)
// ahead of the 30-year-old Bob.
func TestSortRegionScenarioS6(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	rows := [][3]string{
		{"Alice", "25", "Engineer"},
		{"Bob", "30", "Designer"},
		{"Charlie", "25", "Manager"},
	}
	for i, r := range rows {
		row := i + 1
		require.NoError(t, w.SetCellContents("Sheet1", colAddr("A", row), r[0]))
		require.NoError(t, w.SetCellContents("Sheet1", colAddr("B", row), r[1]))
		require.NoError(t, w.SetCellContents("Sheet1", colAddr("C", row), r[2]))
	}

	require.NoError(t, w.SortRegion("Sheet1", "A1", "C3", []int{2, -1}))

	wantA := []string{"Charlie", "Alice", "Bob"}
	wantC := []string{"Manager", "Engineer", "Designer"}
	for i := 0; i < 3; i++ {
		row := i + 1
		va, err := w.GetCellValue("Sheet1", colAddr("A", row))
		require.NoError(t, err)
		require.Equal(t, wantA[i], mustString(t, va))
		vc, err := w.GetCellValue("Sheet1", colAddr("C", row))
		require.NoError(t, err)
		require.Equal(t, wantC[i], mustString(t, vc))
	}
}

// TestSortRegionRewritesInternalRowReferences checks that a formula
// outside the sorted region, referencing into it, keeps tracking the same
// logical row after the permutation (spec.md §4.F: "a reference to row r
// becomes a reference to the row that was r before the sort").
func TestSortRegionRewritesInternalRowReferences(t *testing.T) {
	w := New()
	_, err := w.NewSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, w.SetCellContents("Sheet1", "A1", "30"))
	require.NoError(t, w.SetCellContents("Sheet1", "A2", "10"))
	require.NoError(t, w.SetCellContents("Sheet1", "D1", "=A1"))

	require.NoError(t, w.SortRegion("Sheet1", "A1", "A2", []int{1}))

	va1, err := w.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	require.Equal(t, float64(10), mustNumber(t, va1), "ascending sort moves A2's 10 into A1")

	text, err := w.GetCellContents("Sheet1", "D1")
	require.NoError(t, err)
	require.Equal(t, "=A2", text, "D1 must be rewritten to keep tracking the row that held 30")

	vd1, err := w.GetCellValue("Sheet1", "D1")
	require.NoError(t, err)
	require.Equal(t, float64(30), mustNumber(t, vd1))
}

func colAddr(col string, row int) string {
	return col + strconv.Itoa(row)
}
