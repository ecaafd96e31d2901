package address

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		in     string
		col    uint32
		row    uint32
		colAbs bool
		rowAbs bool
	}{
		{"A1", 0, 0, false, false},
		{"B12", 1, 11, false, false},
		{"$B$12", 1, 11, true, true},
		{"Z1", 25, 0, false, false},
		{"AA1", 26, 0, false, false},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", c.in, err)
		}
		if got.Col != c.col || got.Row != c.row || got.ColAbs != c.colAbs || got.RowAbs != c.rowAbs {
			t.Errorf("Parse(%q) = %+v, want col=%d row=%d colAbs=%v rowAbs=%v", c.in, got, c.col, c.row, c.colAbs, c.rowAbs)
		}
		if s := got.String(); s != c.in {
			t.Errorf("Parse(%q).String() = %q, want %q", c.in, s, c.in)
		}
	}
}

// TestMaxColReachesFourLetterColumns covers the maximum-cell boundary of
// spec.md §4.B/§6: the largest valid cell is ZZZZ9999, a four-letter
// column. MaxCol must be the zero-indexed column number of "ZZZZ", not of
// the three-letter "ZZZ".
func TestMaxColReachesFourLetterColumns(t *testing.T) {
	zzzz, err := ColumnIndex("ZZZZ")
	if err != nil {
		t.Fatalf("ColumnIndex(\"ZZZZ\"): unexpected error %v", err)
	}
	if uint32(zzzz) != MaxCol {
		t.Fatalf("ColumnIndex(\"ZZZZ\") = %d, want MaxCol = %d", zzzz, MaxCol)
	}

	if _, err := Parse("AAAA1"); err != nil {
		t.Errorf("Parse(\"AAAA1\"): a four-letter column within bounds must parse, got error %v", err)
	}
	if _, err := Parse("ZZZZ9999"); err != nil {
		t.Errorf("Parse(\"ZZZZ9999\"): the maximum cell must parse, got error %v", err)
	}
	if _, err := Parse("ZZZZ1"); err != nil {
		t.Errorf("Parse(\"ZZZZ1\"): the last valid column must parse, got error %v", err)
	}
}

func TestParseRejectsOutOfBounds(t *testing.T) {
	cases := []string{
		"A0",       // row must be >= 1
		"A10000",   // row > MaxRow
		"ZZZZZ1",   // five-letter column, outside the addrPattern grammar
		"",
		"1A",
	}
	for _, in := range cases {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): want error, got none", in)
		}
	}
}

func TestColumnLettersRoundTrip(t *testing.T) {
	for _, col := range []uint32{0, 25, 26, 701, MaxCol} {
		letters := ColumnLetters(col)
		got, err := ColumnIndex(letters)
		if err != nil {
			t.Fatalf("ColumnIndex(%q): unexpected error %v", letters, err)
		}
		if uint32(got) != col {
			t.Errorf("ColumnLetters(%d) = %q, ColumnIndex back = %d", col, letters, got)
		}
	}
}

func TestRectangleNormalizesCorners(t *testing.T) {
	start, _ := Parse("C5")
	end, _ := Parse("A1")
	minCol, maxCol, minRow, maxRow := CellRange{Start: start, End: end}.Rectangle()
	if minCol != 0 || maxCol != 2 || minRow != 0 || maxRow != 4 {
		t.Errorf("Rectangle() = (%d,%d,%d,%d), want (0,2,0,4)", minCol, maxCol, minRow, maxRow)
	}
}

func TestValidSheetNamePermitsBangAndRejectsQuotes(t *testing.T) {
	if err := ValidSheetName("Q1!Report"); err != nil {
		t.Errorf("ValidSheetName(\"Q1!Report\"): want nil, got %v", err)
	}
	if err := ValidSheetName("it's"); err == nil {
		t.Error("ValidSheetName should reject a name containing a quote character")
	}
	if err := ValidSheetName(" Leading"); err == nil {
		t.Error("ValidSheetName should reject leading whitespace")
	}
	if err := ValidSheetName(""); err == nil {
		t.Error("ValidSheetName should reject an empty name")
	}
}

func TestNormalizedIsLowercaseNoAbsoluteMarkers(t *testing.T) {
	addr, _ := Parse("$B$12")
	if got := addr.Normalized(); got != "b12" {
		t.Errorf("Normalized() = %q, want %q", got, "b12")
	}
}
