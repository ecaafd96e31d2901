package value

import "testing"

func TestCanonicalStringTrimsAndNormalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"1.500", "1.5"},
		{"1.0", "1"},
		{"-3.1400", "-3.14"},
		{"100", "100"},
	}
	for _, c := range cases {
		n, ok := ParseDecimal(c.in)
		if !ok {
			t.Fatalf("ParseDecimal(%q): want ok", c.in)
		}
		if got := n.CanonicalString(); got != c.want {
			t.Errorf("CanonicalString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseDecimalRejectsNonFinite(t *testing.T) {
	if _, ok := ParseDecimal(""); ok {
		t.Error("empty string should not parse")
	}
	if _, ok := ParseDecimal("not a number"); ok {
		t.Error("non-numeric text should not parse")
	}
	for _, s := range []string{"Inf", "-inf", "+Inf", "NaN"} {
		if _, ok := ParseDecimal(s); ok {
			t.Errorf("ParseDecimal(%q) should reject a non-finite value", s)
		}
	}
}

func TestParseErrorLiteralIsCaseInsensitive(t *testing.T) {
	for _, spelling := range []string{"#ref!", "#REF!", "#Ref!"} {
		ev, ok := ParseErrorLiteral(spelling)
		if !ok {
			t.Fatalf("ParseErrorLiteral(%q): want ok", spelling)
		}
		if ev.Kind_ != ErrBadReference {
			t.Errorf("ParseErrorLiteral(%q) kind = %v, want ErrBadReference", spelling, ev.Kind_)
		}
	}
	if _, ok := ParseErrorLiteral("#NOPE!"); ok {
		t.Error("unrecognized spelling should not parse")
	}
}

func TestCompareCrossKindRanksNumberBeforeStringBeforeBool(t *testing.T) {
	n := NewNumberFromInt(5)
	s := StringValue{Value: "a"}
	b := BoolValue{Value: false}

	if cmp, _, isErr := Compare(n, s); isErr || cmp >= 0 {
		t.Errorf("Number should sort before String, got cmp=%d isErr=%v", cmp, isErr)
	}
	if cmp, _, isErr := Compare(s, b); isErr || cmp >= 0 {
		t.Errorf("String should sort before Bool, got cmp=%d isErr=%v", cmp, isErr)
	}
}

func TestCompareEmptyCoercesToZeroOfOtherKind(t *testing.T) {
	cmp, _, isErr := Compare(Empty, NewNumberFromInt(0))
	if isErr || cmp != 0 {
		t.Errorf("Empty vs Number(0) should compare equal, got cmp=%d isErr=%v", cmp, isErr)
	}
	cmp, _, isErr = Compare(Empty, NewNumberFromInt(1))
	if isErr || cmp >= 0 {
		t.Errorf("Empty vs Number(1): want Empty < 1, got cmp=%d isErr=%v", cmp, isErr)
	}
}

func TestComparePropagatesError(t *testing.T) {
	e := NewError(ErrDivideByZero, "")
	_, propagated, isErr := Compare(e, NewNumberFromInt(1))
	if !isErr || propagated.Kind_ != ErrDivideByZero {
		t.Errorf("Compare with an Error operand should propagate it, got isErr=%v propagated=%v", isErr, propagated)
	}
}

// TestSortCompareOrdersEmptyErrorNumberStringBool checks sort_region's
// broader ranking (spec.md §4.F), which Compare does not implement:
// Compare coerces a lone Empty to the other operand's zero and propagates
// an Error, where a sort key ranks both.
func TestSortCompareOrdersEmptyErrorNumberStringBool(t *testing.T) {
	ordered := []Value{
		Empty,
		NewError(ErrBadReference, ""),
		NewNumberFromInt(1),
		StringValue{Value: "x"},
		BoolValue{Value: true},
	}
	for i := 0; i < len(ordered)-1; i++ {
		if SortCompare(ordered[i], ordered[i+1]) >= 0 {
			t.Errorf("SortCompare(%v, %v) should be negative (index %d before %d)", ordered[i], ordered[i+1], i, i+1)
		}
	}
}

func TestSortCompareOrdersErrorsByKind(t *testing.T) {
	a := NewError(ErrParse, "")
	b := NewError(ErrDivideByZero, "")
	if SortCompare(a, b) >= 0 {
		t.Errorf("SortCompare should order errors by Kind_ enum value")
	}
}

func TestEqualIgnoresErrorDetail(t *testing.T) {
	a := NewError(ErrType, "left detail")
	b := NewError(ErrType, "right detail")
	if !Equal(a, b) {
		t.Error("two errors with the same Kind_ should be Equal regardless of Detail")
	}
}
