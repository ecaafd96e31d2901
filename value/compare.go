package value

import "strings"

// kindRank implements the fixed cross-kind ordering used by formula
// comparison operators: Number < String < Bool (spec.md §4.E).
func kindRank(v Value) int {
	switch v.(type) {
	case NumberValue:
		return 0
	case StringValue:
		return 1
	case BoolValue:
		return 2
	default:
		return -1
	}
}

func zeroOfKind(v Value) Value {
	switch v.(type) {
	case NumberValue:
		return NewNumberFromInt(0)
	case StringValue:
		return StringValue{Value: ""}
	case BoolValue:
		return BoolValue{Value: false}
	default:
		return v
	}
}

// Compare implements the operator-level comparison rules of spec.md §4.E.
// It returns (cmp, ErrorValue{}, false) when both operands resolved to
// comparable, non-error values (cmp < 0, == 0, > 0 as usual), or
// (0, err, true) with the propagated error value when either operand is an
// Error (the left one first). Two Empty operands compare equal (explicit
// case below); a single Empty is coerced to the other operand's zero of
// its kind.
func Compare(a, b Value) (cmp int, propagated ErrorValue, isError bool) {
	if ea, ok := a.(ErrorValue); ok {
		return 0, ea, true
	}
	if eb, ok := b.(ErrorValue); ok {
		return 0, eb, true
	}

	_, aEmpty := a.(EmptyValue)
	_, bEmpty := b.(EmptyValue)
	switch {
	case aEmpty && bEmpty:
		return 0, ErrorValue{}, false
	case aEmpty:
		a = zeroOfKind(b)
	case bEmpty:
		b = zeroOfKind(a)
	}

	if kindRank(a) == kindRank(b) {
		return compareSameKind(a, b), ErrorValue{}, false
	}
	return kindRank(a) - kindRank(b), ErrorValue{}, false
}

func compareSameKind(a, b Value) int {
	switch av := a.(type) {
	case NumberValue:
		return av.Cmp(b.(NumberValue))
	case StringValue:
		return strings.Compare(strings.ToLower(av.Value), strings.ToLower(b.(StringValue).Value))
	case BoolValue:
		bv := b.(BoolValue)
		if av.Value == bv.Value {
			return 0
		}
		if !av.Value && bv.Value {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// sortKindRank implements the broader ranking used by sort_region (spec.md
// §4.F): Empty < Error < Number < String < Bool, with Errors further
// ordered by their Kind_ enum value.
func sortKindRank(v Value) int {
	switch v.(type) {
	case EmptyValue:
		return 0
	case ErrorValue:
		return 1
	case NumberValue:
		return 2
	case StringValue:
		return 3
	case BoolValue:
		return 4
	default:
		return 5
	}
}

// SortCompare orders two raw cell values for sort_region, including Empty
// and Error in the ranking (unlike Compare, which coerces a lone Empty to
// the other operand's zero and propagates an Error instead of ranking it).
func SortCompare(a, b Value) int {
	ra, rb := sortKindRank(a), sortKindRank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case ErrorValue:
		bv := b.(ErrorValue)
		return int(av.Kind_) - int(bv.Kind_)
	case EmptyValue:
		return 0
	default:
		return compareSameKind(a, b)
	}
}

// Equal reports value equality for notification diffing (spec.md §4.F
// step 9): two Errors with the same Kind_ are equal regardless of Detail.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case EmptyValue:
		return true
	case NumberValue:
		return av.Cmp(b.(NumberValue)) == 0
	case StringValue:
		return av.Value == b.(StringValue).Value
	case BoolValue:
		return av.Value == b.(BoolValue).Value
	case ErrorValue:
		return av.Kind_ == b.(ErrorValue).Kind_
	default:
		return false
	}
}
