package value

import (
	"math/big"
	"strings"
)

// ParseDecimal parses a trimmed decimal literal into a NumberValue. It
// rejects anything that would render as a non-finite value: Number never
// represents infinity or NaN (spec.md §3); callers that need the "store as
// String instead" fallback check ok before falling back.
func ParseDecimal(s string) (NumberValue, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NumberValue{}, false
	}
	f, _, err := big.ParseFloat(s, 10, Precision, big.ToNearestEven)
	if err != nil {
		return NumberValue{}, false
	}
	if f.IsInf() {
		return NumberValue{}, false
	}
	return NumberValue{Big: f}, true
}

// CanonicalString renders a NumberValue per spec.md §4.A: strip trailing
// zeros after '.', strip the '.' itself if no fractional digits remain, no
// leading '+', "-0" normalized to "0".
func (n NumberValue) CanonicalString() string {
	if n.Big == nil {
		return "0"
	}
	if n.Big.Sign() == 0 {
		return "0"
	}
	// 40 fractional digits comfortably covers the >=30 significant digit
	// floor even for numbers with a handful of integer digits.
	text := n.Big.Text('f', 40)
	return canonicalizeDecimalText(text)
}

func canonicalizeDecimalText(text string) string {
	neg := false
	if strings.HasPrefix(text, "-") {
		neg = true
		text = text[1:]
	}
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimRight(text, ".")
	}
	if text == "" || text == "0" {
		return "0"
	}
	if neg {
		return "-" + text
	}
	return text
}

// Cmp compares two numbers by magnitude.
func (n NumberValue) Cmp(other NumberValue) int {
	return n.Big.Cmp(other.Big)
}

// IsZero reports whether the number is exactly zero.
func (n NumberValue) IsZero() bool {
	return n.Big == nil || n.Big.Sign() == 0
}

// Add, Sub, Mul, Div implement the four arithmetic operators at the
// engine's working precision. Div does not guard against a zero divisor;
// callers apply spec.md's DivideByZero rule before calling it.
func (n NumberValue) Add(other NumberValue) NumberValue {
	return NewNumber(new(big.Float).SetPrec(Precision).Add(n.Big, other.Big))
}

func (n NumberValue) Sub(other NumberValue) NumberValue {
	return NewNumber(new(big.Float).SetPrec(Precision).Sub(n.Big, other.Big))
}

func (n NumberValue) Mul(other NumberValue) NumberValue {
	return NewNumber(new(big.Float).SetPrec(Precision).Mul(n.Big, other.Big))
}

func (n NumberValue) Div(other NumberValue) NumberValue {
	return NewNumber(new(big.Float).SetPrec(Precision).Quo(n.Big, other.Big))
}

func (n NumberValue) Neg() NumberValue {
	return NewNumber(new(big.Float).SetPrec(Precision).Neg(n.Big))
}

// Int64 truncates toward zero, used by functions that require an integer
// index (CHOOSE, HLOOKUP/VLOOKUP).
func (n NumberValue) Int64() (int64, bool) {
	if n.Big == nil {
		return 0, true
	}
	i, acc := n.Big.Int64()
	return i, acc == big.Exact || acc == big.Below || acc == big.Above
}

// IsIntegral reports whether the number has no fractional part.
func (n NumberValue) IsIntegral() bool {
	if n.Big == nil {
		return true
	}
	return n.Big.IsInt()
}
