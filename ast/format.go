package ast

import (
	"strconv"
	"strings"

	"gridcalc/address"
)

// Format re-emits an expression as formula text (without the leading
// '='), used by the reference-rewriting transformers after shifting or
// renaming a reference (spec.md §9: "Re-emission to text uses a canonical
// formatter").
func Format(e Expression) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Expression) {
	switch n := e.(type) {
	case *NumberLiteral:
		b.WriteString(n.Text)
	case *StringLiteral:
		b.WriteByte('"')
		b.WriteString(n.Value)
		b.WriteByte('"')
	case *BoolLiteral:
		if n.Value {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}
	case *ErrorLiteral:
		b.WriteString(n.Kind.Spelling())
	case *CellRef:
		formatRef(b, n)
	case *RangeRef:
		formatRangeRef(b, n)
	case *UnaryExpr:
		b.WriteString(string(n.Op))
		format(b, n.X)
	case *BinaryExpr:
		format(b, n.X)
		b.WriteString(string(n.Op))
		format(b, n.Y)
	case *CallExpr:
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, arg)
		}
		b.WriteByte(')')
	default:
		b.WriteString("#ERROR!")
	}
}

func formatRef(b *strings.Builder, ref *CellRef) {
	if ref.HasSheet {
		b.WriteString(address.QuoteIfNeeded(ref.Sheet))
		b.WriteByte('!')
	}
	b.WriteString(ref.Addr.String())
}

func formatRangeRef(b *strings.Builder, r *RangeRef) {
	if r.Start.HasSheet {
		b.WriteString(address.QuoteIfNeeded(r.Start.Sheet))
		b.WriteByte('!')
	}
	b.WriteString(r.Start.Addr.String())
	b.WriteByte(':')
	b.WriteString(r.End.Addr.String())
}

// FormatNumber renders an integer as formula-literal text, used when a
// transformer needs to synthesize a fresh numeric literal node.
func FormatNumber(n int64) string {
	return strconv.FormatInt(n, 10)
}
