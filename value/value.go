// Package value implements the CellValue lattice (spec.md §3, §4.A): the
// Empty/Number/String/Bool/Error tagged union, its coercions, and its
// comparison and canonicalization rules.
//
// There is no third-party arbitrary-precision decimal library anywhere in
// the retrieval pack (TsubasaBE-go-xlsb, artukn-excelize, broyeztony-karl,
// kalexmills-spreadsheets and vogtb-go-spreadsheet all either skip numeric
// precision concerns entirely or use plain float64/int64). Number is
// therefore built on the standard library's math/big, which is the only
// option grounded in the pack for the "at least 30 significant digits"
// requirement of spec.md §4.A.
package value

import "math/big"

// Precision is the working precision, in bits, used for all Number
// arithmetic. 200 bits comfortably exceeds the ~100 bits needed for 30
// decimal significant digits.
const Precision = 200

type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindString
	KindBool
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Value is the interface satisfied by every member of the CellValue union.
type Value interface {
	Kind() Kind
}

type EmptyValue struct{}

func (EmptyValue) Kind() Kind { return KindEmpty }

var Empty Value = EmptyValue{}

type NumberValue struct {
	Big *big.Float
}

func (NumberValue) Kind() Kind { return KindNumber }

// NewNumber wraps a big.Float at the engine's working precision.
func NewNumber(f *big.Float) NumberValue {
	out := new(big.Float).SetPrec(Precision)
	out.Set(f)
	return NumberValue{Big: out}
}

// NewNumberFromInt builds a NumberValue from a plain int64, a convenience
// used throughout eval and workbook for literal counts and indices.
func NewNumberFromInt(n int64) NumberValue {
	return NewNumber(new(big.Float).SetInt64(n))
}

type StringValue struct {
	Value string
}

func (StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Value bool
}

func (BoolValue) Kind() Kind { return KindBool }

// ErrorKind enumerates the six canonical cell-error spellings (spec.md §3,
// §6).
type ErrorKind int

const (
	ErrGeneric ErrorKind = iota
	ErrParse
	ErrCircular
	ErrBadReference
	ErrBadName
	ErrType
	ErrDivideByZero
)

// Spelling returns the canonical uppercase rendering of an error kind.
func (k ErrorKind) Spelling() string {
	switch k {
	case ErrParse:
		return "#ERROR!"
	case ErrCircular:
		return "#CIRCREF!"
	case ErrBadReference:
		return "#REF!"
	case ErrBadName:
		return "#NAME?"
	case ErrType:
		return "#VALUE!"
	case ErrDivideByZero:
		return "#DIV/0!"
	default:
		return "#ERROR!"
	}
}

type ErrorValue struct {
	Kind_  ErrorKind
	Detail string
}

func (ErrorValue) Kind() Kind { return KindError }

func NewError(kind ErrorKind, detail string) ErrorValue {
	return ErrorValue{Kind_: kind, Detail: detail}
}

// errorLiterals maps every recognized (case-insensitive) error spelling to
// its kind, for parsing error literals both from cell content (spec.md §6)
// and from formula atoms (spec.md §4.C).
var errorLiterals = map[string]ErrorKind{
	"#ERROR!":   ErrParse,
	"#CIRCREF!": ErrCircular,
	"#REF!":     ErrBadReference,
	"#NAME?":    ErrBadName,
	"#VALUE!":   ErrType,
	"#DIV/0!":   ErrDivideByZero,
}

// ParseErrorLiteral looks up s (case-insensitively) as one of the six
// canonical error spellings.
func ParseErrorLiteral(s string) (ErrorValue, bool) {
	upper := upperASCII(s)
	kind, ok := errorLiterals[upper]
	if !ok {
		return ErrorValue{}, false
	}
	return NewError(kind, ""), true
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
