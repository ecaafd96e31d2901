// Package address parses and renders A1-style cell and range addresses,
// and implements the base-26 column arithmetic and sheet-name quoting
// rules described in spec.md §4.B and §6.
package address

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	MaxCol = 475253 // ZZZZ, zero-indexed (26+26^2+26^3+26^4 - 1)
	MaxRow = 9999
)

// CellAddress is a single (column, row) location, zero-indexed internally,
// with independent absolute ('$') flags per component.
type CellAddress struct {
	Col    uint32
	Row    uint32
	ColAbs bool
	RowAbs bool
}

var addrPattern = regexp.MustCompile(`^(\$?)([A-Za-z]{1,4})(\$?)([1-9][0-9]{0,3})$`)

// ErrInvalidAddress is returned by Parse when the input does not match the
// A1 address surface or falls outside [A1, ZZZZ9999].
var ErrInvalidAddress = fmt.Errorf("invalid cell address")

// Parse parses a single A1-style address such as "B12" or "$B$12".
func Parse(s string) (CellAddress, error) {
	m := addrPattern.FindStringSubmatch(s)
	if m == nil {
		return CellAddress{}, ErrInvalidAddress
	}
	col, err := ColumnIndex(m[2])
	if err != nil {
		return CellAddress{}, ErrInvalidAddress
	}
	row, err := strconv.Atoi(m[4])
	if err != nil {
		return CellAddress{}, ErrInvalidAddress
	}
	if col > MaxCol || row < 1 || row > MaxRow {
		return CellAddress{}, ErrInvalidAddress
	}
	return CellAddress{
		Col:    uint32(col),
		Row:    uint32(row - 1),
		ColAbs: m[1] == "$",
		RowAbs: m[3] == "$",
	}, nil
}

// IsValid reports whether s is a well-formed, in-bounds A1 address.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// ColumnIndex converts a column letter sequence (e.g. "A", "Z", "AA") to its
// zero-indexed column number. The bijection is base-26 with 1-origin
// "digits" so no shorter name is a prefix of a longer one.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, ErrInvalidAddress
	}
	n := 0
	for _, ch := range letters {
		var d int
		switch {
		case ch >= 'A' && ch <= 'Z':
			d = int(ch-'A') + 1
		case ch >= 'a' && ch <= 'z':
			d = int(ch-'a') + 1
		default:
			return 0, ErrInvalidAddress
		}
		n = n*26 + d
	}
	return n - 1, nil
}

// ColumnLetters converts a zero-indexed column number back to its A1 letter
// sequence.
func ColumnLetters(col uint32) string {
	n := int64(col) + 1
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// String renders the address in A1 form, honoring the absolute flags.
func (a CellAddress) String() string {
	var b strings.Builder
	if a.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(ColumnLetters(a.Col))
	if a.RowAbs {
		b.WriteByte('$')
	}
	fmt.Fprintf(&b, "%d", a.Row+1)
	return b.String()
}

// Normalized renders the address lowercase with absolute markers stripped,
// the canonical form used as a dependency-graph key (spec.md §3, I2).
func (a CellAddress) Normalized() string {
	return strings.ToLower(ColumnLetters(a.Col)) + strconv.FormatUint(uint64(a.Row)+1, 10)
}

// CellRange is a pair of corner addresses; Rectangle normalizes them into
// inclusive column/row bounds regardless of which corner was given first.
type CellRange struct {
	Start CellAddress
	End   CellAddress
}

// Rectangle returns the normalized (minCol, maxCol, minRow, maxRow) bounds.
func (r CellRange) Rectangle() (minCol, maxCol, minRow, maxRow uint32) {
	minCol, maxCol = r.Start.Col, r.End.Col
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	minRow, maxRow = r.Start.Row, r.End.Row
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	return
}

// Addresses enumerates every cell address within the rectangle, row-major.
func (r CellRange) Addresses() []CellAddress {
	minCol, maxCol, minRow, maxRow := r.Rectangle()
	var out []CellAddress
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			out = append(out, CellAddress{Col: col, Row: row})
		}
	}
	return out
}

var sheetNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NeedsQuoting reports whether a sheet name must be single-quoted when it
// appears in a formula (spec.md §6).
func NeedsQuoting(name string) bool {
	return !sheetNamePattern.MatchString(name)
}

// sheetAlphabet is the permitted character set for sheet names: letters,
// digits, spaces, and `.?!,:;!@#$%^&*()-_`.
var sheetAlphabet = regexp.MustCompile(`^[A-Za-z0-9 .?!,:;@#$%^&*()\-_]+$`)

// ValidSheetName validates a sheet name per spec.md §6: non-empty, drawn
// from the permitted alphabet, no leading/trailing whitespace, no quote
// characters.
func ValidSheetName(name string) error {
	if name == "" {
		return fmt.Errorf("sheet name must not be empty")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("sheet name must not start or end with whitespace")
	}
	if strings.ContainsAny(name, "'\"") {
		return fmt.Errorf("sheet name must not contain a quote character")
	}
	if !sheetAlphabet.MatchString(name) {
		return fmt.Errorf("sheet name %q contains an unsupported character", name)
	}
	return nil
}

// QuoteIfNeeded renders a sheet name for embedding in a formula, quoting it
// iff NeedsQuoting reports true.
func QuoteIfNeeded(name string) string {
	if NeedsQuoting(name) {
		return "'" + name + "'"
	}
	return name
}
