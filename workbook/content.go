package workbook

import (
	"strings"

	"gridcalc/value"
)

// canonicalizeContent implements the first two steps of the commit
// protocol (spec.md §4.F): trim whitespace, and treat pure whitespace (or
// an empty string) as "no content".
func canonicalizeContent(text string) (trimmed string, isNone bool) {
	trimmed = strings.TrimSpace(text)
	return trimmed, trimmed == ""
}

// classifyLiteral implements the non-formula content-priority rules of
// spec.md §6: a leading `'` forces an explicit string (apostrophe
// stripped from the value only); otherwise try error literal, then
// number, then TRUE/FALSE, else plain string. A literal that would parse
// as infinity or NaN falls through to the string case because
// value.ParseDecimal already rejects non-finite results.
func classifyLiteral(trimmed string) value.Value {
	if strings.HasPrefix(trimmed, "'") {
		return value.StringValue{Value: trimmed[1:]}
	}
	if ev, ok := value.ParseErrorLiteral(trimmed); ok {
		return ev
	}
	if n, ok := value.ParseDecimal(trimmed); ok {
		return n
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return value.BoolValue{Value: true}
	case "false":
		return value.BoolValue{Value: false}
	}
	return value.StringValue{Value: trimmed}
}
