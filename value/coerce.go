package value

import "strings"

// ToNumber implements spec.md §4.A's to_number coercion.
func ToNumber(v Value) Value {
	switch t := v.(type) {
	case EmptyValue:
		return NewNumberFromInt(0)
	case BoolValue:
		if t.Value {
			return NewNumberFromInt(1)
		}
		return NewNumberFromInt(0)
	case StringValue:
		n, ok := ParseDecimal(t.Value)
		if !ok {
			return NewError(ErrType, "cannot convert string to number: "+t.Value)
		}
		return n
	case NumberValue:
		return t
	case ErrorValue:
		return t
	default:
		return NewError(ErrType, "cannot convert to number")
	}
}

// ToStringValue implements spec.md §4.A's to_string coercion.
func ToStringValue(v Value) Value {
	switch t := v.(type) {
	case EmptyValue:
		return StringValue{Value: ""}
	case BoolValue:
		if t.Value {
			return StringValue{Value: "TRUE"}
		}
		return StringValue{Value: "FALSE"}
	case NumberValue:
		return StringValue{Value: t.CanonicalString()}
	case StringValue:
		return t
	case ErrorValue:
		return t
	default:
		return NewError(ErrType, "cannot convert to string")
	}
}

// ToBool implements spec.md §4.A's to_bool coercion.
func ToBool(v Value) Value {
	switch t := v.(type) {
	case EmptyValue:
		return BoolValue{Value: false}
	case NumberValue:
		return BoolValue{Value: !t.IsZero()}
	case StringValue:
		switch strings.ToLower(t.Value) {
		case "true":
			return BoolValue{Value: true}
		case "false":
			return BoolValue{Value: false}
		default:
			return NewError(ErrType, "cannot convert string to boolean: "+t.Value)
		}
	case BoolValue:
		return t
	case ErrorValue:
		return t
	default:
		return NewError(ErrType, "cannot convert to boolean")
	}
}

// AsError reports whether v is an Error, returning it typed.
func AsError(v Value) (ErrorValue, bool) {
	e, ok := v.(ErrorValue)
	return e, ok
}
