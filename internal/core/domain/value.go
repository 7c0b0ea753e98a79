package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date form used for parsing and emission.
const DateLayout = "2006-01-02T15:04:05.000"

// ValueType is a declared semantic type of a mapping row.
type ValueType string

const (
	// TypeUnspecified leaves the value as interpreted from the input.
	TypeUnspecified ValueType = ""

	// TypeString is the value's canonical text.
	TypeString ValueType = "string"

	// TypeInteger is a signed 32-bit integer.
	TypeInteger ValueType = "integer"

	// TypeLong is a signed 64-bit integer.
	TypeLong ValueType = "long"

	// TypeDouble is an IEEE-754 double.
	TypeDouble ValueType = "double"

	// TypeBoolean is true or false.
	TypeBoolean ValueType = "boolean"

	// TypeDate is a local timestamp in DateLayout.
	TypeDate ValueType = "date"
)

// typeAliases maps accepted spellings to their type.
var typeAliases = map[string]ValueType{
	"string":  TypeString,
	"integer": TypeInteger,
	"int":     TypeInteger,
	"long":    TypeLong,
	"double":  TypeDouble,
	"float":   TypeDouble,
	"boolean": TypeBoolean,
	"bool":    TypeBoolean,
	"date":    TypeDate,
}

// ParseValueType parses a type name case-insensitively.
// An empty name is TypeUnspecified.
func ParseValueType(s string) (ValueType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeUnspecified, nil
	}
	t, ok := typeAliases[s]
	if !ok {
		return TypeUnspecified, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// AllValueTypes returns all declarable types.
func AllValueTypes() []ValueType {
	return []ValueType{TypeString, TypeInteger, TypeLong, TypeDouble, TypeBoolean, TypeDate}
}

// IsValid returns true if the type is declarable or unspecified.
func (t ValueType) IsValid() bool {
	if t == TypeUnspecified {
		return true
	}
	for _, v := range AllValueTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// String returns the string representation of the type.
func (t ValueType) String() string {
	return string(t)
}

// ValueKind tags the variant held by a Value.
type ValueKind string

const (
	KindNull   ValueKind = "null"
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindLong   ValueKind = "long"
	KindDouble ValueKind = "double"
	KindBool   ValueKind = "bool"
	KindDate   ValueKind = "date"
)

// Value is a typed scalar: Null | String | Int | Long | Double | Bool | Date.
// Int and Long share the I field; Int values always fit in 32 bits.
// Lit is the source literal of a number read from the input and is the
// number's canonical text until the value is converted.
type Value struct {
	Kind ValueKind
	S    string
	I    int64
	F    float64
	B    bool
	T    time.Time
	Lit  string
}

// NullValue returns the null value.
func NullValue() Value { return Value{Kind: KindNull} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: KindString, S: s} }

// IntValue returns a 32-bit integer value.
func IntValue(i int32) Value { return Value{Kind: KindInt, I: int64(i)} }

// LongValue returns a 64-bit integer value.
func LongValue(i int64) Value { return Value{Kind: KindLong, I: i} }

// DoubleValue returns a double value.
func DoubleValue(f float64) Value { return Value{Kind: KindDouble, F: f} }

// NumberValue reads a JSON number literal. Integral literals that fit in
// 64 bits become longs, everything else a double. Either way the literal
// is kept as the value's text.
func NumberValue(text string) Value {
	var v Value
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			v = LongValue(i)
		}
	}
	if v.Kind == "" {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return StringValue(text)
		}
		v = DoubleValue(f)
	}
	v.Lit = text
	return v
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, B: b} }

// DateValue returns a date value.
func DateValue(t time.Time) Value { return Value{Kind: KindDate, T: t} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == ""
}

// String returns the canonical emission form of v.
func (v Value) String() string {
	if v.Lit != "" {
		return v.Lit
	}
	switch v.Kind {
	case KindString:
		return v.S
	case KindInt, KindLong:
		return strconv.FormatInt(v.I, 10)
	case KindDouble:
		return FormatDouble(v.F)
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindDate:
		return v.T.Format(DateLayout)
	default:
		return ""
	}
}

// FormatDouble renders f with a dot decimal and at least one fractional
// digit, independent of locale.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

var errIncompatible = errors.New("incompatible value")

// ParseValue interprets raw text as type t.
func ParseValue(raw string, t ValueType, loc *time.Location) (Value, error) {
	return StringValue(raw).Convert(t, loc)
}

// Convert coerces v to type t. Null converts to null for every type.
func (v Value) Convert(t ValueType, loc *time.Location) (Value, error) {
	if v.IsNull() || t == TypeUnspecified {
		return v, nil
	}
	switch t {
	case TypeString:
		return StringValue(v.String()), nil
	case TypeInteger:
		i, err := v.toInt(32)
		if err != nil {
			return Value{}, err
		}
		return IntValue(int32(i)), nil
	case TypeLong:
		i, err := v.toInt(64)
		if err != nil {
			return Value{}, err
		}
		return LongValue(i), nil
	case TypeDouble:
		return v.toDouble()
	case TypeBoolean:
		return v.toBool()
	case TypeDate:
		return v.toDate(loc)
	default:
		return Value{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, t)
	}
}

func (v Value) toInt(bits int) (int64, error) {
	switch v.Kind {
	case KindInt, KindLong:
		if bits == 32 && (v.I < math.MinInt32 || v.I > math.MaxInt32) {
			return 0, fmt.Errorf("%d overflows int%d", v.I, bits)
		}
		return v.I, nil
	case KindDouble:
		limit := math.Ldexp(1, bits-1)
		if v.F != math.Trunc(v.F) || v.F < -limit || v.F >= limit {
			return 0, fmt.Errorf("%s is not an int%d", FormatDouble(v.F), bits)
		}
		return int64(v.F), nil
	case KindString:
		return strconv.ParseInt(v.S, 10, bits)
	default:
		return 0, errIncompatible
	}
}

func (v Value) toDouble() (Value, error) {
	switch v.Kind {
	case KindInt, KindLong:
		return DoubleValue(float64(v.I)), nil
	case KindDouble:
		return DoubleValue(v.F), nil
	case KindString:
		f, err := strconv.ParseFloat(v.S, 64)
		if err != nil {
			return Value{}, err
		}
		return DoubleValue(f), nil
	default:
		return Value{}, errIncompatible
	}
}

func (v Value) toBool() (Value, error) {
	switch v.Kind {
	case KindBool:
		return v, nil
	case KindString:
		switch {
		case strings.EqualFold(v.S, "true"):
			return BoolValue(true), nil
		case strings.EqualFold(v.S, "false"):
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%q is not a boolean", v.S)
	default:
		return Value{}, errIncompatible
	}
}

func (v Value) toDate(loc *time.Location) (Value, error) {
	switch v.Kind {
	case KindDate:
		return v, nil
	case KindString:
		if loc == nil {
			loc = time.Local
		}
		t, err := time.ParseInLocation(DateLayout, v.S, loc)
		if err != nil {
			return Value{}, err
		}
		return DateValue(t), nil
	default:
		return Value{}, errIncompatible
	}
}
