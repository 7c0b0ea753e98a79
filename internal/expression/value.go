package expression

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindString
	kindNumber
	kindBool
	kindDate
)

// value is the evaluator's working representation. Numbers are decimals;
// integral marks numbers whose arithmetic stays in the integers.
type value struct {
	kind     valueKind
	str      string
	num      decimal.Decimal
	integral bool
	b        bool
	t        time.Time
}

var nullValue = value{kind: kindNull}

func stringValue(s string) value { return value{kind: kindString, str: s} }

func boolValue(b bool) value { return value{kind: kindBool, b: b} }

func numberValue(d decimal.Decimal, integral bool) value {
	return value{kind: kindNumber, num: d, integral: integral}
}

var errNonFinite = errors.New("non-finite number")

// fromDomain converts a pipeline value into an evaluator value.
func fromDomain(v domain.Value) (value, error) {
	switch v.Kind {
	case domain.KindString:
		return stringValue(v.S), nil
	case domain.KindInt, domain.KindLong:
		return numberValue(decimal.NewFromInt(v.I), true), nil
	case domain.KindDouble:
		if v.Lit != "" {
			if d, err := decimal.NewFromString(v.Lit); err == nil {
				return numberValue(d, !strings.ContainsAny(v.Lit, ".eE")), nil
			}
		}
		if math.IsNaN(v.F) || math.IsInf(v.F, 0) {
			return value{}, errNonFinite
		}
		return numberValue(decimal.NewFromFloat(v.F), false), nil
	case domain.KindBool:
		return boolValue(v.B), nil
	case domain.KindDate:
		return value{kind: kindDate, t: v.T}, nil
	default:
		return nullValue, nil
	}
}

// toDomain converts an evaluator result into a pipeline value.
// Integral numbers become longs when they fit, everything else doubles.
func (v value) toDomain() domain.Value {
	switch v.kind {
	case kindString:
		return domain.StringValue(v.str)
	case kindNumber:
		if v.integral && v.num.IsInteger() {
			n := v.num.BigInt()
			if n.IsInt64() {
				return domain.LongValue(n.Int64())
			}
			f, _ := v.num.Float64()
			d := domain.DoubleValue(f)
			d.Lit = n.String()
			return d
		}
		f, _ := v.num.Float64()
		return domain.DoubleValue(f)
	case kindBool:
		return domain.BoolValue(v.b)
	case kindDate:
		return domain.DateValue(v.t)
	default:
		return domain.NullValue()
	}
}

// text is the canonical string form used by concatenation and the
// string intrinsics.
func (v value) text() string {
	if v.kind == kindNull {
		return ""
	}
	return v.toDomain().String()
}

func (v value) truthy() bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindNumber:
		return !v.num.IsZero()
	case kindString:
		return v.str != ""
	case kindDate:
		return true
	default:
		return false
	}
}

func (v value) typeName() string {
	switch v.kind {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	case kindDate:
		return "date"
	default:
		return "null"
	}
}
