package expression

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type intrinsic struct {
	minArgs int
	maxArgs int // -1 for variadic
	call    func(args []value) (value, error)
}

var intrinsics = map[string]intrinsic{
	"upper": {1, 1, func(a []value) (value, error) {
		return stringValue(strings.ToUpper(a[0].text())), nil
	}},
	"lower": {1, 1, func(a []value) (value, error) {
		return stringValue(strings.ToLower(a[0].text())), nil
	}},
	"trim": {1, 1, func(a []value) (value, error) {
		return stringValue(strings.TrimSpace(a[0].text())), nil
	}},
	"len": {1, 1, func(a []value) (value, error) {
		return numberValue(decimal.NewFromInt(int64(utf8.RuneCountInString(a[0].text()))), true), nil
	}},
	"substr": {2, 3, substr},
	"format": {1, -1, format},
	"round":  {1, 2, round},
}

// substr slices by rune index, end exclusive. Out of range bounds fail.
func substr(a []value) (value, error) {
	runes := []rune(a[0].text())
	start, err := intArg(a[1])
	if err != nil {
		return value{}, err
	}
	end := len(runes)
	if len(a) == 3 {
		if end, err = intArg(a[2]); err != nil {
			return value{}, err
		}
	}
	if start < 0 || end > len(runes) || start > end {
		return value{}, fmt.Errorf("range [%d:%d] out of bounds for length %d", start, end, len(runes))
	}
	return stringValue(string(runes[start:end])), nil
}

func format(a []value) (value, error) {
	if a[0].kind != kindString {
		return value{}, errors.New("pattern must be a string")
	}
	args := make([]any, 0, len(a)-1)
	for _, v := range a[1:] {
		args = append(args, formatArg(v))
	}
	out := fmt.Sprintf(a[0].str, args...)
	if strings.Contains(out, "%!") {
		return value{}, fmt.Errorf("pattern %q does not match its arguments", a[0].str)
	}
	return stringValue(out), nil
}

func formatArg(v value) any {
	switch v.kind {
	case kindNumber:
		if v.integral {
			return v.num.IntPart()
		}
		f, _ := v.num.Float64()
		return f
	case kindBool:
		return v.b
	case kindNull:
		return nil
	default:
		return v.text()
	}
}

func round(a []value) (value, error) {
	if a[0].kind != kindNumber {
		return value{}, fmt.Errorf("cannot round %s", a[0].typeName())
	}
	places := 0
	if len(a) == 2 {
		var err error
		if places, err = intArg(a[1]); err != nil {
			return value{}, err
		}
	}
	return numberValue(a[0].num.Round(int32(places)), a[0].integral || places <= 0), nil
}

func intArg(v value) (int, error) {
	if v.kind != kindNumber || !v.num.IsInteger() {
		return 0, fmt.Errorf("expected an integer argument, got %s", v.typeName())
	}
	return int(v.num.IntPart()), nil
}
