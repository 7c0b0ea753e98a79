package expression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

func TestProgram_Eval(t *testing.T) {
	tests := []struct {
		src  string
		val  domain.Value
		want string
		kind domain.ValueKind
	}{
		{src: "val*1.1", val: domain.DoubleValue(100), want: "110.0", kind: domain.KindDouble},
		{src: "100 * 1.1 == 110", val: domain.NullValue(), want: "true", kind: domain.KindBool},
		{src: "val + 1", val: domain.LongValue(41), want: "42", kind: domain.KindLong},
		{src: "val + 1", val: domain.IntValue(1), want: "2", kind: domain.KindLong},
		{src: "7 / 2", val: domain.NullValue(), want: "3", kind: domain.KindLong},
		{src: "7.0 / 2", val: domain.NullValue(), want: "3.5", kind: domain.KindDouble},
		{src: "-7 / 2", val: domain.NullValue(), want: "-3", kind: domain.KindLong},
		{src: "7 % 3", val: domain.NullValue(), want: "1", kind: domain.KindLong},
		{src: "1 + 2 * 3", val: domain.NullValue(), want: "7", kind: domain.KindLong},
		{src: "(1 + 2) * 3", val: domain.NullValue(), want: "9", kind: domain.KindLong},
		{src: "-val", val: domain.LongValue(3), want: "-3", kind: domain.KindLong},
		{src: "'id-' + val", val: domain.LongValue(1), want: "id-1", kind: domain.KindString},
		{src: "val + 'x'", val: domain.NullValue(), want: "x", kind: domain.KindString},
		{src: "val + 0.5", val: domain.DoubleValue(1.25), want: "1.75", kind: domain.KindDouble},
		{src: "val + 1", val: domain.NumberValue("12345678901234567890"), want: "12345678901234567891", kind: domain.KindDouble},
		{src: "val * 2", val: domain.NumberValue("1e2"), want: "200.0", kind: domain.KindDouble},
		{src: "val == 1.5", val: domain.NumberValue("1.50"), want: "true", kind: domain.KindBool},
		{src: "upper(val)", val: domain.StringValue("abc"), want: "ABC", kind: domain.KindString},
		{src: "lower('ABC')", val: domain.NullValue(), want: "abc", kind: domain.KindString},
		{src: "trim('  x ')", val: domain.NullValue(), want: "x", kind: domain.KindString},
		{src: "len('héllo')", val: domain.NullValue(), want: "5", kind: domain.KindLong},
		{src: "substr('abcdef', 1, 3)", val: domain.NullValue(), want: "bc", kind: domain.KindString},
		{src: "substr(val, 1)", val: domain.StringValue("äbc"), want: "bc", kind: domain.KindString},
		{src: "format('%s-%d', 'a', 7)", val: domain.NullValue(), want: "a-7", kind: domain.KindString},
		{src: "format('%.2f', val)", val: domain.DoubleValue(2.5), want: "2.50", kind: domain.KindString},
		{src: "round(val, 2)", val: domain.DoubleValue(2.345), want: "2.35", kind: domain.KindDouble},
		{src: "round(2.5)", val: domain.NullValue(), want: "3", kind: domain.KindLong},
		{src: "val > 10 ? 'big' : 'small'", val: domain.LongValue(11), want: "big", kind: domain.KindString},
		{src: "val > 10 ? 'big' : val > 5 ? 'mid' : 'small'", val: domain.LongValue(7), want: "mid", kind: domain.KindString},
		{src: "val == null", val: domain.NullValue(), want: "true", kind: domain.KindBool},
		{src: "val != null", val: domain.StringValue(""), want: "true", kind: domain.KindBool},
		{src: "val == '5'", val: domain.LongValue(5), want: "true", kind: domain.KindBool},
		{src: "'b' >= 'a'", val: domain.NullValue(), want: "true", kind: domain.KindBool},
		{src: "!val", val: domain.StringValue(""), want: "true", kind: domain.KindBool},
		{src: "true && false || true", val: domain.NullValue(), want: "true", kind: domain.KindBool},
		{src: "false && 1 / 0", val: domain.NullValue(), want: "false", kind: domain.KindBool},
		{src: `'it\'s'`, val: domain.NullValue(), want: "it's", kind: domain.KindString},
		{src: `"a\tb"`, val: domain.NullValue(), want: "a\tb", kind: domain.KindString},
		{src: "null", val: domain.LongValue(1), want: "", kind: domain.KindNull},
		{src: "val", val: domain.BoolValue(true), want: "true", kind: domain.KindBool},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Compile(tt.src)
			require.NoError(t, err)

			got, err := p.Eval(tt.val)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestProgram_EvalErrors(t *testing.T) {
	tests := []struct {
		src string
		val domain.Value
	}{
		{"1 / 0", domain.NullValue()},
		{"val % 0", domain.LongValue(4)},
		{"-val", domain.StringValue("x")},
		{"val * 2", domain.StringValue("x")},
		{"1 < 'a'", domain.NullValue()},
		{"substr('abc', 2, 5)", domain.NullValue()},
		{"substr('abc', 1.5)", domain.NullValue()},
		{"format('%d', 'x')", domain.NullValue()},
		{"format(1)", domain.NullValue()},
		{"round('x')", domain.NullValue()},
		{"val", domain.DoubleValue(math.NaN())},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Compile(tt.src)
			require.NoError(t, err)
			_, err = p.Eval(tt.val)
			assert.Error(t, err)
		})
	}
}

func TestCompile_Rejects(t *testing.T) {
	for _, src := range []string{
		"",
		"foo",
		"val +",
		"1 2",
		"(1",
		"'abc",
		`'\q'`,
		"upper()",
		"substr('a')",
		"lower('a', 'b')",
		"bar(1)",
		"val # 1",
		"val ? 1",
		"val.name",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			assert.Error(t, err)
		})
	}
}

func TestCompile_RejectsNonASCIIDigits(t *testing.T) {
	_, err := Compile("val + ٣")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected character")
}

func TestProgram_Source(t *testing.T) {
	p, err := Compile("  val * 2 ")
	require.NoError(t, err)
	assert.Equal(t, "  val * 2 ", p.Source())

	var c Compiler
	prog, err := c.Compile("upper(val)")
	require.NoError(t, err)
	got, err := prog.Eval(domain.StringValue("x"))
	require.NoError(t, err)
	assert.Equal(t, "X", got.String())

	_, err = c.Compile("nope(")
	assert.Error(t, err)
}

func TestProgram_Deterministic(t *testing.T) {
	a, err := Compile("val * 3 + 1")
	require.NoError(t, err)
	b, err := Compile("val * 3 + 1")
	require.NoError(t, err)
	assert.Equal(t, a.root, b.root)
}
