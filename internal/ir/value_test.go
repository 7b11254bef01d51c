package ir

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRDate{Year: 1957, Month: time.October, Day: 4}
	var _ IRValue = IRDecimal(29750)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestParseIRDate(t *testing.T) {
	d, err := ParseIRDate("1957-10-04")
	require.NoError(t, err)
	assert.Equal(t, IRDate{Year: 1957, Month: time.October, Day: 4}, d)
	assert.Equal(t, "1957-10-04", d.String())
	assert.Equal(t, time.Date(1957, 10, 4, 0, 0, 0, 0, time.UTC), d.Time())

	for _, bad := range []string{"", "twentyfifteen", "1957-13-01", "04/10/1957", "1957-10-04T19:28:00"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseIRDate(bad)
			assert.Error(t, err)
		})
	}
}

func TestIRDateCompare(t *testing.T) {
	a := IRDate{Year: 1957, Month: time.October, Day: 4}
	b := IRDate{Year: 1957, Month: time.November, Day: 3}
	c := IRDate{Year: 2020, Month: time.January, Day: 1}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, IRDate{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestParseIRDecimal(t *testing.T) {
	testCases := []struct {
		input    string
		expected IRDecimal
	}{
		{"29.75", 29750},
		{"62.0", 62000},
		{"62", 62000},
		{"7.5", 7500},
		{"1,160.0", 1160000},
		{" 0.001 ", 1},
		{".5", 500},
		{"5.", 5000},
		{"-3.25", -3250},
		{"+4", 4000},
		{"9223372036854775.807", 9223372036854775807},
		{"-9223372036854775.807", -9223372036854775807},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseIRDecimal(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestParseIRDecimalRejects(t *testing.T) {
	for _, bad := range []string{"", "-", ".", "abc", "1.2345", "1e3", "12.3.4", "9223372036854775807", "9223372036854775.808", "9223372036854775.999", "-9223372036854775.9", "9223372036854776"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseIRDecimal(bad)
			assert.Error(t, err)
		})
	}
}

func TestIRDecimalString(t *testing.T) {
	assert.Equal(t, "29.75", IRDecimal(29750).String())
	assert.Equal(t, "62", IRDecimal(62000).String())
	assert.Equal(t, "0.001", IRDecimal(1).String())
	assert.Equal(t, "-3.25", IRDecimal(-3250).String())
	assert.Equal(t, "0", IRDecimal(0).String())
	assert.InDelta(t, 29.75, IRDecimal(29750).Float64(), 1e-9)
}

func TestDecimalFromInt(t *testing.T) {
	d, err := DecimalFromInt(50)
	require.NoError(t, err)
	assert.Equal(t, IRDecimal(50000), d)

	d, err = DecimalFromInt(-9223372036854775)
	require.NoError(t, err)
	assert.Equal(t, IRDecimal(-9223372036854775000), d)

	for _, n := range []int64{9223372036854776, -9223372036854776, math.MaxInt64, math.MinInt64} {
		_, err := DecimalFromInt(n)
		assert.Error(t, err, n)
	}
}

func TestCompare(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     IRValue
		expected int
		ok       bool
	}{
		{"strings", IRString("CASC"), IRString("SpaceX"), -1, true},
		{"ints", IRInt(2020), IRInt(1957), 1, true},
		{"decimals", IRDecimal(62000), IRDecimal(62000), 0, true},
		{"dates", IRDate{Year: 1958, Month: 2, Day: 1}, IRDate{Year: 1957, Month: 12, Day: 6}, 1, true},
		{"bools", IRBool(false), IRBool(true), -1, true},
		{"mixed types", IRString("1"), IRInt(1), 0, false},
		{"null left", IRNull{}, IRInt(1), 0, false},
		{"null both", IRNull{}, IRNull{}, 0, false},
		{"arrays", IRArray{}, IRArray{}, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := Compare(tc.a, tc.b)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, c)
		})
	}
}

func TestEqualNullNeverEqual(t *testing.T) {
	assert.False(t, Equal(IRNull{}, IRNull{}))
	assert.True(t, Equal(IRString("Success"), IRString("Success")))
	assert.False(t, Equal(IRString("Success"), IRString("success")))
}

func TestFromAny(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "CASC", IRString("CASC")},
		{"int", 1957, IRInt(1957)},
		{"uint64", uint64(7), IRInt(7)},
		{"whole float", float64(50), IRInt(50)},
		{"fractional float", 29.75, IRDecimal(29750)},
		{"json number int", json.Number("12"), IRInt(12)},
		{"json number decimal", json.Number("7.5"), IRDecimal(7500)},
		{"time", time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC), IRDate{Year: 2000, Month: time.January, Day: 2}},
		{"list", []any{"a", 1}, IRArray{IRString("a"), IRInt(1)}},
		{"string list", []string{"a", "b"}, IRArray{IRString("a"), IRString("b")}},
		{"map", map[string]any{"k": true}, IRObject{"k": IRBool(true)}},
		{"ir passthrough", IRDecimal(1), IRDecimal(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := FromAny(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestFromAnyRejects(t *testing.T) {
	_, err := FromAny(0.0001)
	assert.Error(t, err)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(IRNull{}))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "CASC", Text(IRString("CASC")))
	assert.Equal(t, "2020", Text(IRInt(2020)))
	assert.Equal(t, "1957-10-04", Text(IRDate{Year: 1957, Month: 10, Day: 4}))
	assert.Equal(t, "29.75", Text(IRDecimal(29750)))
	assert.Equal(t, `["a",1]`, Text(IRArray{IRString("a"), IRInt(1)}))
}

func TestMarshalIRValue(t *testing.T) {
	data, err := MarshalIRValue(IRObject{
		"date":  IRDate{Year: 2020, Month: 7, Day: 23},
		"price": IRDecimal(7500),
		"miss":  IRNull{},
		"names": IRArray{IRString("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2020-07-23","miss":null,"names":["x"],"price":7.5}`, string(data))
}
