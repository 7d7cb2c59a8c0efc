package main

import (
	"testing"

	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProp(t *testing.T) {
	cases := map[string]uint32{
		"0x11400400": 0x11400400,
		"0X11400400": 0x11400400,
		"289408000":  289408000,
		"0xffffffff": 0xffffffff,
	}
	for in, want := range cases {
		got, err := parseProp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "-1", "0x100000000", "prop", "0x"} {
		_, err := parseProp(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseArea(t *testing.T) {
	got, err := parseArea("0xffffffff")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), got)

	got, err = parseArea("-2")
	require.NoError(t, err)
	assert.Equal(t, int32(-2), got)

	got, err = parseArea("010")
	require.NoError(t, err)
	assert.Equal(t, int32(10), got, "leading zero stays decimal")

	_, err = parseArea("0x1ffffffff")
	assert.Error(t, err)
}

func TestParseTextByType(t *testing.T) {
	cases := []struct {
		t    protocol.ValueType
		in   string
		want any
	}{
		{protocol.TypeString, "hello", "hello"},
		{protocol.TypeInt64Vec, "hi", "hi"},
		{protocol.TypeBytes, "ab", []byte("ab")},
		{protocol.TypeBoolean, "true", true},
		{protocol.TypeBoolean, "2", int32(2)},
		{protocol.TypeInt32, "-0x10", int32(-16)},
		{protocol.TypeInt64, "1099511627776", int64(1 << 40)},
		{protocol.TypeFloat, "1.5", float32(1.5)},
		{protocol.TypeInt32Vec, "1, 2,3", []int32{1, 2, 3}},
		{protocol.TypeFloatVec, "0.5,-1", []float32{0.5, -1}},
	}
	for _, tc := range cases {
		got, err := parseRaw(tc.t, tc.in, formatText)
		require.NoError(t, err, "%s %q", tc.t, tc.in)
		assert.Equal(t, tc.want, got, "%s %q", tc.t, tc.in)
	}

	_, err := parseRaw(protocol.TypeInt32, "4294967296", formatText)
	assert.Error(t, err)
	_, err = parseRaw(protocol.TypeMixed, "x", formatText)
	assert.Error(t, err)
	_, err = parseRaw(protocol.ValueType(0x300000), "x", formatText)
	assert.ErrorIs(t, err, value.ErrUnknownValueType)
}

func TestParseHexAndJSON(t *testing.T) {
	got, err := parseRaw(protocol.TypeBytes, "0xdeadbeef", formatHex)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got)

	_, err = parseRaw(protocol.TypeBytes, "zz", formatHex)
	assert.Error(t, err)

	got, err = parseRaw(protocol.TypeInt64Vec, "[1,-2]", formatJSON)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2}, got)

	got, err = parseRaw(protocol.TypeMixed, `{"string":"s","bytes":"0102","int32s":[7],"floats":[0.25]}`, formatJSON)
	require.NoError(t, err)
	s := "s"
	assert.Equal(t, value.Mixed{String: &s, Bytes: []byte{1, 2}, Int32s: []int32{7}, Floats: []float32{0.25}}, got)

	_, err = parseRaw(protocol.TypeInt32, "{", formatJSON)
	assert.Error(t, err)
}

func TestParsedValuesEncode(t *testing.T) {
	raw, err := parseRaw(protocol.TypeInt64Vec, "hi", formatText)
	require.NoError(t, err)
	pv, err := value.NewPropValue(0x11510000, 0, protocol.TypeInt64Vec, raw)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0x6968}, pv.Int64Values)
}
