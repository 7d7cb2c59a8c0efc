package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func float32Ptr(v float32) *float32 { return &v }
func int64Ptr(v int64) *int64       { return &v }

func TestRoundTripEveryMessageKind(t *testing.T) {
	ok := ResultOK
	unavailable := PropUnavailable
	msgs := []*InjectionMessage{
		{Type: GetConfigCmd, Props: []PropGet{{Prop: 0x11400000}}},
		{Type: GetConfigAllCmd},
		{Type: GetPropertyCmd, Props: []PropGet{{Prop: 0x11400000, AreaID: Int32Ptr(1)}, {Prop: 0xf1400001, AreaID: Int32Ptr(-1)}}},
		{Type: GetPropertyAllCmd},
		{Type: SetPropertyCmd, Values: []PropValue{{
			Prop:        0x11400000,
			ValueType:   TypeInt32,
			AreaID:      Int32Ptr(0),
			Int32Values: []int32{42},
		}}},
		{Type: SetPropertyAsync, Values: []PropValue{{
			Prop:        0x11e00000,
			ValueType:   TypeMixed,
			AreaID:      Int32Ptr(2),
			Int32Values: []int32{-1, 0, 1 << 30},
			Int64Values: []int64{-1 << 40, 7},
			FloatValues: []float32{-0.5, 3.25},
			StringValue: StringPtr(""),
			BytesValue:  []byte{},
		}}},
		{Type: GetConfigResp, Status: &ok, Configs: []PropConfig{{
			Prop:           0x11400000,
			Access:         Int32Ptr(3),
			ChangeMode:     Int32Ptr(1),
			ValueType:      TypeInt32,
			SupportedAreas: Int32Ptr(0),
			AreaConfigs: []AreaConfig{{
				AreaID:        1,
				MinInt32Value: Int32Ptr(-10),
				MaxInt32Value: Int32Ptr(10),
				MinInt64Value: int64Ptr(-1 << 33),
				MaxInt64Value: int64Ptr(1 << 33),
				MinFloatValue: float32Ptr(-1.5),
				MaxFloatValue: float32Ptr(1.5),
			}},
			ConfigFlags:   Int32Ptr(0),
			ConfigArray:   []int32{1, -2, 3},
			ConfigString:  StringPtr("cfg"),
			MinSampleRate: float32Ptr(1),
			MaxSampleRate: float32Ptr(10),
		}}},
		{Type: GetConfigAllResp, Status: &ok, Configs: []PropConfig{
			{Prop: 0x11400000, ValueType: TypeInt32},
			{Prop: 0x11510000, ValueType: TypeInt64Vec},
			{Prop: 0x11100000, ValueType: TypeString},
		}},
		{Type: GetPropertyResp, Status: &ok, Values: []PropValue{{
			Prop:        0x11100000,
			ValueType:   TypeString,
			Timestamp:   int64Ptr(1700000000000000000),
			AreaID:      Int32Ptr(0),
			StringValue: StringPtr("vin-123"),
			Status:      &unavailable,
		}}},
		{Type: GetPropertyAllResp, Values: []PropValue{
			{Prop: 0x11700000, ValueType: TypeBytes, BytesValue: []byte{0, 1, 2}},
			{Prop: 0x11610000, ValueType: TypeFloatVec, FloatValues: []float32{1, 2}},
		}},
		{Type: SetPropertyResp, Status: &ok},
	}
	for _, msg := range msgs {
		t.Run(msg.Type.String(), func(t *testing.T) {
			buf, err := Encode(msg)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := Decode(bytes.NewReader(buf))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, msg) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, msg)
			}
		})
	}
}

func TestEncodeGetConfigAllWireBytes(t *testing.T) {
	buf, err := Encode(&InjectionMessage{Type: GetConfigAllCmd})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := []byte{0, 0, 0, 2, 0x08, 0x02}; !bytes.Equal(buf, want) {
		t.Fatalf("wire bytes % x want % x", buf, want)
	}
}

func TestEncodeGetPropertyWireBytes(t *testing.T) {
	buf, err := Encode(&InjectionMessage{
		Type:  GetPropertyCmd,
		Props: []PropGet{{Prop: 0x11400000, AreaID: Int32Ptr(1)}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{
		0, 0, 0, 12,
		0x08, 0x04,
		0x1a, 0x08,
		0x08, 0x80, 0x80, 0x80, 0x8a, 0x01,
		0x10, 0x01,
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("wire bytes % x want % x", buf, want)
	}
}

func TestEncodeSetPropertyWireBytes(t *testing.T) {
	buf, err := Encode(&InjectionMessage{
		Type: SetPropertyCmd,
		Values: []PropValue{{
			Prop:        0x11400000,
			ValueType:   TypeInt32,
			AreaID:      Int32Ptr(1),
			Int32Values: []int32{42},
		}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{
		0, 0, 0, 19,
		0x08, 0x08,
		0x2a, 0x0f,
		0x08, 0x80, 0x80, 0x80, 0x8a, 0x01,
		0x10, 0x80, 0x80, 0x80, 0x02,
		0x20, 0x01,
		0x28, 0x54,
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("wire bytes % x want % x", buf, want)
	}
}

func TestUnmarshalAcceptsPackedRepeatedFields(t *testing.T) {
	body := []byte{
		0x08, 0x05,
		0x2a, 0x07,
		0x08, 0x01,
		0x2a, 0x03, 0x02, 0x04, 0x06,
	}
	msg, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(msg.Values) != 1 || !reflect.DeepEqual(msg.Values[0].Int32Values, []int32{1, 2, 3}) {
		t.Fatalf("unexpected values: %+v", msg.Values)
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	body := []byte{
		0x08, 0x03,
		0x78, 0x01,
		0x72, 0x02, 'x', 'y',
	}
	msg, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != GetConfigAllResp {
		t.Fatalf("msg_type=%s", msg.Type)
	}
}

func TestUnmarshalMalformedBody(t *testing.T) {
	cases := map[string][]byte{
		"tag without value":  {0x08},
		"wrong wire type":    {0x0a, 0x00},
		"short nested value": {0x2a, 0x05, 0x08},
		"bad nested field":   {0x2a, 0x02, 0x08, 0xff},
	}
	for name, body := range cases {
		if _, err := Unmarshal(body); !errors.Is(err, ErrMalformedMessage) {
			t.Fatalf("%s: expected ErrMalformedMessage, got %v", name, err)
		}
	}
}

func TestDecodeZeroLengthFrameYieldsDefaultMessage(t *testing.T) {
	msg, err := Decode(bytes.NewReader([]byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(msg, &InjectionMessage{}) {
		t.Fatalf("expected default message, got %+v", msg)
	}
}

func TestDecodeStreamErrors(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte{0, 0, 1})); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}

	buf, err := Encode(&InjectionMessage{Type: GetConfigCmd, Props: []PropGet{{Prop: 9}}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(bytes.NewReader(buf[:len(buf)-1])); !errors.Is(err, ErrTruncatedMessage) {
		t.Fatalf("expected ErrTruncatedMessage, got %v", err)
	}
}

func TestDecodeReadsConsecutiveFrames(t *testing.T) {
	var stream bytes.Buffer
	for _, mt := range []MsgType{GetConfigAllCmd, GetPropertyAllCmd} {
		if err := Write(&stream, &InjectionMessage{Type: mt}); err != nil {
			t.Fatalf("write %s: %v", mt, err)
		}
	}
	for _, want := range []MsgType{GetConfigAllCmd, GetPropertyAllCmd} {
		msg, err := Decode(&stream)
		if err != nil {
			t.Fatalf("decode %s: %v", want, err)
		}
		if msg.Type != want {
			t.Fatalf("msg_type=%s want %s", msg.Type, want)
		}
	}
	if _, err := Decode(&stream); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed at end of stream, got %v", err)
	}
}

func TestMarshalNilMessage(t *testing.T) {
	if _, err := Marshal(nil); !errors.Is(err, ErrNilMessage) {
		t.Fatalf("expected ErrNilMessage, got %v", err)
	}
}

func TestValueTypeOfMasksPropertyID(t *testing.T) {
	cases := map[uint32]ValueType{
		0x11400000: TypeInt32,
		0x11510000: TypeInt64Vec,
		0x21e00111: TypeMixed,
	}
	for prop, want := range cases {
		if got := ValueTypeOf(prop); got != want || !got.Valid() {
			t.Fatalf("ValueTypeOf(0x%x)=%s want %s", prop, got, want)
		}
	}
	if ValueType(0x300000).Valid() {
		t.Fatalf("expected 0x300000 to be invalid")
	}
	if got := ValueType(0x300000).String(); got != "ValueType(0x300000)" {
		t.Fatalf("unknown type name=%q", got)
	}
}
