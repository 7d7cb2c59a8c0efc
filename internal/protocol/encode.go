package protocol

import (
	"io"
	"math"

	"github.com/danmuck/vhalctl/internal/protocol/frame"
	"google.golang.org/protobuf/encoding/protowire"
)

// Encode serializes msg and prefixes it with its big-endian length.
func Encode(msg *InjectionMessage) ([]byte, error) {
	body, err := Marshal(msg)
	if err != nil {
		return nil, err
	}
	return frame.Encode(body), nil
}

// Write encodes msg and writes the complete frame to w.
func Write(w io.Writer, msg *InjectionMessage) error {
	body, err := Marshal(msg)
	if err != nil {
		return err
	}
	return frame.WriteFrame(w, body)
}

// Marshal serializes the message body using the remote protobuf schema.
// Repeated scalars are written unpacked.
func Marshal(msg *InjectionMessage) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	var b []byte
	b = appendInt32(b, fieldMsgType, int32(msg.Type))
	if msg.Status != nil {
		b = appendInt32(b, fieldStatus, int32(*msg.Status))
	}
	for _, g := range msg.Props {
		b = appendMessage(b, fieldProp, marshalPropGet(g))
	}
	for _, c := range msg.Configs {
		b = appendMessage(b, fieldConfig, marshalPropConfig(c))
	}
	for _, v := range msg.Values {
		b = appendMessage(b, fieldValue, marshalPropValue(v))
	}
	return b, nil
}

func marshalPropGet(g PropGet) []byte {
	var b []byte
	b = appendInt32(b, getFieldProp, int32(g.Prop))
	if g.AreaID != nil {
		b = appendInt32(b, getFieldAreaID, *g.AreaID)
	}
	return b
}

func marshalAreaConfig(a AreaConfig) []byte {
	var b []byte
	b = appendInt32(b, areaFieldAreaID, a.AreaID)
	if a.MinInt32Value != nil {
		b = appendSint32(b, areaFieldMinInt32, *a.MinInt32Value)
	}
	if a.MaxInt32Value != nil {
		b = appendSint32(b, areaFieldMaxInt32, *a.MaxInt32Value)
	}
	if a.MinInt64Value != nil {
		b = appendSint64(b, areaFieldMinInt64, *a.MinInt64Value)
	}
	if a.MaxInt64Value != nil {
		b = appendSint64(b, areaFieldMaxInt64, *a.MaxInt64Value)
	}
	if a.MinFloatValue != nil {
		b = appendFloat(b, areaFieldMinFloat, *a.MinFloatValue)
	}
	if a.MaxFloatValue != nil {
		b = appendFloat(b, areaFieldMaxFloat, *a.MaxFloatValue)
	}
	return b
}

func marshalPropConfig(c PropConfig) []byte {
	var b []byte
	b = appendInt32(b, configFieldProp, int32(c.Prop))
	if c.Access != nil {
		b = appendInt32(b, configFieldAccess, *c.Access)
	}
	if c.ChangeMode != nil {
		b = appendInt32(b, configFieldChangeMode, *c.ChangeMode)
	}
	if c.ValueType != 0 {
		b = appendInt32(b, configFieldValueType, int32(c.ValueType))
	}
	if c.SupportedAreas != nil {
		b = appendInt32(b, configFieldSupportedAreas, *c.SupportedAreas)
	}
	for _, a := range c.AreaConfigs {
		b = appendMessage(b, configFieldAreaConfigs, marshalAreaConfig(a))
	}
	if c.ConfigFlags != nil {
		b = appendInt32(b, configFieldConfigFlags, *c.ConfigFlags)
	}
	for _, v := range c.ConfigArray {
		b = appendInt32(b, configFieldConfigArray, v)
	}
	if c.ConfigString != nil {
		b = protowire.AppendTag(b, configFieldConfigString, protowire.BytesType)
		b = protowire.AppendString(b, *c.ConfigString)
	}
	if c.MinSampleRate != nil {
		b = appendFloat(b, configFieldMinSampleRate, *c.MinSampleRate)
	}
	if c.MaxSampleRate != nil {
		b = appendFloat(b, configFieldMaxSampleRate, *c.MaxSampleRate)
	}
	return b
}

func marshalPropValue(v PropValue) []byte {
	var b []byte
	b = appendInt32(b, valueFieldProp, int32(v.Prop))
	if v.ValueType != 0 {
		b = appendInt32(b, valueFieldValueType, int32(v.ValueType))
	}
	if v.Timestamp != nil {
		b = protowire.AppendTag(b, valueFieldTimestamp, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*v.Timestamp))
	}
	if v.AreaID != nil {
		b = appendInt32(b, valueFieldAreaID, *v.AreaID)
	}
	for _, x := range v.Int32Values {
		b = appendSint32(b, valueFieldInt32Values, x)
	}
	for _, x := range v.Int64Values {
		b = appendSint64(b, valueFieldInt64Values, x)
	}
	for _, x := range v.FloatValues {
		b = appendFloat(b, valueFieldFloatValues, x)
	}
	if v.StringValue != nil {
		b = protowire.AppendTag(b, valueFieldStringValue, protowire.BytesType)
		b = protowire.AppendString(b, *v.StringValue)
	}
	if v.BytesValue != nil {
		b = protowire.AppendTag(b, valueFieldBytesValue, protowire.BytesType)
		b = protowire.AppendBytes(b, v.BytesValue)
	}
	if v.Status != nil {
		b = appendInt32(b, valueFieldStatus, int32(*v.Status))
	}
	return b
}

// int32 and enum fields are sign-extended to 64 bits on the wire.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendSint32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func appendSint64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}
