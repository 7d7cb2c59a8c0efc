package protocol

import (
	"fmt"
	"io"
	"math"

	"github.com/danmuck/vhalctl/internal/protocol/frame"
	"google.golang.org/protobuf/encoding/protowire"
)

// Decode reads a single framed message from r. It blocks until the whole
// frame is available or the stream ends.
func Decode(r io.Reader) (*InjectionMessage, error) {
	body, err := frame.ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(body)
}

// Unmarshal parses a message body. An empty body yields a default message.
// Unknown fields are skipped.
func Unmarshal(b []byte) (*InjectionMessage, error) {
	msg := &InjectionMessage{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldMsgType:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			msg.Type = MsgType(int32(v))
			return n, err
		case fieldStatus:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			s := Status(int32(v))
			msg.Status = &s
			return n, err
		case fieldProp:
			return consumeMessage(num, typ, b, func(body []byte) error {
				g, err := unmarshalPropGet(body)
				msg.Props = append(msg.Props, g)
				return err
			})
		case fieldConfig:
			return consumeMessage(num, typ, b, func(body []byte) error {
				c, err := unmarshalPropConfig(body)
				msg.Configs = append(msg.Configs, c)
				return err
			})
		case fieldValue:
			return consumeMessage(num, typ, b, func(body []byte) error {
				v, err := unmarshalPropValue(body)
				msg.Values = append(msg.Values, v)
				return err
			})
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func unmarshalPropGet(b []byte) (PropGet, error) {
	var g PropGet
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case getFieldProp:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			g.Prop = uint32(v)
			return n, err
		case getFieldAreaID:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			g.AreaID = Int32Ptr(int32(v))
			return n, err
		}
		return 0, nil
	})
	return g, err
}

func unmarshalAreaConfig(b []byte) (AreaConfig, error) {
	var a AreaConfig
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case areaFieldAreaID:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			a.AreaID = int32(v)
			return n, err
		case areaFieldMinInt32, areaFieldMaxInt32:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			x := int32(protowire.DecodeZigZag(v))
			if num == areaFieldMinInt32 {
				a.MinInt32Value = &x
			} else {
				a.MaxInt32Value = &x
			}
			return n, err
		case areaFieldMinInt64, areaFieldMaxInt64:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			x := protowire.DecodeZigZag(v)
			if num == areaFieldMinInt64 {
				a.MinInt64Value = &x
			} else {
				a.MaxInt64Value = &x
			}
			return n, err
		case areaFieldMinFloat, areaFieldMaxFloat:
			v, n, err := consumeScalar(num, typ, protowire.Fixed32Type, b)
			x := math.Float32frombits(uint32(v))
			if num == areaFieldMinFloat {
				a.MinFloatValue = &x
			} else {
				a.MaxFloatValue = &x
			}
			return n, err
		}
		return 0, nil
	})
	return a, err
}

func unmarshalPropConfig(b []byte) (PropConfig, error) {
	var c PropConfig
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case configFieldProp:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			c.Prop = uint32(v)
			return n, err
		case configFieldValueType:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			c.ValueType = ValueType(uint32(v))
			return n, err
		case configFieldAccess, configFieldChangeMode, configFieldSupportedAreas, configFieldConfigFlags:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			x := int32(v)
			switch num {
			case configFieldAccess:
				c.Access = &x
			case configFieldChangeMode:
				c.ChangeMode = &x
			case configFieldSupportedAreas:
				c.SupportedAreas = &x
			default:
				c.ConfigFlags = &x
			}
			return n, err
		case configFieldAreaConfigs:
			return consumeMessage(num, typ, b, func(body []byte) error {
				a, err := unmarshalAreaConfig(body)
				c.AreaConfigs = append(c.AreaConfigs, a)
				return err
			})
		case configFieldConfigArray:
			return consumeRepeated(num, typ, protowire.VarintType, b, func(v uint64) {
				c.ConfigArray = append(c.ConfigArray, int32(v))
			})
		case configFieldConfigString:
			if typ != protowire.BytesType {
				return 0, wireTypeError(num, typ)
			}
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, parseError(n)
			}
			c.ConfigString = &s
			return n, nil
		case configFieldMinSampleRate, configFieldMaxSampleRate:
			v, n, err := consumeScalar(num, typ, protowire.Fixed32Type, b)
			x := math.Float32frombits(uint32(v))
			if num == configFieldMinSampleRate {
				c.MinSampleRate = &x
			} else {
				c.MaxSampleRate = &x
			}
			return n, err
		}
		return 0, nil
	})
	return c, err
}

func unmarshalPropValue(b []byte) (PropValue, error) {
	var pv PropValue
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case valueFieldProp:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			pv.Prop = uint32(v)
			return n, err
		case valueFieldValueType:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			pv.ValueType = ValueType(uint32(v))
			return n, err
		case valueFieldTimestamp:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			ts := int64(v)
			pv.Timestamp = &ts
			return n, err
		case valueFieldAreaID:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			pv.AreaID = Int32Ptr(int32(v))
			return n, err
		case valueFieldInt32Values:
			return consumeRepeated(num, typ, protowire.VarintType, b, func(v uint64) {
				pv.Int32Values = append(pv.Int32Values, int32(protowire.DecodeZigZag(v)))
			})
		case valueFieldInt64Values:
			return consumeRepeated(num, typ, protowire.VarintType, b, func(v uint64) {
				pv.Int64Values = append(pv.Int64Values, protowire.DecodeZigZag(v))
			})
		case valueFieldFloatValues:
			return consumeRepeated(num, typ, protowire.Fixed32Type, b, func(v uint64) {
				pv.FloatValues = append(pv.FloatValues, math.Float32frombits(uint32(v)))
			})
		case valueFieldStringValue:
			if typ != protowire.BytesType {
				return 0, wireTypeError(num, typ)
			}
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, parseError(n)
			}
			pv.StringValue = &s
			return n, nil
		case valueFieldBytesValue:
			if typ != protowire.BytesType {
				return 0, wireTypeError(num, typ)
			}
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, parseError(n)
			}
			pv.BytesValue = append([]byte{}, raw...)
			return n, nil
		case valueFieldStatus:
			v, n, err := consumeScalar(num, typ, protowire.VarintType, b)
			s := PropStatus(int32(v))
			pv.Status = &s
			return n, err
		}
		return 0, nil
	})
	return pv, err
}

// fieldFunc handles one field whose tag has been consumed. It returns the
// number of value bytes consumed, or 0 to have the field skipped.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walkFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return parseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeScalar(num protowire.Number, typ, want protowire.Type, b []byte) (uint64, int, error) {
	if typ != want {
		return 0, 0, wireTypeError(num, typ)
	}
	v, n := scalar(want, b)
	if n < 0 {
		return 0, 0, parseError(n)
	}
	return v, n, nil
}

// consumeRepeated accepts both packed and unpacked encodings.
func consumeRepeated(num protowire.Number, typ, want protowire.Type, b []byte, each func(uint64)) (int, error) {
	if typ != protowire.BytesType {
		v, n, err := consumeScalar(num, typ, want, b)
		if err != nil {
			return 0, err
		}
		each(v)
		return n, nil
	}
	packed, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, parseError(n)
	}
	for len(packed) > 0 {
		v, m := scalar(want, packed)
		if m < 0 {
			return 0, parseError(m)
		}
		each(v)
		packed = packed[m:]
	}
	return n, nil
}

func consumeMessage(num protowire.Number, typ protowire.Type, b []byte, fn func([]byte) error) (int, error) {
	if typ != protowire.BytesType {
		return 0, wireTypeError(num, typ)
	}
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, parseError(n)
	}
	if err := fn(body); err != nil {
		return 0, err
	}
	return n, nil
}

func scalar(typ protowire.Type, b []byte) (uint64, int) {
	switch typ {
	case protowire.VarintType:
		return protowire.ConsumeVarint(b)
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		return uint64(v), n
	case protowire.Fixed64Type:
		return protowire.ConsumeFixed64(b)
	}
	return 0, -1
}

func parseError(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
}

func wireTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("%w: field %d has wire type %d", ErrMalformedMessage, num, typ)
}
