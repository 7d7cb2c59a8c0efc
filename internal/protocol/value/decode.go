package value

import (
	"fmt"

	"github.com/danmuck/vhalctl/internal/protocol"
)

// Decode reads the payload of pv according to pv.ValueType.
func Decode(pv protocol.PropValue) (Payload, error) {
	t := pv.ValueType
	switch t {
	case protocol.TypeString:
		if pv.StringValue == nil {
			return String(""), nil
		}
		return String(*pv.StringValue), nil
	case protocol.TypeBytes:
		return Bytes(append([]byte{}, pv.BytesValue...)), nil
	case protocol.TypeBoolean, protocol.TypeInt32:
		if len(pv.Int32Values) != 1 {
			return nil, scalarCount(t, len(pv.Int32Values))
		}
		return Int32(pv.Int32Values[0]), nil
	case protocol.TypeInt64:
		if len(pv.Int64Values) != 1 {
			return nil, scalarCount(t, len(pv.Int64Values))
		}
		return Int64(pv.Int64Values[0]), nil
	case protocol.TypeFloat:
		if len(pv.FloatValues) != 1 {
			return nil, scalarCount(t, len(pv.FloatValues))
		}
		return Float32(pv.FloatValues[0]), nil
	case protocol.TypeInt32Vec:
		return Int32Vector(append([]int32{}, pv.Int32Values...)), nil
	case protocol.TypeInt64Vec:
		return Int64Vector(append([]int64{}, pv.Int64Values...)), nil
	case protocol.TypeFloatVec:
		return Float32Vector(append([]float32{}, pv.FloatValues...)), nil
	case protocol.TypeMixed:
		m := Mixed{
			Bytes:  append([]byte(nil), pv.BytesValue...),
			Int32s: append([]int32(nil), pv.Int32Values...),
			Int64s: append([]int64(nil), pv.Int64Values...),
			Floats: append([]float32(nil), pv.FloatValues...),
		}
		if pv.StringValue != nil {
			m.String = protocol.StringPtr(*pv.StringValue)
		}
		return m, nil
	}
	return nil, UnknownValueTypeError{Type: t}
}

func scalarCount(t protocol.ValueType, n int) error {
	return fmt.Errorf("%w: %s carries %d values, want 1", ErrTypeMismatch, t, n)
}
