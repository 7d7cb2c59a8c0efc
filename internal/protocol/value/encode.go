package value

import (
	"fmt"
	"math"
	"reflect"

	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/pack"
)

// Encode selects the payload variant for t and fills it from raw.
//
// Text or bytes destined for an INT64_VEC property are packed with
// pack.Int64s first; no other type packs. Scalar types reject sequences.
// Accepted raw types:
//   - STRING: string
//   - BYTES: []byte, string (UTF-8)
//   - BOOLEAN, INT32: bool, signed/unsigned integers within int32 range
//   - INT64: bool, signed/unsigned integers within int64 range
//   - FLOAT: float32, float64, integers
//   - *_VEC: slices of the corresponding element kinds
//   - MIXED: Mixed, *Mixed (nil means all fields empty)
func Encode(t protocol.ValueType, raw any) (Payload, error) {
	if !t.Valid() {
		return nil, UnknownValueTypeError{Type: t}
	}
	if t == protocol.TypeInt64Vec {
		switch v := raw.(type) {
		case string:
			raw = pack.String(v)
		case []byte:
			raw = pack.Int64s(v)
		}
	}

	switch t {
	case protocol.TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(t, raw)
		}
		return String(s), nil
	case protocol.TypeBytes:
		switch v := raw.(type) {
		case []byte:
			return Bytes(append([]byte{}, v...)), nil
		case string:
			return Bytes(v), nil
		}
		return nil, mismatch(t, raw)
	case protocol.TypeBoolean, protocol.TypeInt32:
		n, err := toInt64(t, raw)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, n, t)
		}
		return Int32(n), nil
	case protocol.TypeInt64:
		n, err := toInt64(t, raw)
		if err != nil {
			return nil, err
		}
		return Int64(n), nil
	case protocol.TypeFloat:
		f, err := toFloat32(t, raw)
		if err != nil {
			return nil, err
		}
		return Float32(f), nil
	case protocol.TypeInt32Vec:
		return encodeInt32s(t, raw)
	case protocol.TypeInt64Vec:
		return encodeInt64s(t, raw)
	case protocol.TypeFloatVec:
		return encodeFloat32s(t, raw)
	case protocol.TypeMixed:
		switch v := raw.(type) {
		case Mixed:
			return v, nil
		case *Mixed:
			if v == nil {
				return Mixed{}, nil
			}
			return *v, nil
		}
		return nil, mismatch(t, raw)
	}
	return nil, UnknownValueTypeError{Type: t}
}

// NewPropValue builds the value entry for one property write.
func NewPropValue(prop uint32, area int32, t protocol.ValueType, raw any) (protocol.PropValue, error) {
	payload, err := Encode(t, raw)
	if err != nil {
		return protocol.PropValue{}, err
	}
	pv := protocol.PropValue{
		Prop:      prop,
		ValueType: t,
		AreaID:    protocol.Int32Ptr(area),
	}
	payload.Apply(&pv)
	return pv, nil
}

func toInt64(t protocol.ValueType, raw any) (int64, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		return fromUint64(t, uint64(v))
	case uint64:
		return fromUint64(t, v)
	}
	return 0, mismatch(t, raw)
}

func fromUint64(t protocol.ValueType, v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, v, t)
	}
	return int64(v), nil
}

func toFloat32(t protocol.ValueType, raw any) (float32, error) {
	switch v := raw.(type) {
	case float32:
		return v, nil
	case float64:
		return float32(v), nil
	case bool:
		return 0, mismatch(t, raw)
	}
	n, err := toInt64(t, raw)
	if err != nil {
		return 0, err
	}
	return float32(n), nil
}

func encodeInt32s(t protocol.ValueType, raw any) (Payload, error) {
	switch v := raw.(type) {
	case []int32:
		return Int32Vector(append([]int32{}, v...)), nil
	case []bool, []int, []int64, []uint8, []uint16:
		items := reflect.ValueOf(v)
		out := make([]int32, items.Len())
		for i := range out {
			n, err := toInt64(t, items.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, fmt.Errorf("%w: element %d (%d) does not fit %s", ErrOutOfRange, i, n, t)
			}
			out[i] = int32(n)
		}
		return Int32Vector(out), nil
	}
	return nil, mismatch(t, raw)
}

func encodeInt64s(t protocol.ValueType, raw any) (Payload, error) {
	switch v := raw.(type) {
	case []int64:
		return Int64Vector(append([]int64{}, v...)), nil
	case []int, []int32, []uint16, []uint32:
		items := reflect.ValueOf(v)
		out := make([]int64, items.Len())
		for i := range out {
			n, err := toInt64(t, items.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return Int64Vector(out), nil
	}
	return nil, mismatch(t, raw)
}

func encodeFloat32s(t protocol.ValueType, raw any) (Payload, error) {
	switch v := raw.(type) {
	case []float32:
		return Float32Vector(append([]float32{}, v...)), nil
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return Float32Vector(out), nil
	case []int, []int32, []int64:
		items := reflect.ValueOf(v)
		out := make([]float32, items.Len())
		for i := range out {
			f, err := toFloat32(t, items.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return Float32Vector(out), nil
	}
	return nil, mismatch(t, raw)
}
