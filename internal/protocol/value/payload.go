// Package value maps raw application values onto the payload fields of a
// property value according to the property's declared value type.
package value

import "github.com/danmuck/vhalctl/internal/protocol"

// Payload is one populated variant of a property value. Apply writes only
// the wire fields that belong to the variant.
type Payload interface {
	Apply(pv *protocol.PropValue)
}

type (
	String        string
	Bytes         []byte
	Int32         int32
	Int64         int64
	Float32       float32
	Int32Vector   []int32
	Int64Vector   []int64
	Float32Vector []float32
)

// Mixed carries all five payload fields at once. Each field is optional;
// an absent field is sent as its empty value.
type Mixed struct {
	String *string
	Bytes  []byte
	Int32s []int32
	Int64s []int64
	Floats []float32
}

func (s String) Apply(pv *protocol.PropValue) {
	pv.StringValue = protocol.StringPtr(string(s))
}

func (b Bytes) Apply(pv *protocol.PropValue) {
	pv.BytesValue = append([]byte{}, b...)
}

func (v Int32) Apply(pv *protocol.PropValue) {
	pv.Int32Values = []int32{int32(v)}
}

func (v Int64) Apply(pv *protocol.PropValue) {
	pv.Int64Values = []int64{int64(v)}
}

func (v Float32) Apply(pv *protocol.PropValue) {
	pv.FloatValues = []float32{float32(v)}
}

func (v Int32Vector) Apply(pv *protocol.PropValue) {
	pv.Int32Values = append([]int32(nil), v...)
}

func (v Int64Vector) Apply(pv *protocol.PropValue) {
	pv.Int64Values = append([]int64(nil), v...)
}

func (v Float32Vector) Apply(pv *protocol.PropValue) {
	pv.FloatValues = append([]float32(nil), v...)
}

func (m Mixed) Apply(pv *protocol.PropValue) {
	s := ""
	if m.String != nil {
		s = *m.String
	}
	pv.StringValue = &s
	pv.BytesValue = append([]byte{}, m.Bytes...)
	pv.Int32Values = append([]int32(nil), m.Int32s...)
	pv.Int64Values = append([]int64(nil), m.Int64s...)
	pv.FloatValues = append([]float32(nil), m.Floats...)
}
