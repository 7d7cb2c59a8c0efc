package monitor

import (
	"encoding/hex"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/pack"
	"github.com/danmuck/vhalctl/internal/protocol/schema"
	"github.com/danmuck/vhalctl/internal/protocol/value"
)

// Event is one received message as shown by the monitor.
type Event struct {
	Received time.Time       `json:"received"`
	MsgType  string          `json:"msg_type"`
	Status   string          `json:"status,omitempty"`
	Props    int             `json:"props,omitempty"`
	Configs  int             `json:"configs,omitempty"`
	Values   []RenderedValue `json:"values,omitempty"`
	Warning  string          `json:"warning,omitempty"`
}

type RenderedValue struct {
	Prop      string `json:"prop"`
	AreaID    *int32 `json:"area_id,omitempty"`
	ValueType string `json:"value_type"`
	Value     any    `json:"value,omitempty"`
	// Text holds the unpacked string when an INT64_VEC carries packed text.
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewEvent renders msg. Schema violations are reported in Warning rather
// than rejected, since the monitor only observes.
func NewEvent(msg *protocol.InjectionMessage, at time.Time) Event {
	ev := Event{
		Received: at,
		MsgType:  msg.Type.String(),
		Props:    len(msg.Props),
		Configs:  len(msg.Configs),
	}
	if msg.Status != nil {
		ev.Status = msg.Status.String()
	}
	if err := schema.Validate(msg); err != nil {
		ev.Warning = err.Error()
	}
	for _, pv := range msg.Values {
		ev.Values = append(ev.Values, renderValue(pv))
	}
	return ev
}

func renderValue(pv protocol.PropValue) RenderedValue {
	out := RenderedValue{
		Prop:      formatProp(pv.Prop),
		AreaID:    pv.AreaID,
		ValueType: pv.ValueType.String(),
	}
	payload, err := value.Decode(pv)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	switch v := payload.(type) {
	case value.Bytes:
		out.Value = hex.EncodeToString(v)
	case value.Int64Vector:
		out.Value = []int64(v)
		if text, ok := packedText(v); ok {
			out.Text = text
		}
	case value.Mixed:
		m := map[string]any{
			"bytes":  hex.EncodeToString(v.Bytes),
			"int32s": v.Int32s,
			"int64s": v.Int64s,
			"floats": v.Floats,
		}
		if v.String != nil {
			m["string"] = *v.String
		}
		out.Value = m
	default:
		out.Value = v
	}
	return out
}

func formatProp(prop uint32) string {
	return fmt.Sprintf("0x%08x", prop)
}

func packedText(v []int64) (string, bool) {
	b, err := pack.Unpack(v)
	if err != nil || len(b) == 0 || !utf8.Valid(b) {
		return "", false
	}
	s := string(b)
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", false
		}
	}
	return s, true
}
