package schema

import (
	"fmt"

	"github.com/danmuck/vhalctl/internal/protocol"
)

// Presence states whether a repeated section may appear for a message kind.
type Presence uint8

const (
	Absent Presence = iota
	Optional
	Required
)

// Section names one repeated section of an InjectionMessage.
type Section string

const (
	SectionProps   Section = "prop"
	SectionConfigs Section = "config"
	SectionValues  Section = "value"
)

// Convention lists which sections a message kind carries.
type Convention struct {
	Props   Presence
	Configs Presence
	Values  Presence
}

type ValidationError struct {
	MessageType protocol.MsgType
	Section     Section
	Index       int
	Reason      string
}

func (e ValidationError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("schema: msg_type=%s: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: msg_type=%s section=%s[%d]: %s", e.MessageType, e.Section, e.Index, e.Reason)
}

var conventions = map[protocol.MsgType]Convention{
	protocol.GetConfigCmd:       {Props: Required},
	protocol.GetConfigResp:      {Configs: Optional},
	protocol.GetConfigAllCmd:    {},
	protocol.GetConfigAllResp:   {Configs: Optional},
	protocol.GetPropertyCmd:     {Props: Required},
	protocol.GetPropertyResp:    {Values: Optional},
	protocol.GetPropertyAllCmd:  {},
	protocol.GetPropertyAllResp: {Values: Optional},
	protocol.SetPropertyCmd:     {Values: Required},
	protocol.SetPropertyResp:    {},
	protocol.SetPropertyAsync:   {Values: Required},
}

// ConventionFor returns the section convention of a message kind.
func ConventionFor(t protocol.MsgType) (Convention, bool) {
	c, ok := conventions[t]
	return c, ok
}

// Validate checks that msg populates only the sections its kind allows and
// that every config and value entry declares a known value type.
func Validate(msg *protocol.InjectionMessage) error {
	if msg == nil {
		return ValidationError{Reason: "nil message"}
	}
	conv, ok := conventions[msg.Type]
	if !ok {
		return ValidationError{MessageType: msg.Type, Reason: "unknown msg_type"}
	}
	checks := []struct {
		section  Section
		presence Presence
		count    int
	}{
		{SectionProps, conv.Props, len(msg.Props)},
		{SectionConfigs, conv.Configs, len(msg.Configs)},
		{SectionValues, conv.Values, len(msg.Values)},
	}
	for _, c := range checks {
		switch {
		case c.presence == Absent && c.count > 0:
			return ValidationError{MessageType: msg.Type, Section: c.section, Reason: "section not allowed"}
		case c.presence == Required && c.count == 0:
			return ValidationError{MessageType: msg.Type, Section: c.section, Reason: "missing required section"}
		}
	}
	for i, cfg := range msg.Configs {
		if !cfg.ValueType.Valid() {
			return ValidationError{MessageType: msg.Type, Section: SectionConfigs, Index: i, Reason: fmt.Sprintf("unknown value type %s", cfg.ValueType)}
		}
	}
	for i, v := range msg.Values {
		if !v.ValueType.Valid() {
			return ValidationError{MessageType: msg.Type, Section: SectionValues, Index: i, Reason: fmt.Sprintf("unknown value type %s", v.ValueType)}
		}
	}
	return nil
}
