package session

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/danmuck/vhalctl/internal/observability"
	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/frame"
	"github.com/danmuck/vhalctl/internal/protocol/value"
	"github.com/danmuck/vhalctl/internal/registry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the bootstrap state of a Session.
type State int32

const (
	StateUnbootstrapped State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "unbootstrapped"
}

// Session drives one injection connection. Operations are not safe for
// concurrent use on the same connection; callers serialize them.
type Session struct {
	id       string
	conn     io.ReadWriter
	registry *registry.Registry
	state    atomic.Int32
	logger   zerolog.Logger
}

type Option func(*Session)

// WithLogger replaces the global logger as the base for session logs.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New wraps conn. The session starts unbootstrapped and owns conn from here on.
func New(conn io.ReadWriter, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		conn:     conn,
		registry: registry.New(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return State(s.state.Load()) }

// Registry exposes the property types loaded by the last bootstrap.
func (s *Session) Registry() *registry.Registry { return s.registry }

// Bootstrap requests every property config, waits for exactly one response
// and loads the registry from it. On failure the session keeps its previous
// state and registry; there is no retry.
func (s *Session) Bootstrap() error {
	if err := s.send(&protocol.InjectionMessage{Type: protocol.GetConfigAllCmd}); err != nil {
		return s.fail("bootstrap", err)
	}
	resp, err := s.Receive()
	if err != nil {
		return s.fail("bootstrap", err)
	}
	if resp.Type != protocol.GetConfigAllResp {
		return s.fail("bootstrap", fmt.Errorf("%w: got %s, want %s", ErrUnexpectedResponse, resp.Type, protocol.GetConfigAllResp))
	}
	if resp.Status != nil && *resp.Status != protocol.ResultOK {
		return s.fail("bootstrap", RemoteStatusError{Type: resp.Type, Status: *resp.Status})
	}

	s.registry.Load(resp.Configs)
	s.state.Store(int32(StateReady))
	observability.SetRegistrySize(s.registry.Len())
	s.logger.Info().Int("configs", len(resp.Configs)).Int("properties", s.registry.Len()).Msg("bootstrap complete")
	return nil
}

// GetConfig requests the config of one property. The response is read with
// Receive.
func (s *Session) GetConfig(prop uint32) error {
	return s.command("get_config", &protocol.InjectionMessage{
		Type:  protocol.GetConfigCmd,
		Props: []protocol.PropGet{{Prop: prop}},
	})
}

// GetConfigAll requests every property config. The response is read with
// Receive and does not touch the registry.
func (s *Session) GetConfigAll() error {
	return s.command("get_config_all", &protocol.InjectionMessage{Type: protocol.GetConfigAllCmd})
}

// GetProperty requests the current value of prop in area.
func (s *Session) GetProperty(prop uint32, area int32) error {
	return s.command("get_property", &protocol.InjectionMessage{
		Type:  protocol.GetPropertyCmd,
		Props: []protocol.PropGet{{Prop: prop, AreaID: protocol.Int32Ptr(area)}},
	})
}

// SetProperty encodes raw according to the registered type of prop and sends
// it. No response is awaited.
func (s *Session) SetProperty(prop uint32, area int32, raw any) error {
	if s.State() != StateReady {
		return s.fail("set_property", ErrSessionNotReady)
	}
	t, err := s.registry.Lookup(prop)
	if err != nil {
		return s.fail("set_property", err)
	}
	pv, err := value.NewPropValue(prop, area, t, raw)
	if err != nil {
		return s.fail("set_property", fmt.Errorf("prop 0x%08x: %w", prop, err))
	}
	return s.command("set_property", &protocol.InjectionMessage{
		Type:   protocol.SetPropertyCmd,
		Values: []protocol.PropValue{pv},
	})
}

// Receive blocks for the next message on the connection. After a
// TruncatedMessage error the connection must be discarded.
func (s *Session) Receive() (*protocol.InjectionMessage, error) {
	body, err := frame.ReadFrame(s.conn)
	if err != nil {
		return nil, err
	}
	msg, err := protocol.Unmarshal(body)
	if err != nil {
		return nil, err
	}
	observability.RecordMessage(observability.DirectionRx, msg.Type.String(), frame.PrefixLen+len(body))
	s.logger.Debug().
		Str("msg_type", msg.Type.String()).
		Int("bytes", len(body)).
		Int("configs", len(msg.Configs)).
		Int("values", len(msg.Values)).
		Msg("rx")
	return msg, nil
}

func (s *Session) command(op string, msg *protocol.InjectionMessage) error {
	if s.State() != StateReady {
		return s.fail(op, ErrSessionNotReady)
	}
	if err := s.send(msg); err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *Session) send(msg *protocol.InjectionMessage) error {
	buf, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(buf); err != nil {
		return err
	}
	observability.RecordMessage(observability.DirectionTx, msg.Type.String(), len(buf))
	s.logger.Debug().
		Str("msg_type", msg.Type.String()).
		Int("bytes", len(buf)).
		Int("props", len(msg.Props)).
		Int("values", len(msg.Values)).
		Msg("tx")
	return nil
}

func (s *Session) fail(op string, err error) error {
	observability.RecordSessionError(op)
	s.logger.Debug().Err(err).Str("op", op).Msg("session operation failed")
	return fmt.Errorf("session: %s: %w", op, err)
}
