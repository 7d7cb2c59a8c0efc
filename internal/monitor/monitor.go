// Package monitor runs a receive loop over a bootstrapped session and
// serves what it sees over a small HTTP status API.
package monitor

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/vhalctl/internal/observability"
	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistory = 256
	metricsPath    = "/metrics"
	shutdownGrace  = 5 * time.Second
)

type Options struct {
	CorsOrigins []string
	// History bounds the number of retained events. Zero means DefaultHistory.
	History int
	Logger  *zerolog.Logger
}

type Monitor struct {
	sess    *session.Session
	router  *gin.Engine
	logger  zerolog.Logger
	started time.Time
	now     func() time.Time

	mu      sync.RWMutex
	history int
	events  []Event
	total   uint64
}

func New(sess *session.Session, opts Options) *Monitor {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	history := opts.History
	if history <= 0 {
		history = DefaultHistory
	}
	m := &Monitor{
		sess:    sess,
		logger:  logger.With().Str("session", sess.ID()).Logger(),
		started: time.Now(),
		now:     time.Now,
		history: history,
	}
	m.router = m.newRouter(opts.CorsOrigins)
	return m
}

func (m *Monitor) Handler() http.Handler {
	return m.router
}

// Record renders msg, logs it and appends it to the bounded history.
func (m *Monitor) Record(msg *protocol.InjectionMessage) Event {
	ev := NewEvent(msg, m.now())
	entry := m.logger.Info()
	if ev.Warning != "" {
		entry = m.logger.Warn().Str("warning", ev.Warning)
	}
	entry.
		Str("msg_type", ev.MsgType).
		Str("status", ev.Status).
		Int("configs", ev.Configs).
		Int("values", len(ev.Values)).
		Msg("message received")
	for _, v := range ev.Values {
		m.logger.Info().
			Str("prop", v.Prop).
			Str("value_type", v.ValueType).
			Interface("value", v.Value).
			Str("text", v.Text).
			Str("error", v.Error).
			Msg("property value")
	}

	m.mu.Lock()
	m.events = append(m.events, ev)
	if over := len(m.events) - m.history; over > 0 {
		m.events = append(m.events[:0:0], m.events[over:]...)
	}
	m.total++
	m.mu.Unlock()
	return ev
}

// Events returns the retained history, oldest first.
func (m *Monitor) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Event(nil), m.events...)
}

// ReceiveLoop records messages until the connection closes or ctx ends.
// A closed connection after ctx is done is a clean stop.
func (m *Monitor) ReceiveLoop(ctx context.Context) error {
	for {
		msg, err := m.sess.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, protocol.ErrConnectionClosed) {
				m.logger.Info().Msg("injection connection closed")
				return nil
			}
			return err
		}
		m.Record(msg)
	}
}

// Run serves the HTTP API on addr (skipped when empty) alongside the
// receive loop. conn is closed on shutdown to unblock the loop.
func (m *Monitor) Run(ctx context.Context, addr string, conn io.Closer) error {
	g, ctx := errgroup.WithContext(ctx)
	var srv *http.Server
	if strings.TrimSpace(addr) != "" {
		srv = &http.Server{
			Addr:              addr,
			Handler:           m.router,
			ReadHeaderTimeout: 5 * time.Second,
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		m.logger.Info().Str("addr", ln.Addr().String()).Msg("monitor listening")
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	loopDone := make(chan struct{})
	g.Go(func() error {
		defer close(loopDone)
		return m.ReceiveLoop(ctx)
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-loopDone:
		}
		if conn != nil {
			_ = conn.Close()
		}
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}

func (m *Monitor) newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(m.logger, metricsPath))
	r.Use(observability.RequestMetricsMiddleware())
	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(m.started).String(),
			"session": m.sess.ID(),
			"state":   m.sess.State().String(),
		})
	})
	r.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	r.GET("/registry", func(c *gin.Context) {
		entries := m.sess.Registry().List()
		props := make([]gin.H, 0, len(entries))
		for _, e := range entries {
			props = append(props, gin.H{
				"prop":       formatProp(e.Prop),
				"value_type": e.ValueType.String(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"properties": props})
	})
	r.GET("/events", func(c *gin.Context) {
		m.mu.RLock()
		total := m.total
		m.mu.RUnlock()
		c.JSON(http.StatusOK, gin.H{"total": total, "events": m.Events()})
	})
	return r
}
