package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrNoAddress = errors.New("session: no address configured")

// Dial opens a TCP connection to cfg.Addr, retrying failed attempts with
// cfg.Backoff. It only establishes the stream; forwarding a local port to the
// vehicle runtime is the caller's concern.
func Dial(ctx context.Context, cfg Config) (net.Conn, error) {
	if cfg.Addr == "" {
		return nil, ErrNoAddress
	}
	attempts := cfg.MaxConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
		if err == nil {
			log.Debug().Str("addr", cfg.Addr).Int("attempt", attempt).Msg("connected")
			return WithDeadlines(conn, cfg.ReadTimeout, cfg.WriteTimeout), nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay := cfg.Backoff.Delay(attempt, rng)
		log.Warn().Err(err).Str("addr", cfg.Addr).Int("attempt", attempt).Dur("retry_in", delay).Msg("connect failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("session: connect %s after %d attempts: %w", cfg.Addr, attempts, lastErr)
}
