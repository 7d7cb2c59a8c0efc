package session

import "time"

// DefaultPort is the injection server port on the vehicle runtime.
const DefaultPort = 33455

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines connection defaults. Zero read/write timeouts disable
// deadlines, matching the blocking behavior of the bare stream.
type Config struct {
	Addr               string
	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxConnectAttempts int
	Backoff            BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		Addr:               "127.0.0.1:33455",
		ConnectTimeout:     5 * time.Second,
		MaxConnectAttempts: 3,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}
