package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/vhalctl/internal/protocol/session"
	"gopkg.in/yaml.v3"
)

// Config is the resolved client configuration.
type Config struct {
	Session     session.Config
	MonitorAddr string
	CorsOrigins []string
	LogLevel    string
}

// fileConfig mirrors the on-disk keys. Nil fields keep their defaults.
type fileConfig struct {
	Addr               *string  `toml:"addr" yaml:"addr"`
	ConnectTimeout     *string  `toml:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout        *string  `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout       *string  `toml:"write_timeout" yaml:"write_timeout"`
	MaxConnectAttempts *int     `toml:"max_connect_attempts" yaml:"max_connect_attempts"`
	BackoffInitial     *string  `toml:"backoff_initial" yaml:"backoff_initial"`
	BackoffMax         *string  `toml:"backoff_max" yaml:"backoff_max"`
	BackoffMultiplier  *float64 `toml:"backoff_multiplier" yaml:"backoff_multiplier"`
	BackoffJitter      *bool    `toml:"backoff_jitter" yaml:"backoff_jitter"`
	MonitorAddr        *string  `toml:"monitor_addr" yaml:"monitor_addr"`
	CorsOrigins        []string `toml:"cors_origins" yaml:"cors_origins"`
	LogLevel           *string  `toml:"log_level" yaml:"log_level"`
}

func Default() Config {
	return Config{
		Session:     session.DefaultConfig(),
		MonitorAddr: "127.0.0.1:9464",
	}
}

// Load reads a TOML file, or YAML when the extension is .yaml/.yml, over
// the defaults and validates the result.
func Load(path string) (Config, error) {
	raw, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := apply(&cfg, raw); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var raw fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return raw, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return raw, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return raw, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return raw, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
		}
	}
	return raw, nil
}

func apply(cfg *Config, raw fileConfig) error {
	if raw.Addr != nil {
		cfg.Session.Addr = strings.TrimSpace(*raw.Addr)
	}
	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.Session.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.Session.WriteTimeout},
		{"backoff_initial", raw.BackoffInitial, &cfg.Session.Backoff.InitialDelay},
		{"backoff_max", raw.BackoffMax, &cfg.Session.Backoff.MaxDelay},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(*d.src))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if raw.MaxConnectAttempts != nil {
		cfg.Session.MaxConnectAttempts = *raw.MaxConnectAttempts
	}
	if raw.BackoffMultiplier != nil {
		cfg.Session.Backoff.Multiplier = *raw.BackoffMultiplier
	}
	if raw.BackoffJitter != nil {
		cfg.Session.Backoff.Jitter = *raw.BackoffJitter
	}
	if raw.MonitorAddr != nil {
		cfg.MonitorAddr = strings.TrimSpace(*raw.MonitorAddr)
	}
	if raw.CorsOrigins != nil {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*raw.LogLevel)
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Session.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.Session.MaxConnectAttempts < 1 {
		return fmt.Errorf("max_connect_attempts must be at least 1")
	}
	if cfg.Session.ConnectTimeout < 0 || cfg.Session.ReadTimeout < 0 || cfg.Session.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if cfg.Session.Backoff.Multiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be at least 1")
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
