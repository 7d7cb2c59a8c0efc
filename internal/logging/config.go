package logging

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/danmuck/vhalctl/internal/observability"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "VHALCTL_LOG_LEVEL"
	EnvLogTimestamp = "VHALCTL_LOG_TIMESTAMP"
	EnvLogNoColor   = "VHALCTL_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		zerolog.SetGlobalLevel(cfg.Level)
		observability.InitLogger("vhalctl", observability.LoggerOptions{
			Timestamp: cfg.Timestamp,
			NoColor:   cfg.NoColor,
		})
	})
}

// SetLevel overrides the global level, e.g. from a command-line flag.
// An empty value leaves the level unchanged.
func SetLevel(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	lvl, ok := parseLevel(raw)
	if !ok {
		return fmt.Errorf("logging: unknown level %q", raw)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, Timestamp: false, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
