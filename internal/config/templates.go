package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "toml", "":
		return tomlTemplate, nil
	case "yaml", "yml":
		return yamlTemplate, nil
	default:
		return "", fmt.Errorf("unknown config format: %s", format)
	}
}

func WriteTemplate(path, format string, overwrite bool) error {
	template, err := Template(format)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Forward the injection port first, e.g. `adb forward tcp:33455 tcp:33455`.
const tomlTemplate = `addr = "127.0.0.1:33455"
connect_timeout = "5s"
read_timeout = "0s"
write_timeout = "0s"
max_connect_attempts = 3
backoff_initial = "250ms"
backoff_max = "5s"
backoff_multiplier = 2.0
backoff_jitter = true
monitor_addr = "127.0.0.1:9464"
cors_origins = ["http://localhost:3000"]
log_level = "info"
`

const yamlTemplate = `addr: 127.0.0.1:33455
connect_timeout: 5s
read_timeout: 0s
write_timeout: 0s
max_connect_attempts: 3
backoff_initial: 250ms
backoff_max: 5s
backoff_multiplier: 2.0
backoff_jitter: true
monitor_addr: 127.0.0.1:9464
cors_origins:
  - http://localhost:3000
log_level: info
`
