package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv layers environment overrides on top of the loaded file.
// The Discord token is deliberately not here: it never enters Config.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("YARDWATCH_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	}
	if v := os.Getenv("YARDWATCH_TEST_MODE"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Notify.TestMode = b
		}
	}
}
