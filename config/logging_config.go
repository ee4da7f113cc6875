package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// logging parameters
type loggingConfig struct {
	// minimum level of logged messages (debug, info, warn, error)
	Level string `json:"level" yaml:"level"`
}

// returns the configured log level
func (c loggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func validateLoggingParameters(params loggingConfig) error {
	switch strings.ToLower(params.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("Invalid logging level: '%s' (must be debug, info, warn, or error)",
		params.Level)
}
