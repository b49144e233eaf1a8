package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// ParseLevel parses logging.level.
func ParseLevel(s string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return lvl, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}
