package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harrylevesque/stillwater/internal/config"
)

// Logger is a zap logger whose level can change at runtime, optionally
// mirrored to a log file.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
	file  *os.File
}

// NewLogger builds a logger from cfg. verbose forces debug level.
func NewLogger(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	lvl, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	level := zap.NewAtomicLevelAt(lvl)

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)}
	var file *os.File
	if cfg.File != "" {
		file, err = os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(file), level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...), zap.AddCaller()),
		level:  level,
		file:   file,
	}, nil
}

// SetLevel changes the level of every core.
func (l *Logger) SetLevel(s string) error {
	lvl, err := config.ParseLevel(s)
	if err != nil {
		return err
	}
	if l.level.Level() != lvl {
		l.Info("log level changed", zap.Stringer("from", l.level.Level()), zap.Stringer("to", lvl))
		l.level.SetLevel(lvl)
	}
	return nil
}

// Level reports the current level.
func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// Close flushes the logger and closes the log file.
func (l *Logger) Close() {
	_ = l.Sync()
	if l.file != nil {
		l.file.Close()
	}
}
