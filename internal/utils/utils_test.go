package utils

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/harrylevesque/stillwater/internal/config"
)

func TestStatusAndMessage(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(http.StatusNotFound, "session not found", base)

	code, msg := StatusAndMessage(err)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "session not found", msg)
	assert.ErrorIs(t, err, base)

	code, msg = StatusAndMessage(base)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", msg)

	code, _ = StatusAndMessage(New(http.StatusBadRequest, "bad"))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stillwater.log")
	l, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", File: path}, false)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown")
	require.NoError(t, l.SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())
	l.Debug("now visible")
	l.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "shown"))
	assert.True(t, strings.Contains(out, "now visible"))
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestNewLoggerVerbose(t *testing.T) {
	l, err := NewLogger(config.LoggingConfig{Level: "error", Format: "console"}, true)
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, zapcore.DebugLevel, l.Level())
	assert.Error(t, l.SetLevel("chatty"))
}

func TestNewLoggerRejectsLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}
