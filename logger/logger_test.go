package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithNilConfig(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	defer log.Sync()
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "harness.log")
	log, err := New(&Config{Level: "debug", File: path, Console: false})
	require.NoError(t, err)

	log.Info("hello", zap.String("k", "v"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Console: true})
	require.Error(t, err)
}

func TestConfigSetDefaults(t *testing.T) {
	cfg := (&Config{}).SetDefaults()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 28, cfg.MaxAge)
	// With no file output Console is forced on so logs go somewhere.
	assert.True(t, cfg.Console)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, (&Config{Level: "warn", Console: true}).Validate())
	assert.Error(t, (&Config{Level: "info"}).Validate())
	assert.Error(t, (&Config{Level: "verbose", Console: true}).Validate())
}

func TestGetZapLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, getZapLevel(in), "level %s", in)
	}
}
