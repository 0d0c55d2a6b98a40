// internal/common/logger/logger_test.go
package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewFromSettings_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	zapLog, log, err := NewFromSettings(Settings{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	log.WithFields(map[string]interface{}{"component": "test"}).Info("hello", map[string]interface{}{"recordId": "abc"})
	require.NoError(t, zapLog.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "abc", entry["recordId"])
}

func TestLoggerChaining(t *testing.T) {
	log := NewTestLogger(t)
	scoped := log.With(map[string]interface{}{"taskType": "x"}).WithError(assert.AnError)
	assert.NotNil(t, scoped)
	scoped.Warn("chained", nil)

	NewNoOpLogger().Error("dropped", map[string]interface{}{"k": 1})
	assert.NotNil(t, NewStructured("info", "console"))
}

func TestNewZapAdapter_CarriesScopedFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"component": "pipeline"})

	log.Info("step completed", map[string]interface{}{"step": "database"})
	log.Debug("below level", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "step completed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "pipeline", fields["component"])
	assert.Equal(t, "database", fields["step"])
}
