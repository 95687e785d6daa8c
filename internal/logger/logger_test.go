package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerbook.log")
	log, closer, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("posted", zap.String("journal_number", "JE-2025-01-001"))
	log.Debug("hidden")
	require.NoError(t, log.Sync())
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"journal_number":"JE-2025-01-001"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_BadPath(t *testing.T) {
	_, _, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestNew_Default(t *testing.T) {
	log, closer, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NoError(t, closer.Close())
}

func TestGormLogger_Levels(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Info(context.Background(), "ignored %d", 1)
	gl.Warn(context.Background(), "careful %s", "now")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "careful now", recorded.All()[0].Message)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "dropped")
	assert.Len(t, recorded.All(), 1)
	assert.Equal(t, gormlogger.Warn, gl.level, "LogMode copies")
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)
	query := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), query, nil)
	gl.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
	gl.Trace(context.Background(), time.Now(), query, errors.New("disk I/O error"))
	gl.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)

	entries := recorded.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "sql", entries[0].Message)
	assert.Equal(t, "sql error", entries[1].Message)
	assert.Equal(t, "slow sql", entries[2].Message)
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel(""))
}
