package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseGormLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"WARNING", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseGormLevel(tt.input))
		})
	}
}

func statement(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 0.5, "warn")
	ctx := ContextWithRequestID(context.Background(), "req-1")

	l.Trace(ctx, time.Now(), statement("SELECT 1"), nil)
	assert.Zero(t, logs.Len(), "fast queries are not logged at warn level")

	l.Trace(ctx, time.Now(), statement("SELECT 1"), gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "missing rows are not failures")

	l.Trace(ctx, time.Now().Add(-time.Second), statement("SELECT 2"), nil)
	require.Equal(t, 1, logs.Len())
	slow := logs.TakeAll()[0]
	assert.Equal(t, "gorm slow query", slow.Message)
	assert.Equal(t, "req-1", slow.ContextMap()["request_id"])

	l.Trace(ctx, time.Now(), statement("INSERT"), errors.New("disk full"))
	require.Equal(t, 1, logs.Len())
	failed := logs.TakeAll()[0]
	assert.Equal(t, zapcore.ErrorLevel, failed.Level)
	assert.Equal(t, "gorm query failed", failed.Message)
}

func TestGormLogger_TruncatesSQL(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 0, "info")

	l.Trace(context.Background(), time.Now(), statement(strings.Repeat("x", maxSQLLength+10)), nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, true, fields["sql_truncated"])
	assert.Len(t, fields["sql"], maxSQLLength+3)
}

func TestGormLogger_LogMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := NewGormLogger(zap.New(core), 0, "info")

	silent := base.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), statement("SELECT 1"), errors.New("boom"))
	silent.Error(context.Background(), "ignored %d", 1)
	assert.Zero(t, logs.Len())

	base.Info(context.Background(), "migrated %s", "users")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "migrated users", logs.All()[0].Message)
}
