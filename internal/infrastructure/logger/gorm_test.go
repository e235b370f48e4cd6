package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Options(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Warn,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info)
	silent, ok := gl.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Silent, silent.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-5")

	t.Run("error", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFn("INSERT INTO invoices", 0), errors.New("constraint"))
		entries := recorded.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-5", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found ignored", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT", 0), gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("slow query", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn("SELECT * FROM payments", 3), nil)
		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Contains(t, entries[0].Message, "SLOW SQL")
	})

	t.Run("info logs every query at debug", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Info)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Equal(t, 1, recorded.FilterMessage("SQL Query").Len())
	})

	t.Run("silent", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Silent)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), errors.New("boom"))
		assert.Zero(t, recorded.Len())
	})
}

func TestGormLogger_Messages(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Warn)
	gl.Info(context.Background(), "info %d", 1)
	gl.Warn(context.Background(), "warn %d", 2)
	gl.Error(context.Background(), "error %d", 3)

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn 2", entries[0].Message)
	assert.Equal(t, "error 3", entries[1].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
