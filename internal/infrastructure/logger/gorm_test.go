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

func newObserved(level gormlogger.LogLevel, slow time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, slow), recorded
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	l, recorded := newObserved(gormlogger.Warn, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM products WHERE id = 1", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLoggerLogsErrors(t *testing.T) {
	l, recorded := newObserved(gormlogger.Warn, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "UPDATE options SET stock_quantity = stock_quantity - 1", 0
	}, errors.New("deadlock"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	assert.Equal(t, "gorm", logs[0].LoggerName)
}

func TestGormLoggerSlowQuery(t *testing.T) {
	l, recorded := newObserved(gormlogger.Warn, time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
}

func TestGormLoggerLogModeCopies(t *testing.T) {
	l, recorded := newObserved(gormlogger.Warn, 0)
	silent := l.LogMode(gormlogger.Silent)

	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("x"))
	assert.Empty(t, recorded.All())
	assert.Equal(t, gormlogger.Warn, l.level)
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
}
