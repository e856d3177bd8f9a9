package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends GORM traces to the global slog logger. Not-found errors
// are left to the repositories and never logged here.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	contextAttrs  func(context.Context) []any
}

type GormOption func(*GormLogger)

// WithContextAttrs adds attributes taken from the query context to every
// trace, e.g. the caller on whose behalf a batch writes.
func WithContextAttrs(fn func(context.Context) []any) GormOption {
	return func(l *GormLogger) { l.contextAttrs = fn }
}

func NewGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration, opts ...GormOption) *GormLogger {
	l := &GormLogger{level: level, slowThreshold: slowThreshold}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Info, slog.LevelInfo, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Warn, slog.LevelWarn, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.emit(ctx, gormlogger.Error, slog.LevelError, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.emit(ctx, gormlogger.Error, slog.LevelError, "SQL error", l.traceAttrs(fc, elapsed, slog.String("error", err.Error()))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.emit(ctx, gormlogger.Warn, slog.LevelWarn, "Slow SQL", l.traceAttrs(fc, elapsed)...)
	default:
		l.emit(ctx, gormlogger.Info, slog.LevelDebug, "SQL", l.traceAttrs(fc, elapsed)...)
	}
}

func (l *GormLogger) traceAttrs(fc func() (string, int64), elapsed time.Duration, extra ...any) []any {
	sql, rows := fc()
	return append([]any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}, extra...)
}

// emit logs at slogLevel when the GORM level enables min
func (l *GormLogger) emit(ctx context.Context, min gormlogger.LogLevel, slogLevel slog.Level, msg string, attrs ...any) {
	if l.level < min {
		return
	}
	if l.contextAttrs != nil {
		attrs = append(attrs, l.contextAttrs(ctx)...)
	}
	Log.Log(ctx, slogLevel, msg, attrs...)
}
