package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        200 * time.Millisecond,
		IgnoreRecordNotFound: true,
	}
}

// GormLogger routes gorm's logging through the request-scoped zap logger.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.Level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < min {
		return
	}
	fields := []zap.Field{zap.String("component", "gorm")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.cfg.SlowThreshold != 0 && elapsed > l.cfg.SlowThreshold

	var level zapcore.Level
	switch {
	case err != nil && l.cfg.Level >= gormlogger.Error && !(notFound && l.cfg.IgnoreRecordNotFound):
		level = zapcore.ErrorLevel
	case slow && l.cfg.Level >= gormlogger.Warn:
		level = zapcore.WarnLevel
	case l.cfg.Level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	ce := FromContext(ctx).Check(level, "gorm.query")
	if ce == nil {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.String("operation", operationFromSQL(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Bool("slow", slow),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil && level == zapcore.ErrorLevel {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter drops bound values; customer phone numbers and addresses
// must never reach the logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func operationFromSQL(sql string) string {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		token = strings.Trim(token, "();")
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return token
		}
	}
	return "UNKNOWN"
}

var _ gormlogger.Interface = (*GormLogger)(nil)
