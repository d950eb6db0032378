package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mkamel7/academy-server-go/pkg/metrics"
)

// gormLogger adapts slog to gorm's logger interface and feeds the query
// duration histogram. Not-found results are skipped since callers treat
// them as regular outcomes, not errors.
type gormLogger struct {
	log           *slog.Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

func newGormLogger(log *slog.Logger, slowThreshold time.Duration) gormlogger.Interface {
	return &gormLogger{
		log:           log,
		slowThreshold: slowThreshold,
		level:         gormlogger.Warn,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := classifySQL(sql)

	metrics.RecordDBQuery(operation, table, elapsed)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		l.log.ErrorContext(ctx, "database query error",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.log.WarnContext(ctx, "slow query detected",
			slog.Duration("elapsed", elapsed),
			slog.Duration("threshold", l.slowThreshold),
			slog.String("operation", operation),
			slog.String("table", table),
			slog.Int64("rows", rows),
			slog.String("sql", sql),
		)
	case l.level >= gormlogger.Info:
		l.log.DebugContext(ctx, "database query",
			slog.Duration("elapsed", elapsed),
			slog.String("operation", operation),
			slog.String("table", table),
			slog.Int64("rows", rows),
		)
	}
}

// classifySQL extracts the statement verb and target table for metric labels.
// Best effort only; anything unrecognized lands under "unknown".
func classifySQL(sql string) (operation, table string) {
	operation, table = "UNKNOWN", "unknown"

	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return operation, table
	}
	operation = strings.ToUpper(fields[0])

	var marker string
	switch operation {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return operation, trimIdentifier(fields[1])
		}
		return operation, table
	default:
		return operation, table
	}

	for i, field := range fields {
		if strings.EqualFold(field, marker) && i+1 < len(fields) {
			return operation, trimIdentifier(fields[i+1])
		}
	}
	return operation, table
}

func trimIdentifier(s string) string {
	s = strings.Trim(s, "\"`")
	if idx := strings.IndexAny(s, "(,;"); idx != -1 {
		s = s[:idx]
	}
	if s == "" {
		return "unknown"
	}
	return s
}
