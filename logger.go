package fuzzysearch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with search-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithID adds an ID field to the logger.
func (l *Logger) WithID(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, id uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"id", id,
		)
	}
}

// LogBatchCommit logs a batch commit.
func (l *Logger) LogBatchCommit(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch commit failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "batch committed",
			"count", count,
		)
	}
}

// LogSearch logs a find operation.
func (l *Logger) LogSearch(ctx context.Context, text string, resultsFound int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"text", text,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"text", text,
			"results", resultsFound,
			"elapsed", elapsed,
		)
	}
}

// LogQuery logs a query language request.
func (l *Logger) LogQuery(ctx context.Context, q string, resultsFound int, err error) {
	if err != nil {
		l.WarnContext(ctx, "query rejected",
			"query", q,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"query", q,
			"results", resultsFound,
		)
	}
}

// LogRecovery logs opening a store.
func (l *Logger) LogRecovery(ctx context.Context, path string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store opened",
			"path", path,
			"records", records,
		)
	}
}

// LogBackup logs an export or import.
func (l *Logger) LogBackup(ctx context.Context, op string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "backup failed",
			"op", op,
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backup completed",
			"op", op,
			"records", records,
		)
	}
}
