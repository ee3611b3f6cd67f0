package edgequery

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with edgequery-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithKernel adds a kernel field to the logger.
func (l *Logger) WithKernel(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kernel", name),
	}
}

// WithSeed adds a seed field to the logger (useful for reproducing a sample).
func (l *Logger) WithSeed(seed uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// LogPartition logs the batch partitioning step.
func (l *Logger) LogPartition(ctx context.Context, batches, candidates, queries int) {
	l.DebugContext(ctx, "batches partitioned",
		"batches", batches,
		"candidates", candidates,
		"queries", queries,
	)
}

// LogQuery logs a completed neighbor query.
func (l *Logger) LogQuery(ctx context.Context, queries, candidates, matches, edges int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "neighbor query failed",
			"queries", queries,
			"candidates", candidates,
			"error", err,
		)
		return
	}

	l.DebugContext(ctx, "neighbor query completed",
		"queries", queries,
		"candidates", candidates,
		"matches", matches,
		"edges", edges,
		"duration", duration,
	)
}

// LogCapped logs queries whose matches exceeded the neighbor cap.
func (l *Logger) LogCapped(ctx context.Context, capped, maxMatches int) {
	if capped == 0 {
		return
	}
	l.DebugContext(ctx, "neighbor cap applied",
		"queries", capped,
		"max_matches", maxMatches,
	)
}
