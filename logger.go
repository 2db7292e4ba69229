package hibf

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with build-specific helpers so that every stage
// logs with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
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

// NewTextLogger creates a Logger writing human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger writing JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// LogAssemble logs the outcome of tree assembly.
func (l *Logger) LogAssemble(ctx context.Context, records, nodes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tree assembly failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "tree assembled",
		"records", records,
		"nodes", nodes,
	)
}

// LogAttach logs the outcome of attaching user bins to the tree.
func (l *Logger) LogAttach(ctx context.Context, userBins int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "attaching user bins failed",
			"user_bins", userBins,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "user bins attached",
		"user_bins", userBins,
	)
}

// LogIBF logs the construction of a single IBF.
func (l *Logger) LogIBF(ctx context.Context, ibfID uint64, node NodeID, bins int, binBits uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ibf construction failed",
			"ibf", ibfID,
			"node", int(node),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "ibf built",
		"ibf", ibfID,
		"node", int(node),
		"technical_bins", bins,
		"bin_bits", binBits,
	)
}

// LogBuild logs the outcome of a whole build run.
func (l *Logger) LogBuild(ctx context.Context, ibfs, userBins uint64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"ibfs", ibfs,
			"user_bins", userBins,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"ibfs", ibfs,
		"user_bins", userBins,
		"elapsed", elapsed,
	)
}
