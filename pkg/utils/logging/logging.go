package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Format is the output format of the logger
type Format int

const (
	// FormatConsole is a human readable console format
	FormatConsole Format = iota
	// FormatJSON is a machine readable JSON format
	FormatJSON
)

var (
	defaultLogger *slog.Logger
	defaultMutex  sync.RWMutex
)

func init() {
	defaultLogger = New(os.Stdout, slog.LevelInfo, FormatConsole)
}

// Default returns the process-wide default logger
func Default() *slog.Logger {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(logger *slog.Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
}

// New creates a logger writing to w. Console output is rendered by clog,
// JSON output by slog's JSON handler. Fields tagged `masq:"secret"` are
// redacted in both formats.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	filter := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithSource(true),
			clog.WithReplaceAttr(filter),
		)
	}

	return slog.New(handler)
}

type ctxLoggerKey struct{}

// With returns a context carrying the given logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger carried by ctx, or the default logger
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
