package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger creates a timestamped logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "tabula",
	})
}

// logLevel resolves the effective level: --debug wins over log_level.
func logLevel(debug bool, configured string) log.Level {
	if debug {
		return log.DebugLevel
	}
	if l, err := log.ParseLevel(strings.TrimSpace(configured)); err == nil {
		return l
	}
	return log.InfoLevel
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext falls back to log.Default when no logger is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
