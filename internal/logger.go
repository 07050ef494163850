package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the process logger. Production gets JSON with RFC3339Nano
// timestamps for the log pipeline, everything else gets human-readable text.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	var lvl slog.LevelVar
	switch level {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "warn":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: &lvl}

	var handler slog.Handler
	switch env {
	case "prod":
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		}
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
