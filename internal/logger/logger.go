package logger

import (
	"io"
	"log/slog"
)

// New returns the process logger: colored lines in development, JSON
// everywhere else so log shippers can parse it.
func New(w io.Writer, env string, level slog.Level) *slog.Logger {
	if env == "development" {
		return slog.New(NewPrettyHandler(w, &Options{Level: level}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if isSensitive(a.Key) {
				return slog.String(a.Key, redacted)
			}
			return a
		},
	}))
}
