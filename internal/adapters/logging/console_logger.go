package logging

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
)

// ConsoleLogger writes structured lines through slog. It implements common.Logger.
type ConsoleLogger struct {
	logger *slog.Logger
}

// NewConsoleLogger creates a logger writing to w. format is "json" or "text";
// level is one of debug, info, warn, error.
func NewConsoleLogger(w io.Writer, format, level string) *ConsoleLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &ConsoleLogger{logger: slog.New(handler)}
}

// Log writes one entry; metadata keys are emitted in sorted order
func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, metadata[k]))
	}
	l.logger.LogAttrs(context.Background(), toSlogLevel(level), message, attrs...)
}

// ParseLevel maps a config level name to a slog level; unknown names mean info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toSlogLevel(level string) slog.Level {
	switch level {
	case common.LevelDebug:
		return slog.LevelDebug
	case common.LevelWarning:
		return slog.LevelWarn
	case common.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
