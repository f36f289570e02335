package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewJSONLogger writes JSON records to stdout and, when logFile is
// non-empty, to a size-rotated file as well.
func NewJSONLogger(service, level, logFile string) *slog.Logger {
	var w io.Writer = os.Stdout
	if logFile != "" {
		w = io.MultiWriter(os.Stdout, newRotatingWriter(logFile))
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// NewTextLogger writes human-readable records to stderr. The returned
// LevelVar lets callers raise verbosity after flag parsing.
func NewTextLogger(service, level string) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	lv.Set(parseLevel(level))
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lv,
	})
	return slog.New(handler).With("service", service), lv
}

func newRotatingWriter(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
}

func parseLevel(level string) slog.Level {
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
