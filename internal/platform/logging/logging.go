// Package logging はlog/slogのデフォルトロガーを設定します。
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger はフォーマット（text|json）とレベル（debug|info|warn|error）からロガーを生成します。
// 不明な値はtext・infoとして扱います。
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Setup はNewLoggerで生成したロガーをslogのデフォルトに設定します。
func Setup(w io.Writer, format, level string) *slog.Logger {
	logger := NewLogger(w, format, level)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a level name to slog.Level.
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
