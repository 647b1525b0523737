// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup(slog.LevelInfo)                 // colored output on stderr
//	logging.SetupWriter(w, slog.LevelDebug, false) // e.g. tests or a log file
//
// Logs go to stderr so that they never mix with REPL output on stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging on stderr at the given level.
func Setup(level slog.Level) {
	SetupWriter(os.Stderr, level, true)
}

// SetupWriter configures logging to w. Color is disabled when color is false.
func SetupWriter(w io.Writer, level slog.Level, color bool) *slog.Logger {
	logger := slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level == slog.LevelDebug,
			NoColor:    !color,
		}),
	)
	slog.SetDefault(logger)
	return logger
}
