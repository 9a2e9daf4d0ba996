// Package debug configures the package loggers.
package debug

import (
	"os"
	"strconv"

	"golang.org/x/exp/slog"
)

// EnvVar is the environment variable that turns on debug logging when
// set to a positive integer.
const EnvVar = "LAYERBUF_DEBUG"

var level = slog.LevelInfo

func init() {
	debugLevel, err := strconv.ParseInt(os.Getenv(EnvVar), 10, 0)
	if err != nil {
		return
	}
	if debugLevel > 0 {
		level = slog.LevelDebug
	}
}

// Logger returns a logger that writes text records to stderr.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
