// Package logger provides opinionated logging capabilities for gemcli. All
// loggers are *slog.Logger values; the handler behind them is chosen with
// Options.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	format  Format
	source  bool
	writers []io.Writer
}

// New builds a logger. Without options it writes slog text records at Info
// level to stderr, keeping stdout free for model output.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:   slog.LevelInfo,
		format:  FormatText,
		writers: []io.Writer{os.Stderr},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return slog.New(newHandler(cfg))
}

func newHandler(cfg *config) slog.Handler {
	var w io.Writer
	switch len(cfg.writers) {
	case 0:
		w = os.Stderr
	case 1:
		w = cfg.writers[0]
	default:
		w = io.MultiWriter(cfg.writers...)
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.source,
	}

	switch cfg.format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatPretty:
		return log.NewWithOptions(w, log.Options{
			Level:           log.Level(cfg.level),
			ReportTimestamp: true,
			ReportCaller:    cfg.source,
			Prefix:          "gemcli",
		})
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
