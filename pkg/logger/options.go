package logger

import (
	"io"
	"log/slog"
)

// Format selects the handler behind a logger.
type Format int

const (
	// FormatText is slog's key=value text handler.
	FormatText Format = iota

	// FormatPretty is the charmbracelet/log handler for terminals.
	FormatPretty

	// FormatJSON is slog's JSON handler, one record per line.
	FormatJSON
)

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug when debug is true.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
			return
		}
		c.level = slog.LevelInfo
	}
}

// WithFormat picks the record format. The default is FormatText.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithWriter sets where records go. Several writers are combined with
// io.MultiWriter. Defaults to os.Stderr.
func WithWriter(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource adds the caller's file:line to every record.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
