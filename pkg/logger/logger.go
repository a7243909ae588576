// Package logger builds the *slog.Logger used across speakmcp. Logs go to
// stderr by default so stdout stays reserved for assistant output, and
// credential attributes are masked with Mask before any handler sees them.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// DefaultRedactedKeys are attribute keys whose values are always masked.
var DefaultRedactedKeys = []string{"api_key", "authorization", "token"}

type config struct {
	level    slog.Level
	pretty   bool
	json     bool
	source   bool
	writer   io.Writer
	redacted []string
}

// New returns a logger configured by opts. Without options it writes
// slog text records at Info level to os.Stderr.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:    slog.LevelInfo,
		writer:   os.Stderr,
		redacted: DefaultRedactedKeys,
	}
	for _, opt := range opts {
		opt(c)
	}

	return slog.New(newRedactHandler(c.handler(), c.redacted))
}

func (c *config) handler() slog.Handler {
	switch {
	case c.json:
		return slog.NewJSONHandler(c.writer, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})

	case c.pretty:
		return charmlog.NewWithOptions(c.writer, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			ReportCaller:    c.source,
		})

	default:
		return slog.NewTextHandler(c.writer, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	}
}

// Nop returns a logger that drops every record.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
