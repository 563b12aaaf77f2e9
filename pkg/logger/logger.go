// Package logger builds the slog loggers used across praxisvoice: pretty
// output for the CLI, JSON for the webhook services.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	service string
	writers []io.Writer
}

// New creates a *slog.Logger. Without options it writes slog text records
// at Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer = os.Stdout
	switch len(c.writers) {
	case 0:
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	var h slog.Handler
	switch {
	case c.pretty:
		h = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			ReportCaller:    c.source,
		})
	case c.json:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	}

	l := slog.New(h)
	if c.service != "" {
		l = l.With("service", c.service)
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
