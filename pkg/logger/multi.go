package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout sends each record to every handler enabled for its level.
type fanout []slog.Handler

// Multi combines loggers into one. The serve command uses it to write pretty
// output to the terminal and JSON to the log file in the .praxisvoice
// directory. Nil loggers are skipped. A handler that fails does not keep the
// record from the others; their errors are joined.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	var f fanout
	for _, l := range loggers {
		if l != nil {
			f = append(f, l.Handler())
		}
	}
	return slog.New(f)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(derive func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = derive(h)
	}
	return out
}
