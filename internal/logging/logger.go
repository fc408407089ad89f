package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSplit creates a logger that routes records by severity.
// Records below Error go to out when they reach level and quiet is false.
// Error records always go to errOut, even when quiet.
func NewSplit(out, errOut io.Writer, level slog.Level, quiet bool) *slog.Logger {
	return slog.New(&splitHandler{
		out:    slog.NewTextHandler(out, options(level)),
		errOut: slog.NewTextHandler(errOut, options(slog.LevelError)),
		level:  level,
		quiet:  quiet,
	})
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func options(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
}

type splitHandler struct {
	out    slog.Handler
	errOut slog.Handler
	level  slog.Level
	quiet  bool
}

func (h *splitHandler) Enabled(ctx context.Context, l slog.Level) bool {
	if l >= slog.LevelError {
		return true
	}
	return !h.quiet && l >= h.level
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errOut.Handle(ctx, r)
	}
	return h.out.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.out = h.out.WithAttrs(attrs)
	c.errOut = h.errOut.WithAttrs(attrs)
	return &c
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.out = h.out.WithGroup(name)
	c.errOut = h.errOut.WithGroup(name)
	return &c
}
