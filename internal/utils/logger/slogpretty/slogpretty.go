// Package slogpretty is a human-oriented slog handler for local runs.
package slogpretty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

const timeFormat = "[15:04:05.000]"

type Handler struct {
	opts  slog.HandlerOptions
	mu    *sync.Mutex
	l     *stdlog.Logger
	attrs []slog.Attr
	group string
}

func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{
		mu: &sync.Mutex{},
		l:  stdlog.New(out, "", 0),
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch {
	case r.Level <= slog.LevelDebug:
		level = color.MagentaString(level)
	case r.Level <= slog.LevelInfo:
		level = color.BlueString(level)
	case r.Level <= slog.LevelWarn:
		level = color.YellowString(level)
	default:
		level = color.RedString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		if err, ok := a.Value.Any().(error); ok {
			fields[key] = err.Error()
		} else {
			fields[key] = a.Value.Any()
		}
		return true
	})

	var extra string
	if len(fields) > 0 {
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal attrs: %w", err)
		}
		extra = color.WhiteString(string(b))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.l.Println(r.Time.Format(timeFormat), level, color.CyanString(r.Message), extra)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}
