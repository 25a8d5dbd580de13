package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ringHandler is a minimal slog.Handler that formats each record as
// "component: message key=value ..." and appends it to a Ring.
type ringHandler struct {
	ring  *Ring
	attrs []slog.Attr
	group string
}

func newRingHandler(ring *Ring) *ringHandler {
	return &ringHandler{ring: ring}
}

func (h *ringHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *ringHandler) Handle(_ context.Context, r slog.Record) error {
	tag := "log"
	attrs := make([]string, 0, r.NumAttrs()+len(h.attrs))

	for _, a := range h.attrs {
		if a.Key == "component" {
			tag = a.Value.String()
			continue
		}
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
	}

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			tag = a.Value.String()
			return true
		}
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	})

	msg := r.Message
	if len(attrs) > 0 {
		msg = fmt.Sprintf("%s %s", msg, strings.Join(attrs, " "))
	}

	h.ring.Log(Allow{}, tag, msg)
	return nil
}

func (h *ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &ringHandler{ring: h.ring, group: h.group}
	next.attrs = append(append(next.attrs, h.attrs...), attrs...)
	return next
}

func (h *ringHandler) WithGroup(name string) slog.Handler {
	next := &ringHandler{ring: h.ring, attrs: h.attrs}
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return next
}
