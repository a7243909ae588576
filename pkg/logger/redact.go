package logger

import (
	"context"
	"log/slog"
	"strings"
)

// redactHandler masks the values of sensitive attributes, including ones
// bound earlier with With and ones nested in groups.
type redactHandler struct {
	next slog.Handler
	keys map[string]bool
}

func newRedactHandler(next slog.Handler, keys []string) slog.Handler {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = true
	}
	return &redactHandler{next: next, keys: set}
}

func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.redact(a)
	}
	return &redactHandler{next: h.next.WithAttrs(masked), keys: h.keys}
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func (h *redactHandler) redact(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		group := v.Group()
		masked := make([]any, len(group))
		for i, ga := range group {
			masked[i] = h.redact(ga)
		}
		return slog.Group(a.Key, masked...)
	}

	if h.keys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Mask(v.String()))
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// Mask keeps at most the first eight characters of a secret, and half of
// a shorter one, followed by "...". A "Bearer " prefix is dropped first.
func Mask(secret string) string {
	secret = strings.TrimPrefix(secret, "Bearer ")
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return secret[:len(secret)/2] + "..."
	default:
		return secret[:8] + "..."
	}
}
