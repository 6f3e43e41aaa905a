package logger

import (
	"context"
	"strings"

	"golang.org/x/exp/slog"
)

const (
	redactedPlaceholder = "[REDACTED]"
	maxAttrLen          = 200
	truncateKeep        = 50
)

// Attr keys whose values must never be persisted or emitted. Matching is a
// case-insensitive substring check, so "ownerKey" and "encrypted_data" are
// caught as well.
var sensitiveKeys = []string{
	"content",
	"password",
	"token",
	"key",
	"secret",
	"ciphertext",
	"encrypted",
}

// RedactHandler wraps another slog.Handler and sanitizes every attr before
// it is handed on: sensitive keys are replaced wholesale, and long string
// values are truncated so note bodies cannot leak through generic fields.
type RedactHandler struct {
	inner slog.Handler
}

func NewRedactHandler(inner slog.Handler) *RedactHandler {
	return &RedactHandler{inner: inner}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, rec slog.Record) error {
	clean := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(clean)}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedPlaceholder)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		members := v.Group()
		clean := make([]any, 0, len(members))
		for _, m := range members {
			clean = append(clean, sanitizeAttr(m))
		}
		return slog.Group(a.Key, clean...)
	case slog.KindString:
		if s := v.String(); len(s) > maxAttrLen {
			return slog.String(a.Key, s[:truncateKeep]+"... [TRUNCATED]")
		}
	}
	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
