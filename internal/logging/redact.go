package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Attributes with these names never reach a handler with their value.
var sensitiveFields = map[string]struct{}{
	"key":            {},
	"encryption_key": {},
	"_pragma_key":    {},
	"passphrase":     {},
	"secret":         {},
	"token":          {},
	"password":       {},
}

// A database DSN carries the key as a query parameter. Driver errors and
// debug output may echo it.
var dsnKeyParam = regexp.MustCompile(`(_pragma_key=)[^&\s"']*`)

// RedactingHandler hides sensitive attribute values and scrubs key
// parameters out of string and error values before the wrapped handler sees
// them. The message itself is scrubbed too.
type RedactingHandler struct {
	inner slog.Handler
}

func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, scrub(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		clean[i] = redactAttr(attr)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(clean)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(attr slog.Attr) slog.Attr {
	if _, ok := sensitiveFields[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}
	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindGroup:
		group := value.Group()
		clean := make([]slog.Attr, len(group))
		for i, nested := range group {
			clean[i] = redactAttr(nested)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	case slog.KindString:
		return slog.String(attr.Key, scrub(value.String()))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.String(attr.Key, scrub(err.Error()))
		}
	}
	return slog.Attr{Key: attr.Key, Value: value}
}

func scrub(s string) string {
	if !strings.Contains(s, "_pragma_key=") {
		return s
	}
	return dsnKeyParam.ReplaceAllString(s, "${1}"+redacted)
}
