package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionKey is the standardized structured logging key for pagination session keys.
	FieldSessionKey = "session_key"
	// FieldItemID is the standardized structured logging key for catalog item identifiers.
	FieldItemID = "item_id"
	// FieldChatID is the standardized structured logging key for destination chat identifiers.
	FieldChatID = "chat_id"
	// FieldDigestKind is the standardized structured logging key for digest kinds (movie/series).
	FieldDigestKind = "digest_kind"
)

type contextKey int

const (
	sessionKeyContextKey contextKey = iota
	itemIDContextKey
	chatIDContextKey
)

// WithSessionKey stamps the pagination session key onto the context.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContextKey, key)
}

// WithItemID stamps a catalog item identifier onto the context.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDContextKey, id)
}

// WithChatID stamps a destination chat identifier onto the context.
func WithChatID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, chatIDContextKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if key, ok := ctx.Value(sessionKeyContextKey).(string); ok && key != "" {
		fields = append(fields, slog.String(FieldSessionKey, key))
	}
	if id, ok := ctx.Value(itemIDContextKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if id, ok := ctx.Value(chatIDContextKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldChatID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
