package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const notificationIDKey ctxKey = iota

// ContextWithNotificationID returns a context carrying the notification
// identifier currently being processed.
func ContextWithNotificationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, notificationIDKey, id)
}

// NotificationIDFromContext returns the notification identifier stored in the
// context, or an empty string when none is set.
func NotificationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(notificationIDKey).(string); ok {
		return id
	}
	return ""
}

// NotificationIDExtractor injects the in-flight notification identifier into
// every log record produced with a context created by ContextWithNotificationID.
// Register it via WithContextExtractors.
func NotificationIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := NotificationIDFromContext(ctx); id != "" {
		return slog.String("notification_id", id), true
	}
	return slog.Attr{}, false
}
