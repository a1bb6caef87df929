package events

import (
	"context"
	"log/slog"
)

// RegisterAuditLog subscribes a handler that writes every domain event to
// logger under the "audit" message.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event Event) error {
		attrs := []any{
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
		}
		if data, ok := event.Payload().(map[string]interface{}); ok {
			for k, v := range data {
				attrs = append(attrs, k, v)
			}
		}
		logger.InfoContext(ctx, "audit", attrs...)
		return nil
	}

	for _, eventType := range AllEventTypes {
		bus.Subscribe(eventType, handler)
	}
}
