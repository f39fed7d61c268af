package events

import (
	"context"
	"log/slog"
)

// ActivityLogger writes every published event to the activity log.
type ActivityLogger struct {
	logger *slog.Logger
}

func NewActivityLogger(logger *slog.Logger) *ActivityLogger {
	return &ActivityLogger{logger: logger.With("component", "activity")}
}

func (a *ActivityLogger) Handle(ctx context.Context, event Event) error {
	attrs := []any{
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload(),
	}
	if s, ok := event.(Scoped); ok {
		tenantID, actorID := s.Scope()
		attrs = append(attrs, "tenant_id", tenantID, "actor_id", actorID)
	}
	a.logger.InfoContext(ctx, "activity", attrs...)
	return nil
}

func (a *ActivityLogger) RegisterEventHandlers(bus *EventBus) {
	for _, t := range KnownTypes {
		bus.Subscribe(t, a.Handle)
	}
}
