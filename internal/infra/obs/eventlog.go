package obs

import (
	"context"
	"log/slog"

	"hoteldesk/internal/domain/event"
)

// EventLog is the event.Sink used when no broker is configured: confirmed
// state changes still leave a trace in the logs.
type EventLog struct {
	Logger *slog.Logger
}

func (l EventLog) Publish(_ context.Context, ev event.Event) error {
	if l.Logger != nil {
		l.Logger.Info("domain event", "event", ev.EventName(), "aggregate_id", ev.AggregateID(), "occurred_at", ev.OccurredAt())
	}
	return nil
}

var _ event.Sink = EventLog{}
