package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-core/contract"
	"chat-core/domain/event"
	"chat-core/observability"
)

// EventFanout drains the engine's committed-event stream and delivers each
// event to the permanent sinks (archive, search, projections).
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering across sinks, durability, or retries. EventFanout is not a
// message broker: subscriber notification happens synchronously inside the
// engine; this worker only feeds side effects.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	monitor     *observability.Monitor
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent,
	monitor *observability.Monitor, sinkTimeout time.Duration,
	sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      events,
		sinks:       sinks,
		monitor:     monitor,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to every sink, each under its own timeout so a
// stuck sink cannot stall the pipeline.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.monitor.IncrSinkErrors()
			w.log.Error("Sink failed to consume event",
				"channel", evt.Channel(), "error", err)
		}
		cancel()
	}
	w.monitor.IncrEventsFanned()
}
