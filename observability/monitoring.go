// Package observability collects in-process telemetry for the chat core.
// Counters are plain atomics; no metrics transport is attached, consumers
// read snapshots through Stats.
package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"chat-core/domain/event"
)

// Stats is a point-in-time view of the core's activity.
type Stats struct {
	ChannelsCreated  uint64 `json:"channels_created"`
	ThreadsCreated   uint64 `json:"threads_created"`
	MessagesPosted   uint64 `json:"messages_posted"`
	ReactionsToggled uint64 `json:"reactions_toggled"`
	EventsFanned     uint64 `json:"events_fanned"`
	SinkErrors       uint64 `json:"sink_errors"`
	AllocMemMb       uint64 `json:"alloc_mem_mb"`
	NumGC            uint32 `json:"num_gc"`
}

// Monitor aggregates atomic counters fed by the fanout pipeline.
type Monitor struct {
	log *slog.Logger

	channelsCreated  atomic.Uint64
	threadsCreated   atomic.Uint64
	messagesPosted   atomic.Uint64
	reactionsToggled atomic.Uint64
	eventsFanned     atomic.Uint64
	sinkErrors       atomic.Uint64
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{log: log}
}

func (m *Monitor) IncrEventsFanned() { m.eventsFanned.Add(1) }
func (m *Monitor) IncrSinkErrors()   { m.sinkErrors.Add(1) }

// Consume implements the EventSink interface so the monitor can be wired
// into the fanout like any other sink.
func (m *Monitor) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.ChannelCreated:
		m.channelsCreated.Add(1)
	case event.ThreadCreated:
		m.threadsCreated.Add(1)
	case event.MessagePosted:
		m.messagesPosted.Add(1)
	case event.ReactionToggled:
		m.reactionsToggled.Add(1)
	}
	return nil
}

// Stats snapshots the counters together with Go memory statistics.
func (m *Monitor) Stats() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		ChannelsCreated:  m.channelsCreated.Load(),
		ThreadsCreated:   m.threadsCreated.Load(),
		MessagesPosted:   m.messagesPosted.Load(),
		ReactionsToggled: m.reactionsToggled.Load(),
		EventsFanned:     m.eventsFanned.Load(),
		SinkErrors:       m.sinkErrors.Load(),
		AllocMemMb:       mem.Alloc / 1024 / 1024,
		NumGC:            mem.NumGC,
	}
}

// LogEvery logs a stats snapshot at the given interval until the context
// is canceled.
func (m *Monitor) LogEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := m.Stats()
			m.log.Info("Chat core stats",
				"channels", stats.ChannelsCreated,
				"threads", stats.ThreadsCreated,
				"messages", stats.MessagesPosted,
				"reactions", stats.ReactionsToggled,
				"sink_errors", stats.SinkErrors,
				"mem_mb", stats.AllocMemMb,
			)
		}
	}
}
