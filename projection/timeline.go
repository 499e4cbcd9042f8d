// Package projection builds local read models from observed events.
// Projections never emit events and never touch the authoritative stores;
// they are rebuildable at any time by replaying the event stream.
package projection

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"chat-core/domain"
	"chat-core/domain/event"
)

// Timeline is a flat, cross-channel feed of posted messages, the shape a
// "recent activity" surface consumes. It is fed by the fanout worker and
// read concurrently by its owner.
type Timeline struct {
	mu       sync.RWMutex
	messages []domain.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, fromEvent(evt))
	return nil
}

// Messages returns a copy of the feed in observation order.
func (t *Timeline) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// ChannelFeed returns the subset of the feed belonging to one channel.
func (t *Timeline) ChannelFeed(id domain.ChannelID) []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return lo.Filter(t.messages, func(msg domain.Message, _ int) bool {
		return msg.ChannelID == id
	})
}

func fromEvent(evt event.MessagePosted) domain.Message {
	return domain.Message{
		ID:        evt.MessageID,
		ChannelID: evt.ChannelID,
		ThreadID:  evt.ThreadID,
		UserID:    evt.Author,
		Content:   evt.Content,
		Seq:       evt.Seq,
		CreatedAt: evt.At,
		Files:     evt.Files,
	}
}
