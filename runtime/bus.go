package runtime

import (
	"sync"

	"chat-core/domain"
)

// Subscription is a live, cancellable snapshot stream. It holds a single
// delivery slot: when the consumer lags, a newer snapshot replaces the
// pending one, so a slow consumer always observes the latest committed
// state instead of a growing queue of intermediates.
type Subscription[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
	detach func()
}

func newSubscription[T any]() *Subscription[T] {
	return &Subscription[T]{ch: make(chan T, 1)}
}

// C is the delivery channel. It is closed on Cancel.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// deliver places the newest snapshot in the slot. Liveness is checked
// here, at delivery time: a cancelled subscription silently drops the
// snapshot even if the triggering mutation was already in flight.
func (s *Subscription[T]) deliver(snapshot T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snapshot:
		return
	default:
	}
	// Slot occupied: the consumer lagged. Replace the stale snapshot.
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snapshot
}

// Cancel stops delivery immediately and closes the stream. It is
// idempotent; cancelling twice is a no-op.
func (s *Subscription[T]) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	// Detach outside the subscription lock so a concurrent publisher
	// holding the bus lock can never deadlock against us.
	if s.detach != nil {
		s.detach()
	}
}

// Bus fans committed snapshots out to live subscribers, scoped per
// channel, per thread, or to the whole channel registry. Subscribing
// replays the current snapshot immediately; every later publication on the
// scope delivers a fresh one.
type Bus struct {
	mu           sync.RWMutex
	channelSubs  map[domain.ChannelID]map[*Subscription[[]domain.Message]]struct{}
	threadSubs   map[domain.ThreadID]map[*Subscription[[]domain.Message]]struct{}
	registrySubs map[*Subscription[[]domain.Channel]]struct{}
}

func NewBus() *Bus {
	return &Bus{
		channelSubs:  make(map[domain.ChannelID]map[*Subscription[[]domain.Message]]struct{}),
		threadSubs:   make(map[domain.ThreadID]map[*Subscription[[]domain.Message]]struct{}),
		registrySubs: make(map[*Subscription[[]domain.Channel]]struct{}),
	}
}

// SubscribeChannel registers a channel-scope subscriber and delivers the
// provided snapshot before returning.
func (b *Bus) SubscribeChannel(id domain.ChannelID, snapshot []domain.Message) *Subscription[[]domain.Message] {
	sub := newSubscription[[]domain.Message]()
	sub.detach = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.channelSubs[id], sub)
		if len(b.channelSubs[id]) == 0 {
			delete(b.channelSubs, id)
		}
	}

	b.mu.Lock()
	if _, ok := b.channelSubs[id]; !ok {
		b.channelSubs[id] = make(map[*Subscription[[]domain.Message]]struct{})
	}
	b.channelSubs[id][sub] = struct{}{}
	b.mu.Unlock()

	sub.deliver(snapshot)
	return sub
}

// SubscribeThread registers a thread-scope subscriber with the same
// replay-on-subscribe contract.
func (b *Bus) SubscribeThread(id domain.ThreadID, snapshot []domain.Message) *Subscription[[]domain.Message] {
	sub := newSubscription[[]domain.Message]()
	sub.detach = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.threadSubs[id], sub)
		if len(b.threadSubs[id]) == 0 {
			delete(b.threadSubs, id)
		}
	}

	b.mu.Lock()
	if _, ok := b.threadSubs[id]; !ok {
		b.threadSubs[id] = make(map[*Subscription[[]domain.Message]]struct{})
	}
	b.threadSubs[id][sub] = struct{}{}
	b.mu.Unlock()

	sub.deliver(snapshot)
	return sub
}

// SubscribeRegistry registers a whole-registry subscriber, notified on
// every channel creation or membership change.
func (b *Bus) SubscribeRegistry(snapshot []domain.Channel) *Subscription[[]domain.Channel] {
	sub := newSubscription[[]domain.Channel]()
	sub.detach = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.registrySubs, sub)
	}

	b.mu.Lock()
	b.registrySubs[sub] = struct{}{}
	b.mu.Unlock()

	sub.deliver(snapshot)
	return sub
}

func (b *Bus) PublishChannel(id domain.ChannelID, snapshot []domain.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.channelSubs[id] {
		sub.deliver(snapshot)
	}
}

func (b *Bus) PublishThread(id domain.ThreadID, snapshot []domain.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.threadSubs[id] {
		sub.deliver(snapshot)
	}
}

func (b *Bus) PublishRegistry(snapshot []domain.Channel) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.registrySubs {
		sub.deliver(snapshot)
	}
}
