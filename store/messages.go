//go:generate go run go.uber.org/mock/mockgen -source=messages.go -destination=../mocks/mock_message_store.go -package=mocks
package store

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"chat-core/domain"
	"chat-core/errors"
)

type IMessageStore interface {
	TrackChannel(id domain.ChannelID)
	TrackThread(id domain.ThreadID, channelID domain.ChannelID)
	Append(msg domain.Message) (domain.Message, error)
	Get(id domain.MessageID) (domain.Message, error)
	ChannelMessages(id domain.ChannelID) []domain.Message
	ChannelMessageIDs(id domain.ChannelID) []domain.MessageID
	ThreadMessages(id domain.ThreadID) []domain.Message
}

// MessageStore holds the authoritative, append-only message sequences per
// channel and per thread. Sequence assignment and insertion happen in a
// single critical section so two appends to the same channel can never
// interleave partially.
type MessageStore struct {
	mu        sync.RWMutex
	known     map[domain.ChannelID]struct{}
	threads   map[domain.ThreadID]domain.ChannelID
	byChannel map[domain.ChannelID][]domain.Message
	byThread  map[domain.ThreadID][]domain.Message
	byID      map[domain.MessageID]domain.Message
	seq       map[domain.ChannelID]uint64
	lastAt    map[domain.ChannelID]time.Time
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		known:     make(map[domain.ChannelID]struct{}),
		threads:   make(map[domain.ThreadID]domain.ChannelID),
		byChannel: make(map[domain.ChannelID][]domain.Message),
		byThread:  make(map[domain.ThreadID][]domain.Message),
		byID:      make(map[domain.MessageID]domain.Message),
		seq:       make(map[domain.ChannelID]uint64),
		lastAt:    make(map[domain.ChannelID]time.Time),
	}
}

// TrackChannel registers a channel whose messages this store accepts.
// Called by the engine when the registry commits a channel creation.
func (s *MessageStore) TrackChannel(id domain.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[id] = struct{}{}
}

// TrackThread registers a committed thread and the channel it belongs to.
func (s *MessageStore) TrackThread(id domain.ThreadID, channelID domain.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[id] = channelID
}

// Append commits a message, assigning its sequence number and a CreatedAt
// strictly after the previous message of the same channel. The incoming
// ID, Seq and CreatedAt fields are overwritten; everything else is stored
// as given.
func (s *MessageStore) Append(msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.known[msg.ChannelID]; !ok {
		return domain.Message{}, errors.ErrChannelNotFound
	}
	if msg.InThread() {
		channelID, ok := s.threads[msg.ThreadID]
		if !ok || channelID != msg.ChannelID {
			return domain.Message{}, errors.ErrThreadNotFound
		}
	}

	s.seq[msg.ChannelID]++
	msg.ID = domain.NewMessageID()
	msg.Seq = s.seq[msg.ChannelID]
	msg.Reactions = nil

	now := time.Now().UTC()
	if last := s.lastAt[msg.ChannelID]; !now.After(last) {
		now = last.Add(time.Nanosecond)
	}
	msg.CreatedAt = now
	s.lastAt[msg.ChannelID] = now

	s.byID[msg.ID] = msg
	s.byChannel[msg.ChannelID] = append(s.byChannel[msg.ChannelID], msg)
	if msg.InThread() {
		s.byThread[msg.ThreadID] = append(s.byThread[msg.ThreadID], msg)
	}
	return msg.Snapshot(), nil
}

func (s *MessageStore) Get(id domain.MessageID) (domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.byID[id]
	if !ok {
		return domain.Message{}, errors.ErrMessageNotFound
	}
	return msg.Snapshot(), nil
}

// ChannelMessages returns a fresh copy of the channel sequence, oldest
// first. Thread replies are part of their channel's sequence as well.
func (s *MessageStore) ChannelMessages(id domain.ChannelID) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotAll(s.byChannel[id])
}

// ChannelMessageIDs returns the ids of the channel sequence, oldest first.
func (s *MessageStore) ChannelMessageIDs(id domain.ChannelID) []domain.MessageID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.byChannel[id], func(msg domain.Message, _ int) domain.MessageID {
		return msg.ID
	})
}

// ThreadMessages returns a fresh copy of the thread sequence, oldest first.
func (s *MessageStore) ThreadMessages(id domain.ThreadID) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotAll(s.byThread[id])
}

func snapshotAll(messages []domain.Message) []domain.Message {
	out := make([]domain.Message, len(messages))
	for i, msg := range messages {
		out[i] = msg.Snapshot()
	}
	return out
}
