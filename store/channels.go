//go:generate go run go.uber.org/mock/mockgen -source=channels.go -destination=../mocks/mock_channel_registry.go -package=mocks
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"chat-core/domain"
	"chat-core/errors"
)

type IChannelRegistry interface {
	CreateChannel(cmd domain.CreateChannelCommand) (domain.Channel, bool, error)
	CreateThread(channelID domain.ChannelID, parentMessageID domain.MessageID) (domain.Thread, bool, error)
	Channel(id domain.ChannelID) (domain.Channel, error)
	Thread(id domain.ThreadID) (domain.Thread, error)
	ListChannels() []domain.Channel
	IsMember(channelID domain.ChannelID, userID domain.UserID) (bool, error)
	AddMember(channelID domain.ChannelID, userID domain.UserID) (bool, error)
	RemoveMember(channelID domain.ChannelID, userID domain.UserID) (bool, error)
}

// ChannelRegistry owns channel and thread lifecycle. Channels are never
// deleted; after creation only their member set changes.
type ChannelRegistry struct {
	mu             sync.RWMutex
	channels       map[domain.ChannelID]domain.Channel
	order          []domain.ChannelID
	names          map[string]domain.ChannelID
	pairs          map[string]domain.ChannelID
	threads        map[domain.ThreadID]domain.Thread
	threadByParent map[domain.MessageID]domain.ThreadID
}

func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		channels:       make(map[domain.ChannelID]domain.Channel),
		names:          make(map[string]domain.ChannelID),
		pairs:          make(map[string]domain.ChannelID),
		threads:        make(map[domain.ThreadID]domain.Thread),
		threadByParent: make(map[domain.MessageID]domain.ThreadID),
	}
}

// CreateChannel registers a new channel. Regular channels need a non-empty,
// unique name (case-sensitive). A dm is keyed by its unordered member pair:
// creating a dm that already exists returns the existing one unchanged.
// The boolean reports whether a channel was actually created.
func (r *ChannelRegistry) CreateChannel(cmd domain.CreateChannelCommand) (domain.Channel, bool, error) {
	members := domain.NewMemberSet(cmd.Members...)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch cmd.Type {
	case domain.ChannelTypeDM:
		if len(members) != 2 {
			return domain.Channel{}, false, errors.ErrInvalidMembers
		}
		key := domain.PairKey(members)
		if id, ok := r.pairs[key]; ok {
			return r.channels[id].Snapshot(), false, nil
		}
		channel := r.insert(cmd, members)
		r.pairs[key] = channel.ID
		return channel.Snapshot(), true, nil

	case domain.ChannelTypeChannel:
		if strings.TrimSpace(cmd.Name) == "" || len(members) == 0 {
			return domain.Channel{}, false, errors.ErrInvalidMembers
		}
		if _, ok := r.names[cmd.Name]; ok {
			return domain.Channel{}, false, errors.ErrDuplicateChannelName
		}
		channel := r.insert(cmd, members)
		r.names[cmd.Name] = channel.ID
		return channel.Snapshot(), true, nil

	default:
		return domain.Channel{}, false, errors.ErrInvalidMembers
	}
}

// insert must run under the write lock.
func (r *ChannelRegistry) insert(cmd domain.CreateChannelCommand, members domain.MemberSet) domain.Channel {
	channel := domain.Channel{
		ID:          domain.NewChannelID(),
		Name:        cmd.Name,
		Type:        cmd.Type,
		Members:     members,
		Description: cmd.Description,
		CreatedAt:   time.Now().UTC(),
	}
	r.channels[channel.ID] = channel
	r.order = append(r.order, channel.ID)
	return channel
}

// CreateThread anchors a thread to a parent message, at most once per
// parent. Calling it again for the same parent returns the existing thread.
// Parent message existence is validated by the caller, which owns the
// message store lookup.
func (r *ChannelRegistry) CreateThread(channelID domain.ChannelID, parentMessageID domain.MessageID) (domain.Thread, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channelID]; !ok {
		return domain.Thread{}, false, errors.ErrChannelNotFound
	}
	if id, ok := r.threadByParent[parentMessageID]; ok {
		return r.threads[id], false, nil
	}
	thread := domain.Thread{
		ID:              domain.NewThreadID(),
		ChannelID:       channelID,
		ParentMessageID: parentMessageID,
	}
	r.threads[thread.ID] = thread
	r.threadByParent[parentMessageID] = thread.ID
	return thread, true, nil
}

func (r *ChannelRegistry) Channel(id domain.ChannelID) (domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, ok := r.channels[id]
	if !ok {
		return domain.Channel{}, errors.ErrChannelNotFound
	}
	return channel.Snapshot(), nil
}

func (r *ChannelRegistry) Thread(id domain.ThreadID) (domain.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[id]
	if !ok {
		return domain.Thread{}, errors.ErrThreadNotFound
	}
	return thread, nil
}

// ListChannels returns snapshots in creation order.
func (r *ChannelRegistry) ListChannels() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id domain.ChannelID, _ int) domain.Channel {
		return r.channels[id].Snapshot()
	})
}

func (r *ChannelRegistry) IsMember(channelID domain.ChannelID, userID domain.UserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return false, errors.ErrChannelNotFound
	}
	return channel.Members.Contains(userID), nil
}

// AddMember adds a user to a regular channel. A dm member set is fixed at
// creation. The boolean reports whether membership actually changed.
func (r *ChannelRegistry) AddMember(channelID domain.ChannelID, userID domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return false, errors.ErrChannelNotFound
	}
	if channel.Type == domain.ChannelTypeDM {
		return false, errors.ErrInvalidMembers
	}
	if channel.Members.Contains(userID) {
		return false, nil
	}
	channel.Members[userID] = struct{}{}
	return true, nil
}

// RemoveMember removes a user from a regular channel. An emptied channel
// stays listed; deletion is out of scope.
func (r *ChannelRegistry) RemoveMember(channelID domain.ChannelID, userID domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return false, errors.ErrChannelNotFound
	}
	if channel.Type == domain.ChannelTypeDM {
		return false, errors.ErrInvalidMembers
	}
	if !channel.Members.Contains(userID) {
		return false, nil
	}
	delete(channel.Members, userID)
	return true, nil
}
