package store

import (
	"sort"
	"sync"

	"chat-core/domain"
)

// ReactionLedger tracks, per message and emoji, the set of users currently
// reacting. Toggle is the sole mutation path; there is no set or overwrite
// operation, which keeps the at-most-once invariant per
// (message, emoji, user) trivially true.
type ReactionLedger struct {
	mu        sync.RWMutex
	byMessage map[domain.MessageID]map[string]map[domain.UserID]struct{}
}

func NewReactionLedger() *ReactionLedger {
	return &ReactionLedger{
		byMessage: make(map[domain.MessageID]map[string]map[domain.UserID]struct{}),
	}
}

// Toggle flips the user's presence on the (message, emoji) entry and
// reports the resulting state: true means the user is now reacting.
// Message existence and channel membership are validated by the engine
// before the ledger is touched.
func (l *ReactionLedger) Toggle(messageID domain.MessageID, userID domain.UserID, emoji string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	emojis, ok := l.byMessage[messageID]
	if !ok {
		emojis = make(map[string]map[domain.UserID]struct{})
		l.byMessage[messageID] = emojis
	}
	users, ok := emojis[emoji]
	if !ok {
		users = make(map[domain.UserID]struct{})
		emojis[emoji] = users
	}

	if _, reacting := users[userID]; reacting {
		delete(users, userID)
		if len(users) == 0 {
			delete(emojis, emoji)
		}
		if len(emojis) == 0 {
			delete(l.byMessage, messageID)
		}
		return false
	}
	users[userID] = struct{}{}
	return true
}

// RemoveUser deletes the user from every reaction set of the given
// messages and returns the ids of the messages that actually changed.
// Called when a user leaves a channel: a reaction from a non-member must
// not survive in the ledger.
func (l *ReactionLedger) RemoveUser(messageIDs []domain.MessageID, userID domain.UserID) []domain.MessageID {
	l.mu.Lock()
	defer l.mu.Unlock()

	var affected []domain.MessageID
	for _, messageID := range messageIDs {
		emojis, ok := l.byMessage[messageID]
		if !ok {
			continue
		}
		changed := false
		for emoji, users := range emojis {
			if _, reacting := users[userID]; !reacting {
				continue
			}
			delete(users, userID)
			changed = true
			if len(users) == 0 {
				delete(emojis, emoji)
			}
		}
		if len(emojis) == 0 {
			delete(l.byMessage, messageID)
		}
		if changed {
			affected = append(affected, messageID)
		}
	}
	return affected
}

// Groups returns the sorted read-side view embedded into message
// snapshots. Groups are ordered by emoji and users within a group are
// sorted, so identical ledger states produce identical views.
func (l *ReactionLedger) Groups(messageID domain.MessageID) []domain.ReactionGroup {
	l.mu.RLock()
	defer l.mu.RUnlock()

	emojis, ok := l.byMessage[messageID]
	if !ok {
		return nil
	}
	out := make([]domain.ReactionGroup, 0, len(emojis))
	for emoji, users := range emojis {
		group := domain.ReactionGroup{Emoji: emoji, Count: len(users)}
		for userID := range users {
			group.Users = append(group.Users, userID)
		}
		sort.Slice(group.Users, func(i, j int) bool { return group.Users[i] < group.Users[j] })
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Emoji < out[j].Emoji })
	return out
}
