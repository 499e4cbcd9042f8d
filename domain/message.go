// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageID string

// FileRef points at an attachment already resolved by the external upload
// collaborator. It is immutable once attached to a message.
type FileRef struct {
	ID   string
	Name string
	Type string
	URL  string
}

// Message represents an immutable chat event. Seq is assigned by the
// message store and is strictly increasing within the owning channel;
// CreatedAt follows the same total order. Reactions are only populated on
// snapshots delivered to observers, never on the stored record.
type Message struct {
	ID        MessageID
	ChannelID ChannelID
	ThreadID  ThreadID
	UserID    UserID
	Content   string
	Seq       uint64
	CreatedAt time.Time
	Files     []FileRef
	Reactions []ReactionGroup
}

func NewMessageID() MessageID {
	return MessageID(uuid.NewString())
}

// InThread reports whether the message belongs to a thread in addition to
// its channel.
func (m Message) InThread() bool {
	return m.ThreadID != ""
}

// Snapshot returns an independent copy safe to hand to observers.
func (m Message) Snapshot() Message {
	out := m
	if m.Files != nil {
		out.Files = make([]FileRef, len(m.Files))
		copy(out.Files, m.Files)
	}
	if m.Reactions != nil {
		out.Reactions = make([]ReactionGroup, len(m.Reactions))
		for i, g := range m.Reactions {
			out.Reactions[i] = g.Clone()
		}
	}
	return out
}
