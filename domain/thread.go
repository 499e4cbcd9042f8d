package domain

import "github.com/google/uuid"

type ThreadID string

// Thread anchors a sub-conversation to one parent message. There is at
// most one thread per parent message; creation is idempotent.
type Thread struct {
	ID              ThreadID
	ChannelID       ChannelID
	ParentMessageID MessageID
}

func NewThreadID() ThreadID {
	return ThreadID(uuid.NewString())
}
