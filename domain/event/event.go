package event

import (
	"time"

	"chat-core/domain"
)

// DomainEvent is a committed state change fanned out to permanent sinks
// (archive, search, projections, telemetry). Events carry id-based
// references only, never live core state.
type DomainEvent interface {
	Channel() domain.ChannelID
}

type ChannelCreated struct {
	ChannelID domain.ChannelID
	Name      string
	Type      domain.ChannelType
	Members   []domain.UserID
	At        time.Time
}

func (e ChannelCreated) Channel() domain.ChannelID { return e.ChannelID }

type MembershipChanged struct {
	ChannelID domain.ChannelID
	UserID    domain.UserID
	Joined    bool
	At        time.Time
}

func (e MembershipChanged) Channel() domain.ChannelID { return e.ChannelID }

type ThreadCreated struct {
	ChannelID       domain.ChannelID
	ThreadID        domain.ThreadID
	ParentMessageID domain.MessageID
	At              time.Time
}

func (e ThreadCreated) Channel() domain.ChannelID { return e.ChannelID }

type MessagePosted struct {
	MessageID domain.MessageID
	ChannelID domain.ChannelID
	ThreadID  domain.ThreadID
	Author    domain.UserID
	Content   string
	Seq       uint64
	Files     []domain.FileRef
	At        time.Time

	// Moderation metadata, empty when no censor is configured.
	Lang          string
	CensoredWords []string
}

func (e MessagePosted) Channel() domain.ChannelID { return e.ChannelID }

type ReactionToggled struct {
	MessageID domain.MessageID
	ChannelID domain.ChannelID
	ThreadID  domain.ThreadID
	UserID    domain.UserID
	Emoji     string
	Applied   bool
	At        time.Time
}

func (e ReactionToggled) Channel() domain.ChannelID { return e.ChannelID }
