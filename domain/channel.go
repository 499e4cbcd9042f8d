package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChannelID string

type ChannelType string

const (
	ChannelTypeChannel ChannelType = "channel"
	ChannelTypeDM      ChannelType = "dm"
)

type MemberSet map[UserID]struct{}

func NewMemberSet(members ...UserID) MemberSet {
	set := make(MemberSet, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set
}

func (s MemberSet) Contains(id UserID) bool {
	_, ok := s[id]
	return ok
}

func (s MemberSet) Sorted() []UserID {
	out := make([]UserID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s MemberSet) Clone() MemberSet {
	out := make(MemberSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Channel is a named conversation scope. A dm channel holds exactly two
// members; a regular channel holds one or more. Channels are created once
// and only their member set changes afterwards.
type Channel struct {
	ID          ChannelID
	Name        string
	Type        ChannelType
	Members     MemberSet
	Description string
	CreatedAt   time.Time
}

func NewChannelID() ChannelID {
	return ChannelID(uuid.NewString())
}

// PairKey builds the dm dedup key from the unordered member pair.
func PairKey(members MemberSet) string {
	sorted := members.Sorted()
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = string(id)
	}
	return strings.Join(parts, "|")
}

// Snapshot returns an independent copy safe to hand to observers.
func (c Channel) Snapshot() Channel {
	out := c
	out.Members = c.Members.Clone()
	return out
}
