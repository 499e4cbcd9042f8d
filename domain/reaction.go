package domain

// ReactionGroup is the read-side view of one (message, emoji) ledger entry.
// Users is sorted so two snapshots of the same state compare equal.
type ReactionGroup struct {
	Emoji string
	Count int
	Users []UserID
}

func (g ReactionGroup) Clone() ReactionGroup {
	out := g
	out.Users = make([]UserID, len(g.Users))
	copy(out.Users, g.Users)
	return out
}
