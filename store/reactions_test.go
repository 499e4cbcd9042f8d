package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-core/domain"
)

func TestReactionLedger_Toggle_Pairing(t *testing.T) {
	req := require.New(t)
	ledger := NewReactionLedger()
	messageID := domain.NewMessageID()
	alice := domain.NewUserID()

	// First toggle reacts, second one retracts
	req.True(ledger.Toggle(messageID, alice, "👍"))
	req.False(ledger.Toggle(messageID, alice, "👍"))
	req.Empty(ledger.Groups(messageID))

	// An odd number of toggles leaves the user reacting
	for i := 0; i < 5; i++ {
		ledger.Toggle(messageID, alice, "👍")
	}
	groups := ledger.Groups(messageID)
	req.Len(groups, 1)
	req.Equal("👍", groups[0].Emoji)
	req.Equal(1, groups[0].Count)
	req.Equal([]domain.UserID{alice}, groups[0].Users)
}

func TestReactionLedger_Groups_Are_Sorted(t *testing.T) {
	req := require.New(t)
	ledger := NewReactionLedger()
	messageID := domain.NewMessageID()
	alice := domain.UserID("a-user")
	bob := domain.UserID("b-user")

	ledger.Toggle(messageID, bob, "🔥")
	ledger.Toggle(messageID, alice, "🔥")
	ledger.Toggle(messageID, alice, "✅")

	groups := ledger.Groups(messageID)
	req.Len(groups, 2)
	// Emojis sorted, users sorted within a group
	req.Equal("✅", groups[0].Emoji)
	req.Equal("🔥", groups[1].Emoji)
	req.Equal([]domain.UserID{alice, bob}, groups[1].Users)
	req.Equal(2, groups[1].Count)
}

func TestReactionLedger_Toggle_Is_Per_Emoji(t *testing.T) {
	req := require.New(t)
	ledger := NewReactionLedger()
	messageID := domain.NewMessageID()
	alice := domain.NewUserID()

	req.True(ledger.Toggle(messageID, alice, "👍"))
	req.True(ledger.Toggle(messageID, alice, "🔥"))
	req.False(ledger.Toggle(messageID, alice, "👍"))

	groups := ledger.Groups(messageID)
	req.Len(groups, 1)
	req.Equal("🔥", groups[0].Emoji)
}

func TestReactionLedger_RemoveUser_Purges_Across_Messages(t *testing.T) {
	req := require.New(t)
	ledger := NewReactionLedger()
	first := domain.NewMessageID()
	second := domain.NewMessageID()
	untouched := domain.NewMessageID()
	alice := domain.NewUserID()
	bob := domain.NewUserID()

	ledger.Toggle(first, bob, "👍")
	ledger.Toggle(first, alice, "👍")
	ledger.Toggle(second, bob, "🔥")
	ledger.Toggle(untouched, alice, "✅")

	// When bob is removed from the first two messages
	affected := ledger.RemoveUser([]domain.MessageID{first, second}, bob)

	req.ElementsMatch([]domain.MessageID{first, second}, affected)
	// Alice's reactions survive, bob's are gone everywhere
	req.Equal([]domain.UserID{alice}, ledger.Groups(first)[0].Users)
	req.Empty(ledger.Groups(second))
	req.Len(ledger.Groups(untouched), 1)

	// Removing a user with no reactions reports nothing
	req.Empty(ledger.RemoveUser([]domain.MessageID{first, second}, bob))
}
