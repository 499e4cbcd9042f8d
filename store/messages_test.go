package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-core/domain"
	"chat-core/errors"
)

func TestMessageStore_Append_Assigns_Strictly_Increasing_Order(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	channelID := domain.NewChannelID()
	store.TrackChannel(channelID)
	alice := domain.NewUserID()

	contents := []string{"one", "two", "three", "four", "five"}
	for _, content := range contents {
		_, err := store.Append(domain.Message{
			ChannelID: channelID, UserID: alice, Content: content,
		})
		req.NoError(err)
	}

	messages := store.ChannelMessages(channelID)
	req.Len(messages, len(contents))
	for i, msg := range messages {
		req.Equal(contents[i], msg.Content)
		req.Equal(uint64(i+1), msg.Seq)
		if i > 0 {
			req.True(msg.CreatedAt.After(messages[i-1].CreatedAt),
				"timestamps must be strictly increasing per channel")
		}
	}
}

func TestMessageStore_Append_UnknownChannel(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()

	_, err := store.Append(domain.Message{
		ChannelID: domain.NewChannelID(), UserID: domain.NewUserID(), Content: "hello",
	})
	req.ErrorIs(err, errors.ErrChannelNotFound)
}

func TestMessageStore_Append_UnknownThread(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	channelID := domain.NewChannelID()
	store.TrackChannel(channelID)

	_, err := store.Append(domain.Message{
		ChannelID: channelID,
		ThreadID:  domain.NewThreadID(),
		UserID:    domain.NewUserID(),
		Content:   "hello",
	})
	req.ErrorIs(err, errors.ErrThreadNotFound)
}

func TestMessageStore_Append_Thread_Of_Other_Channel(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	channelID := domain.NewChannelID()
	otherID := domain.NewChannelID()
	threadID := domain.NewThreadID()
	store.TrackChannel(channelID)
	store.TrackChannel(otherID)
	store.TrackThread(threadID, otherID)

	// The thread exists but belongs to another channel
	_, err := store.Append(domain.Message{
		ChannelID: channelID, ThreadID: threadID,
		UserID: domain.NewUserID(), Content: "hello",
	})
	req.ErrorIs(err, errors.ErrThreadNotFound)
}

func TestMessageStore_Thread_Replies_Appear_In_Both_Scopes(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	channelID := domain.NewChannelID()
	threadID := domain.NewThreadID()
	store.TrackChannel(channelID)
	store.TrackThread(threadID, channelID)
	alice := domain.NewUserID()

	top, err := store.Append(domain.Message{ChannelID: channelID, UserID: alice, Content: "hello"})
	req.NoError(err)
	reply, err := store.Append(domain.Message{
		ChannelID: channelID, ThreadID: threadID, UserID: alice, Content: "reply",
	})
	req.NoError(err)

	// The reply belongs to the thread and to the channel sequence
	threadMessages := store.ThreadMessages(threadID)
	req.Len(threadMessages, 1)
	req.Equal(reply.ID, threadMessages[0].ID)

	channelMessages := store.ChannelMessages(channelID)
	req.Len(channelMessages, 2)
	req.Equal(top.ID, channelMessages[0].ID)
	req.Equal(reply.ID, channelMessages[1].ID)
	req.False(channelMessages[0].InThread())
	req.True(channelMessages[1].InThread())
}

func TestMessageStore_Get(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	channelID := domain.NewChannelID()
	store.TrackChannel(channelID)

	msg, err := store.Append(domain.Message{
		ChannelID: channelID, UserID: domain.NewUserID(), Content: "hello",
	})
	req.NoError(err)

	fetched, err := store.Get(msg.ID)
	req.NoError(err)
	req.Equal(msg, fetched)

	_, err = store.Get(domain.NewMessageID())
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func TestMessageStore_Reads_Return_Fresh_Copies(t *testing.T) {
	req := require.New(t)
	store := NewMessageStore()
	channelID := domain.NewChannelID()
	store.TrackChannel(channelID)

	_, err := store.Append(domain.Message{
		ChannelID: channelID, UserID: domain.NewUserID(), Content: "hello",
		Files: []domain.FileRef{{ID: "f1", Name: "a.png", Type: "image/png"}},
	})
	req.NoError(err)

	first := store.ChannelMessages(channelID)
	first[0].Content = "mutated"
	first[0].Files[0].Name = "mutated.png"

	second := store.ChannelMessages(channelID)
	req.Equal("hello", second[0].Content)
	req.Equal("a.png", second[0].Files[0].Name)
}
