package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-core/domain"
	coreerrors "chat-core/errors"
	"chat-core/runtime"
	"chat-core/uploads"
)

type stubUploader struct {
	failAfter int
	calls     int
}

func (u *stubUploader) Upload(_ context.Context, file uploads.RawFile) (domain.FileRef, error) {
	u.calls++
	if u.calls > u.failAfter {
		return domain.FileRef{}, errors.New("blob store unreachable")
	}
	return domain.FileRef{ID: file.Name, Name: file.Name, Type: "text/plain", URL: "local://" + file.Name}, nil
}

func newTestService(t *testing.T, uploader uploads.Uploader) (*ChatService, *runtime.ChatSystem) {
	t.Helper()
	engine := runtime.NewChatSystem(slog.New(slog.DiscardHandler), nil, 64)
	return NewChatService(engine, uploader), engine
}

func memberChannel(t *testing.T, service *ChatService, members ...domain.UserID) domain.Channel {
	t.Helper()
	req := require.New(t)
	channel, err := service.CreateChannel(domain.CreateChannelCommand{
		Name:    "general",
		Type:    domain.ChannelTypeChannel,
		Members: members,
	})
	req.NoError(err)
	return channel
}

func TestChatService_CreateChannel_Requires_Name_And_Members(t *testing.T) {
	req := require.New(t)
	service, _ := newTestService(t, nil)

	// A regular channel without a name is rejected at the boundary
	_, err := service.CreateChannel(domain.CreateChannelCommand{
		Type:    domain.ChannelTypeChannel,
		Members: []domain.UserID{domain.NewUserID()},
	})
	req.ErrorIs(err, coreerrors.ErrInvalidMembers)

	// A dm needs no name
	_, err = service.CreateChannel(domain.CreateChannelCommand{
		Type:    domain.ChannelTypeDM,
		Members: []domain.UserID{domain.NewUserID(), domain.NewUserID()},
	})
	req.NoError(err)

	// No members at all is rejected before the engine is touched
	_, err = service.CreateChannel(domain.CreateChannelCommand{
		Name: "empty",
		Type: domain.ChannelTypeChannel,
	})
	req.ErrorIs(err, coreerrors.ErrInvalidMembers)
}

func TestChatService_SendMessage_Validates_Command(t *testing.T) {
	req := require.New(t)
	service, _ := newTestService(t, nil)

	_, err := service.SendMessage(domain.SendMessageCommand{Content: "no channel, no user"})

	req.Error(err)
}

func TestChatService_SendMessageUploading_Attaches_Resolved_Files(t *testing.T) {
	req := require.New(t)
	uploader := &stubUploader{failAfter: 10}
	service, _ := newTestService(t, uploader)
	alice := domain.NewUserID()
	channel := memberChannel(t, service, alice)

	msg, err := service.SendMessageUploading(context.Background(), domain.SendMessageCommand{
		ChannelID: channel.ID,
		UserID:    alice,
		Content:   "see attached",
	}, []uploads.RawFile{
		{Name: "a.txt", Content: []byte("alpha")},
		{Name: "b.txt", Content: []byte("beta")},
	})

	req.NoError(err)
	req.Len(msg.Files, 2)
	req.Equal("a.txt", msg.Files[0].Name)
	req.Equal(2, uploader.calls)
}

func TestChatService_SendMessageUploading_Failed_Upload_Leaves_No_Trace(t *testing.T) {
	req := require.New(t)
	// The second of three uploads fails
	uploader := &stubUploader{failAfter: 1}
	service, engine := newTestService(t, uploader)
	alice := domain.NewUserID()
	channel := memberChannel(t, service, alice)

	sub, err := engine.ObserveChannel(channel.ID)
	req.NoError(err)
	defer sub.Cancel()
	req.Empty(<-sub.C())

	_, err = service.SendMessageUploading(context.Background(), domain.SendMessageCommand{
		ChannelID: channel.ID,
		UserID:    alice,
		Content:   "doomed",
	}, []uploads.RawFile{
		{Name: "a.txt", Content: []byte("alpha")},
		{Name: "b.txt", Content: []byte("beta")},
		{Name: "c.txt", Content: []byte("gamma")},
	})

	// Then the whole send is aborted atomically
	req.ErrorIs(err, coreerrors.ErrUploadFailed)
	messages, err := service.ChannelMessages(channel.ID)
	req.NoError(err)
	req.Empty(messages, "no partial message may be committed")
	select {
	case <-sub.C():
		req.Fail("subscribers must not be notified of a failed send")
	default:
	}
}

func TestChatService_SendMessageUploading_Canceled_Context_Aborts(t *testing.T) {
	req := require.New(t)
	service, _ := newTestService(t, uploads.NewLocalUploader("local://files", slog.New(slog.DiscardHandler)))
	alice := domain.NewUserID()
	channel := memberChannel(t, service, alice)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.SendMessageUploading(ctx, domain.SendMessageCommand{
		ChannelID: channel.ID,
		UserID:    alice,
		Content:   "too late",
	}, []uploads.RawFile{{Name: "a.txt", Content: []byte("alpha")}})

	req.ErrorIs(err, coreerrors.ErrUploadFailed)
	messages, err := service.ChannelMessages(channel.ID)
	req.NoError(err)
	req.Empty(messages)
}

func TestChatService_Conversation_Flow_End_To_End(t *testing.T) {
	req := require.New(t)
	service, _ := newTestService(t, nil)
	u1 := domain.NewUserID()
	u2 := domain.NewUserID()

	// Given a channel with two members
	channel, err := service.CreateChannel(domain.CreateChannelCommand{
		Name:    "general",
		Type:    domain.ChannelTypeChannel,
		Members: []domain.UserID{u1, u2},
	})
	req.NoError(err)

	// When u1 opens the conversation
	hello, err := service.SendMessage(domain.SendMessageCommand{
		ChannelID: channel.ID,
		UserID:    u1,
		Content:   "hello",
	})
	req.NoError(err)

	messages, err := service.ChannelMessages(channel.ID)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(u1, messages[0].UserID)
	req.Equal("hello", messages[0].Content)
	req.False(messages[0].InThread())

	// And u2 replies in a thread anchored to that message
	thread, err := service.CreateThread(domain.CreateThreadCommand{
		ChannelID:       channel.ID,
		ParentMessageID: hello.ID,
	})
	req.NoError(err)
	req.Equal(channel.ID, thread.ChannelID)
	req.Equal(hello.ID, thread.ParentMessageID)

	_, err = service.SendMessage(domain.SendMessageCommand{
		ChannelID: channel.ID,
		UserID:    u2,
		Content:   "reply",
		ThreadID:  thread.ID,
	})
	req.NoError(err)

	// Then the thread holds the reply and the channel holds both messages
	threadMessages, err := service.ThreadMessages(thread.ID)
	req.NoError(err)
	req.Len(threadMessages, 1)
	req.Equal(u2, threadMessages[0].UserID)
	req.Equal("reply", threadMessages[0].Content)

	messages, err = service.ChannelMessages(channel.ID)
	req.NoError(err)
	req.Len(messages, 2)
}

func TestChatService_ToggleReaction_Requires_Emoji(t *testing.T) {
	req := require.New(t)
	service, _ := newTestService(t, nil)

	_, err := service.ToggleReaction(domain.ToggleReactionCommand{
		MessageID: domain.NewMessageID(),
		UserID:    domain.NewUserID(),
	})

	req.Error(err)
}
