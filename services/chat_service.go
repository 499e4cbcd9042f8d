//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"chat-core/domain"
	coreerrors "chat-core/errors"
	"chat-core/runtime"
	"chat-core/uploads"
)

var validate = validator.New()

// IChatSystem is the public contract consumed by external view
// collaborators (channel list, message list, composer).
type IChatSystem interface {
	CreateChannel(cmd domain.CreateChannelCommand) (domain.Channel, error)
	CreateThread(cmd domain.CreateThreadCommand) (domain.Thread, error)
	SendMessage(cmd domain.SendMessageCommand) (domain.Message, error)
	SendMessageUploading(ctx context.Context, cmd domain.SendMessageCommand, files []uploads.RawFile) (domain.Message, error)
	ToggleReaction(cmd domain.ToggleReactionCommand) (bool, error)
	AddMember(cmd domain.MembershipCommand) error
	RemoveMember(cmd domain.MembershipCommand) error

	ObserveChannel(id domain.ChannelID) (*runtime.Subscription[[]domain.Message], error)
	ObserveThread(id domain.ThreadID) (*runtime.Subscription[[]domain.Message], error)
	ObserveChat() *runtime.Subscription[[]domain.Channel]

	ChannelMessages(id domain.ChannelID) ([]domain.Message, error)
	ThreadMessages(id domain.ThreadID) ([]domain.Message, error)
	ListChannels() []domain.Channel
}

// ChatService fronts the engine with boundary validation and attachment
// resolution. Everything past this type runs without I/O.
type ChatService struct {
	engine   *runtime.ChatSystem
	uploader uploads.Uploader
}

func NewChatService(engine *runtime.ChatSystem, uploader uploads.Uploader) *ChatService {
	return &ChatService{engine: engine, uploader: uploader}
}

func (s *ChatService) CreateChannel(cmd domain.CreateChannelCommand) (domain.Channel, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Channel{}, fmt.Errorf("%w: %v", coreerrors.ErrInvalidMembers, err)
	}
	return s.engine.CreateChannel(cmd)
}

func (s *ChatService) CreateThread(cmd domain.CreateThreadCommand) (domain.Thread, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Thread{}, err
	}
	return s.engine.CreateThread(cmd)
}

// SendMessage commits a message whose attachments, if any, are already
// resolved FileRefs.
func (s *ChatService) SendMessage(cmd domain.SendMessageCommand) (domain.Message, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, err
	}
	return s.engine.SendMessage(cmd)
}

// SendMessageUploading resolves raw attachments through the upload
// collaborator first, then commits. A failed or canceled upload aborts the
// whole call before any state is touched: no message, no thread side
// effect, no notification.
func (s *ChatService) SendMessageUploading(ctx context.Context, cmd domain.SendMessageCommand, files []uploads.RawFile) (domain.Message, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, err
	}

	for _, file := range files {
		ref, err := s.uploader.Upload(ctx, file)
		if err != nil {
			return domain.Message{}, fmt.Errorf("%w: %s: %v", coreerrors.ErrUploadFailed, file.Name, err)
		}
		cmd.Files = append(cmd.Files, ref)
	}
	return s.engine.SendMessage(cmd)
}

func (s *ChatService) ToggleReaction(cmd domain.ToggleReactionCommand) (bool, error) {
	if err := validate.Struct(cmd); err != nil {
		return false, err
	}
	return s.engine.ToggleReaction(cmd)
}

func (s *ChatService) AddMember(cmd domain.MembershipCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	return s.engine.AddMember(cmd)
}

func (s *ChatService) RemoveMember(cmd domain.MembershipCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	return s.engine.RemoveMember(cmd)
}

func (s *ChatService) ObserveChannel(id domain.ChannelID) (*runtime.Subscription[[]domain.Message], error) {
	return s.engine.ObserveChannel(id)
}

func (s *ChatService) ObserveThread(id domain.ThreadID) (*runtime.Subscription[[]domain.Message], error) {
	return s.engine.ObserveThread(id)
}

func (s *ChatService) ObserveChat() *runtime.Subscription[[]domain.Channel] {
	return s.engine.ObserveChat()
}

func (s *ChatService) ChannelMessages(id domain.ChannelID) ([]domain.Message, error) {
	return s.engine.ChannelMessages(id)
}

func (s *ChatService) ThreadMessages(id domain.ThreadID) ([]domain.Message, error) {
	return s.engine.ThreadMessages(id)
}

func (s *ChatService) ListChannels() []domain.Channel {
	return s.engine.ListChannels()
}
