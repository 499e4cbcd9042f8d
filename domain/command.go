package domain

// Commands are the mutation requests accepted by the chat service.
// Validation tags are checked at the service boundary before any state is
// touched.

type CreateChannelCommand struct {
	Name        string `validate:"required_if=Type channel"`
	Type        ChannelType
	Members     []UserID `validate:"min=1"`
	Description string
}

type CreateThreadCommand struct {
	ChannelID       ChannelID `validate:"required"`
	ParentMessageID MessageID `validate:"required"`
}

type SendMessageCommand struct {
	ChannelID ChannelID `validate:"required"`
	UserID    UserID    `validate:"required"`
	Content   string
	ThreadID  ThreadID
	Files     []FileRef
}

type ToggleReactionCommand struct {
	MessageID MessageID `validate:"required"`
	UserID    UserID    `validate:"required"`
	Emoji     string    `validate:"required"`
}

type MembershipCommand struct {
	ChannelID ChannelID `validate:"required"`
	UserID    UserID    `validate:"required"`
}
