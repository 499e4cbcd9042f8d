// Package runtime coordinates the chat core: it owns the authoritative
// stores, serializes mutations, and pushes committed snapshots to
// subscribers and permanent sinks. Business rules live in the stores and
// the domain; transport and UI live outside the module entirely.
package runtime

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"chat-core/moderation"
	"chat-core/store"
)

// ChatSystem is the single owner of channel, message, and reaction state.
// All mutations are serialized by one mutex, which keeps every ordering
// invariant trivially correct, including cross-entity ones such as thread
// creation racing an append on the parent message. Reads go straight to
// the stores and always observe committed state.
//
// For each successful mutation, affected subscribers receive their updated
// snapshot before the mutating call returns. Domain events additionally
// flow into a buffered channel drained by the EventFanout worker for the
// permanent sinks; that leg is best-effort and never blocks a mutation.
type ChatSystem struct {
	mu        sync.Mutex
	log       *slog.Logger
	channels  *store.ChannelRegistry
	messages  *store.MessageStore
	reactions *store.ReactionLedger
	bus       *Bus
	moderator *moderation.Moderator
	events    chan event.DomainEvent
}

func NewChatSystem(log *slog.Logger, moderator *moderation.Moderator, bufferSize int) *ChatSystem {
	return &ChatSystem{
		log:       log,
		channels:  store.NewChannelRegistry(),
		messages:  store.NewMessageStore(),
		reactions: store.NewReactionLedger(),
		bus:       NewBus(),
		moderator: moderator,
		events:    make(chan event.DomainEvent, bufferSize),
	}
}

// Events exposes the committed-event stream consumed by the EventFanout
// worker.
func (c *ChatSystem) Events() <-chan event.DomainEvent {
	return c.events
}

// CreateChannel registers a channel and notifies registry subscribers.
// Creating an existing dm pair returns the existing channel without a
// notification cycle.
func (c *ChatSystem) CreateChannel(cmd domain.CreateChannelCommand) (domain.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel, created, err := c.channels.CreateChannel(cmd)
	if err != nil {
		return domain.Channel{}, err
	}
	if !created {
		return channel, nil
	}

	c.messages.TrackChannel(channel.ID)
	c.bus.PublishRegistry(c.channels.ListChannels())
	c.emit(event.ChannelCreated{
		ChannelID: channel.ID,
		Name:      channel.Name,
		Type:      channel.Type,
		Members:   channel.Members.Sorted(),
		At:        channel.CreatedAt,
	})
	return channel, nil
}

// CreateThread anchors a thread to a parent message, idempotently. The
// parent must exist and belong to the given channel.
func (c *ChatSystem) CreateThread(cmd domain.CreateThreadCommand) (domain.Thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.channels.Channel(cmd.ChannelID); err != nil {
		return domain.Thread{}, err
	}
	parent, err := c.messages.Get(cmd.ParentMessageID)
	if err != nil {
		return domain.Thread{}, err
	}
	if parent.ChannelID != cmd.ChannelID {
		return domain.Thread{}, errors.ErrMessageNotFound
	}

	thread, created, err := c.channels.CreateThread(cmd.ChannelID, cmd.ParentMessageID)
	if err != nil {
		return domain.Thread{}, err
	}
	if !created {
		return thread, nil
	}

	c.messages.TrackThread(thread.ID, thread.ChannelID)
	c.bus.PublishRegistry(c.channels.ListChannels())
	c.emit(event.ThreadCreated{
		ChannelID:       thread.ChannelID,
		ThreadID:        thread.ID,
		ParentMessageID: thread.ParentMessageID,
		At:              time.Now().UTC(),
	})
	return thread, nil
}

// SendMessage validates and commits a message, then notifies channel (and
// thread, if any) subscribers. Files must already be resolved by the
// upload collaborator; the engine performs no I/O.
func (c *ChatSystem) SendMessage(cmd domain.SendMessageCommand) (domain.Message, error) {
	if strings.TrimSpace(cmd.Content) == "" && len(cmd.Files) == 0 {
		return domain.Message{}, errors.ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	member, err := c.channels.IsMember(cmd.ChannelID, cmd.UserID)
	if err != nil {
		return domain.Message{}, err
	}
	if !member {
		return domain.Message{}, errors.ErrNotAMember
	}

	content := cmd.Content
	var censoredWords []string
	if c.moderator != nil {
		content, censoredWords = c.moderator.Censor(content)
	}

	msg, err := c.messages.Append(domain.Message{
		ChannelID: cmd.ChannelID,
		ThreadID:  cmd.ThreadID,
		UserID:    cmd.UserID,
		Content:   content,
		Files:     cmd.Files,
	})
	if err != nil {
		return domain.Message{}, err
	}

	c.bus.PublishChannel(msg.ChannelID, c.channelSnapshot(msg.ChannelID))
	if msg.InThread() {
		c.bus.PublishThread(msg.ThreadID, c.threadSnapshot(msg.ThreadID))
	}
	c.emit(event.MessagePosted{
		MessageID:     msg.ID,
		ChannelID:     msg.ChannelID,
		ThreadID:      msg.ThreadID,
		Author:        msg.UserID,
		Content:       msg.Content,
		Seq:           msg.Seq,
		Files:         msg.Files,
		At:            msg.CreatedAt,
		Lang:          moderation.DetectLang(msg.Content),
		CensoredWords: censoredWords,
	})
	return msg, nil
}

// ToggleReaction flips the user's reaction on a message and notifies the
// owning channel and thread subscribers with reaction-bearing snapshots.
func (c *ChatSystem) ToggleReaction(cmd domain.ToggleReactionCommand) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, err := c.messages.Get(cmd.MessageID)
	if err != nil {
		return false, err
	}
	member, err := c.channels.IsMember(msg.ChannelID, cmd.UserID)
	if err != nil {
		return false, err
	}
	if !member {
		return false, errors.ErrNotAMember
	}

	applied := c.reactions.Toggle(cmd.MessageID, cmd.UserID, cmd.Emoji)

	c.bus.PublishChannel(msg.ChannelID, c.channelSnapshot(msg.ChannelID))
	if msg.InThread() {
		c.bus.PublishThread(msg.ThreadID, c.threadSnapshot(msg.ThreadID))
	}
	c.emit(event.ReactionToggled{
		MessageID: cmd.MessageID,
		ChannelID: msg.ChannelID,
		ThreadID:  msg.ThreadID,
		UserID:    cmd.UserID,
		Emoji:     cmd.Emoji,
		Applied:   applied,
		At:        time.Now().UTC(),
	})
	return applied, nil
}

// AddMember joins a user to a channel and notifies registry subscribers
// when membership actually changed.
func (c *ChatSystem) AddMember(cmd domain.MembershipCommand) error {
	return c.changeMembership(cmd, true)
}

// RemoveMember removes a user from a channel. An emptied channel stays
// listed; deletion is out of scope.
func (c *ChatSystem) RemoveMember(cmd domain.MembershipCommand) error {
	return c.changeMembership(cmd, false)
}

func (c *ChatSystem) changeMembership(cmd domain.MembershipCommand, join bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		changed bool
		err     error
	)
	if join {
		changed, err = c.channels.AddMember(cmd.ChannelID, cmd.UserID)
	} else {
		changed, err = c.channels.RemoveMember(cmd.ChannelID, cmd.UserID)
	}
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	// A reaction must never name a non-member: removal purges the user
	// from every reaction set of the channel's messages, and subscribers
	// whose snapshots embedded those reactions get refreshed ones.
	if !join {
		affected := c.reactions.RemoveUser(c.messages.ChannelMessageIDs(cmd.ChannelID), cmd.UserID)
		if len(affected) > 0 {
			c.bus.PublishChannel(cmd.ChannelID, c.channelSnapshot(cmd.ChannelID))
			threads := make(map[domain.ThreadID]struct{})
			for _, messageID := range affected {
				msg, err := c.messages.Get(messageID)
				if err != nil || !msg.InThread() {
					continue
				}
				if _, seen := threads[msg.ThreadID]; seen {
					continue
				}
				threads[msg.ThreadID] = struct{}{}
				c.bus.PublishThread(msg.ThreadID, c.threadSnapshot(msg.ThreadID))
			}
		}
	}

	c.bus.PublishRegistry(c.channels.ListChannels())
	c.emit(event.MembershipChanged{
		ChannelID: cmd.ChannelID,
		UserID:    cmd.UserID,
		Joined:    join,
		At:        time.Now().UTC(),
	})
	return nil
}

// ObserveChannel subscribes to a channel's ordered message snapshots,
// replaying the current state immediately.
func (c *ChatSystem) ObserveChannel(id domain.ChannelID) (*Subscription[[]domain.Message], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.channels.Channel(id); err != nil {
		return nil, err
	}
	return c.bus.SubscribeChannel(id, c.channelSnapshot(id)), nil
}

// ObserveThread subscribes to a thread's ordered message snapshots.
func (c *ChatSystem) ObserveThread(id domain.ThreadID) (*Subscription[[]domain.Message], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.channels.Thread(id); err != nil {
		return nil, err
	}
	return c.bus.SubscribeThread(id, c.threadSnapshot(id)), nil
}

// ObserveChat subscribes to the channel registry: every creation or
// membership change delivers the full ordered channel list.
func (c *ChatSystem) ObserveChat() *Subscription[[]domain.Channel] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus.SubscribeRegistry(c.channels.ListChannels())
}

// ChannelMessages returns the committed channel sequence, oldest first,
// with reactions embedded.
func (c *ChatSystem) ChannelMessages(id domain.ChannelID) ([]domain.Message, error) {
	if _, err := c.channels.Channel(id); err != nil {
		return nil, err
	}
	return c.channelSnapshot(id), nil
}

// ThreadMessages returns the committed thread sequence, oldest first.
func (c *ChatSystem) ThreadMessages(id domain.ThreadID) ([]domain.Message, error) {
	if _, err := c.channels.Thread(id); err != nil {
		return nil, err
	}
	return c.threadSnapshot(id), nil
}

func (c *ChatSystem) ListChannels() []domain.Channel {
	return c.channels.ListChannels()
}

func (c *ChatSystem) Channel(id domain.ChannelID) (domain.Channel, error) {
	return c.channels.Channel(id)
}

func (c *ChatSystem) channelSnapshot(id domain.ChannelID) []domain.Message {
	return c.withReactions(c.messages.ChannelMessages(id))
}

func (c *ChatSystem) threadSnapshot(id domain.ThreadID) []domain.Message {
	return c.withReactions(c.messages.ThreadMessages(id))
}

func (c *ChatSystem) withReactions(messages []domain.Message) []domain.Message {
	for i := range messages {
		messages[i].Reactions = c.reactions.Groups(messages[i].ID)
	}
	return messages
}

// emit hands a committed event to the permanent-sink pipeline without ever
// blocking the mutation path.
func (c *ChatSystem) emit(e event.DomainEvent) {
	select {
	case c.events <- e:
	default:
		c.log.Warn("Event channel full, dropping sink event", "channel", e.Channel())
	}
}
