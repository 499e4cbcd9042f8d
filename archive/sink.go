package archive

import (
	"context"
	"log/slog"

	"chat-core/domain/event"
)

// Sink adapts the archive to the fanout pipeline.
type Sink struct {
	archive IMessageArchive
	log     *slog.Logger
}

func NewSink(archive IMessageArchive, log *slog.Logger) *Sink {
	return &Sink{archive: archive, log: log}
}

func (s *Sink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}
	return s.archive.Store(ArchivedMessage{
		ID:        evt.MessageID,
		ChannelID: evt.ChannelID,
		ThreadID:  evt.ThreadID,
		UserID:    evt.Author,
		Content:   evt.Content,
		Seq:       evt.Seq,
		At:        evt.At,
		Files:     evt.Files,
	})
}
