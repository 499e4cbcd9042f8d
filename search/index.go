// Package search maintains a Bluge full-text index over committed message
// content. Like the archive, it is a permanent sink behind the fanout
// worker; queries return message ids the caller resolves against the core.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"chat-core/domain"
	"chat-core/domain/event"
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, log *slog.Logger) *Index {
	return &Index{writer: writer, log: log}
}

// Consume indexes posted messages; other events are ignored.
func (i *Index) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}

	doc := bluge.NewDocument(string(evt.MessageID)).
		AddField(bluge.NewTextField("content", evt.Content).StoreValue()).
		AddField(bluge.NewKeywordField("channel_id", string(evt.ChannelID)).StoreValue()).
		AddField(bluge.NewKeywordField("author", string(evt.Author)).StoreValue())

	return i.writer.Update(doc.ID(), doc)
}

// Search returns the ids of the best-matching messages in a channel for
// the given term, at most limit of them.
func (i *Index) Search(ctx context.Context, channelID domain.ChannelID, term string, limit int) ([]domain.MessageID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Error("Failed to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(term).SetField("content")).
		AddMust(bluge.NewTermQuery(string(channelID)).SetField("channel_id"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []domain.MessageID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, domain.MessageID(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
