package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"

	"chat-core/domain"
	"chat-core/domain/event"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewIndex(writer, slog.New(slog.DiscardHandler))
}

func posted(channelID domain.ChannelID, content string) event.MessagePosted {
	return event.MessagePosted{
		MessageID: domain.NewMessageID(),
		ChannelID: channelID,
		Author:    domain.NewUserID(),
		Content:   content,
		At:        time.Now().UTC(),
	}
}

func TestIndex_Search_Finds_Indexed_Message(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	channelID := domain.NewChannelID()

	evt := posted(channelID, "the deployment failed on friday evening")
	req.NoError(index.Consume(context.Background(), evt))
	req.NoError(index.Consume(context.Background(), posted(channelID, "lunch at noon")))

	ids, err := index.Search(context.Background(), channelID, "deployment", 10)

	req.NoError(err)
	req.Equal([]domain.MessageID{evt.MessageID}, ids)
}

func TestIndex_Search_Is_Scoped_To_The_Channel(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	channelA := domain.NewChannelID()
	channelB := domain.NewChannelID()

	inA := posted(channelA, "incident report ready")
	req.NoError(index.Consume(context.Background(), inA))
	req.NoError(index.Consume(context.Background(), posted(channelB, "incident closed")))

	ids, err := index.Search(context.Background(), channelA, "incident", 10)

	req.NoError(err)
	req.Equal([]domain.MessageID{inA.MessageID}, ids)
}

func TestIndex_Search_Honors_The_Limit(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	channelID := domain.NewChannelID()

	for range 5 {
		req.NoError(index.Consume(context.Background(), posted(channelID, "build broken again")))
	}

	ids, err := index.Search(context.Background(), channelID, "broken", 2)

	req.NoError(err)
	req.Len(ids, 2)
}

func TestIndex_Ignores_Non_Message_Events(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	channelID := domain.NewChannelID()

	req.NoError(index.Consume(context.Background(), event.ChannelCreated{
		ChannelID: channelID,
		Name:      "general",
	}))

	ids, err := index.Search(context.Background(), channelID, "general", 10)

	req.NoError(err)
	req.Empty(ids)
}

func TestIndex_No_Match_Yields_Empty_Result(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	channelID := domain.NewChannelID()

	req.NoError(index.Consume(context.Background(), posted(channelID, "quiet day")))

	ids, err := index.Search(context.Background(), channelID, "storm", 10)

	req.NoError(err)
	req.Empty(ids)
}
