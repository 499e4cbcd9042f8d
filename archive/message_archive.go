//go:generate go run go.uber.org/mock/mockgen -source=message_archive.go -destination=../mocks/mock_message_archive.go -package=mocks

// Package archive persists committed messages to BadgerDB as an
// observability side effect. It is a permanent sink behind the fanout
// worker, not the authoritative store: the in-memory core never reads it
// back for its own operations.
package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-core/domain"
)

type IMessageArchive interface {
	Store(msg ArchivedMessage) error
	Messages(channelID domain.ChannelID, cursor *string) ([]ArchivedMessage, *string, error)
}

// ArchivedMessage is the durable representation of a committed message.
// Values are JSON; the key carries the ordering.
type ArchivedMessage struct {
	ID        domain.MessageID `json:"id"`
	ChannelID domain.ChannelID `json:"channel_id"`
	ThreadID  domain.ThreadID  `json:"thread_id,omitempty"`
	UserID    domain.UserID    `json:"user_id"`
	Content   string           `json:"content"`
	Seq       uint64           `json:"seq"`
	At        time.Time        `json:"at"`
	Files     []domain.FileRef `json:"files,omitempty"`
}

type MessageArchive struct {
	db    *badger.DB
	log   *slog.Logger
	limit *int
}

func NewMessageArchive(db *badger.DB, log *slog.Logger, limit *int) MessageArchive {
	return MessageArchive{db: db, log: log, limit: limit}
}

// Store persists a message. The key is "msg:{channel}:{seq_padded}:{id}":
//  1. The 19-digit zero-padded sequence makes lexicographic order equal
//     commit order within a channel.
//  2. The message id disambiguates keys defensively; sequences are unique
//     per channel already.
func (a MessageArchive) Store(msg ArchivedMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s", msg.ChannelID, msg.Seq, msg.ID)
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Messages pages through a channel's archive, newest first, using a prefix
// scan in reverse. The returned cursor resumes after the last key of the
// page, or is nil when the scan is exhausted; the page size is the
// configured limit (everything when nil).
func (a MessageArchive) Messages(channelID domain.ChannelID, cursor *string) ([]ArchivedMessage, *string, error) {
	var byteMessages [][]byte
	var lastKey string

	err := a.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", channelID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible sequence, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if a.limit != nil && len(byteMessages) == *a.limit {
				a.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *a.limit))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(byteMessages) == 0 {
		return nil, nil, nil
	}

	messages := make([]ArchivedMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		var msg ArchivedMessage
		if err := json.Unmarshal(b, &msg); err != nil {
			return nil, nil, err
		}
		messages = append(messages, msg)
	}
	return messages, &lastKey, nil
}
