package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"chat-core/archive"
	"chat-core/internal"
)

// inspect prints the message archive as a table, read-only. Pass a channel
// id as the first argument to narrow the scan to one channel.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while a running chatd holds the lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	prefix := "msg:"
	if len(os.Args) > 1 {
		prefix = fmt.Sprintf("msg:%s:", os.Args[1])
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Seq", "Channel", "Thread", "Author", "At", "Content", "Files"})

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg archive.ArchivedMessage
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				table.Append([]string{
					fmt.Sprintf("%d", msg.Seq),
					shorten(string(msg.ChannelID)),
					shorten(string(msg.ThreadID)),
					shorten(string(msg.UserID)),
					msg.At.Format("2006-01-02 15:04:05"),
					msg.Content,
					fmt.Sprintf("%d", len(msg.Files)),
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	color.Green.Printf("Archive scan %q: %d messages\n", prefix, count)
	table.Render()
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
