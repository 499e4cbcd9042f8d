package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-core/archive"
	"chat-core/contract"
	"chat-core/internal"
	"chat-core/moderation"
	"chat-core/observability"
	"chat-core/projection"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/search"
	"chat-core/services"
	"chat-core/uploads"
)

//go:embed censored/*
var censoredFolder embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages their lifecycle, and centralizes
// error reporting so every defer executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Databases (BadgerDB archive + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("archive opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge index...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation
	var moderator *moderation.Moderator
	if config.EnableModeration {
		replacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		data, err := runtime.NewWordListLoader(censoredFolder).LoadAll("censored")
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("%d censored files loaded [%s]",
			len(data.Languages), strings.Join(data.Languages, ",")))
		log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

		m, err := moderation.NewModerator(data.Words, replacement, log)
		if err != nil {
			return err
		}
		moderator = &m
	}

	// 4. Core engine, sinks, and public service
	monitor := observability.NewMonitor(log)
	engine := runtime.NewChatSystem(log, moderator, config.BufferSize)
	messageArchive := archive.NewMessageArchive(db, log, config.LimitMessages)
	timeline := projection.NewTimeline()
	sinks := []contract.EventSink{
		archive.NewSink(messageArchive, log),
		search.NewIndex(blugeWriter, log),
		timeline,
		monitor,
	}

	uploader := uploads.NewLocalUploader(config.UploadBaseURL, log)
	var service services.IChatSystem = services.NewChatService(engine, uploader)
	log.Info(fmt.Sprintf("Chat service ready with %d channels", len(service.ListChannels())))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervision
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewEventFanout(log, engine.Events(), monitor, config.SinkTimeout, sinks...))
	sup.Add(workers.NewHealthMonitoring(log, monitor, timeline, config.HealthInterval))

	log.Info("Chat core started")
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
