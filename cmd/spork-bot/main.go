// spork-bot joins a shared document as an AI collaborator: it watches the
// text, asks the suggestion provider for improvements, and applies them as
// minimal splices while broadcasting its cursor to other peers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spork-collab/spork/bot"
	"github.com/spork-collab/spork/doc"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to bot config JSON file (optional)")
		docID      = flag.String("doc", "", "Document ID to join, e.g. automerge:4xKg... (required unless set in config)")
		syncURL    = flag.String("sync-url", "", "Websocket sync server URL (overrides config)")
		name       = flag.String("name", "", "Display name for the bot's cursor (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := bot.DefaultConfig()
	if *configFile != "" {
		loaded, err := bot.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *docID != "" {
		cfg.DocID = *docID
	}
	if *syncURL != "" {
		cfg.SyncURL = *syncURL
	}
	if *name != "" {
		cfg.Name = *name
	}

	if cfg.DocID == "" {
		fmt.Fprintln(os.Stderr, "Usage: spork-bot -doc automerge:<id> [-sync-url <url>]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err := doc.RequirePrefix(cfg.DocID); err != nil {
		log.Fatalf("Invalid document ID: %v", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// The provider is built from OPENAI_API_KEY; a missing credential is a
	// startup failure, not a runtime one.
	b, err := bot.New(&cfg, bot.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := b.Run(ctx); err != nil {
		log.Fatalf("Bot run failed: %v", err)
	}
}
