// spork-mcp serves the document editing tools over MCP stdio. Point a
// tool-calling client at it, have the client call connect with a shared
// document ID, and edit away.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/spork-collab/spork/doc"
	"github.com/spork-collab/spork/toolserver"
)

func main() {
	var (
		syncURL  = flag.String("sync-url", "wss://sync.automerge.org", "Default websocket sync server URL")
		syncWait = flag.Duration("sync-wait", 2*time.Second, "Initial sync confirmation window after connect")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// stdout carries the MCP stream; everything else goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv := toolserver.New(doc.SyncConnector{
		DefaultURL: *syncURL,
		Wait:       *syncWait,
	}, logger)

	serveErr := srv.ServeStdio()

	// Release the session the same way on both exits.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	if serveErr != nil {
		log.Fatalf("MCP server failed: %v", serveErr)
	}
}
