package bot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spork-collab/spork/bot"
)

func TestDefaultConfig(t *testing.T) {
	cfg := bot.DefaultConfig()
	if cfg.SyncURL != "wss://sync.automerge.org" {
		t.Errorf("SyncURL = %q", cfg.SyncURL)
	}
	if time.Duration(cfg.EditInterval) != 15*time.Second {
		t.Errorf("EditInterval = %v, want 15s", time.Duration(cfg.EditInterval))
	}
	if time.Duration(cfg.EmptyPoll) != 5*time.Second {
		t.Errorf("EmptyPoll = %v, want 5s", time.Duration(cfg.EmptyPoll))
	}
	if time.Duration(cfg.SyncWait) != 2*time.Second {
		t.Errorf("SyncWait = %v, want 2s", time.Duration(cfg.SyncWait))
	}
	if cfg.DocID != "" {
		t.Errorf("DocID = %q, want empty (must be provided)", cfg.DocID)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := bot.DefaultConfig()
	cfg.Merge(&bot.Config{
		DocID:        "automerge:abc",
		EditInterval: bot.Duration(3 * time.Second),
	})

	if cfg.DocID != "automerge:abc" {
		t.Errorf("DocID = %q", cfg.DocID)
	}
	if time.Duration(cfg.EditInterval) != 3*time.Second {
		t.Errorf("EditInterval = %v, want 3s", time.Duration(cfg.EditInterval))
	}
	// Fields absent from the source keep their defaults.
	if cfg.SyncURL != "wss://sync.automerge.org" {
		t.Errorf("SyncURL = %q, want default preserved", cfg.SyncURL)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"doc_id": "automerge:from-file",
		"name": "Loop Bot",
		"edit_interval": "30s"
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file failed: %v", err)
	}

	cfg, err := bot.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DocID != "automerge:from-file" {
		t.Errorf("DocID = %q", cfg.DocID)
	}
	if cfg.Name != "Loop Bot" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if time.Duration(cfg.EditInterval) != 30*time.Second {
		t.Errorf("EditInterval = %v, want 30s", time.Duration(cfg.EditInterval))
	}
	if time.Duration(cfg.EmptyPoll) != 5*time.Second {
		t.Errorf("EmptyPoll = %v, want default 5s", time.Duration(cfg.EmptyPoll))
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := bot.LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadConfig accepted a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"edit_interval": "soon"}`), 0o644)
	if _, err := bot.LoadConfig(path); err == nil {
		t.Error("LoadConfig accepted an unparseable duration")
	}
}
