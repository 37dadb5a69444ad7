package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	defaultSyncURL   = "wss://sync.automerge.org"
	defaultName      = "GPT-4o"
	defaultInterval  = 15 * time.Second
	defaultEmptyPoll = 5 * time.Second
	defaultSyncWait  = 2 * time.Second
)

// Duration is a time.Duration that unmarshals from JSON strings like "15s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config holds initialization parameters for the collaborative bot.
type Config struct {
	DocID        string   `json:"doc_id,omitempty"`
	SyncURL      string   `json:"sync_url,omitempty"`
	Name         string   `json:"name,omitempty"`
	EditInterval Duration `json:"edit_interval,omitempty"`
	EmptyPoll    Duration `json:"empty_poll,omitempty"`
	SyncWait     Duration `json:"sync_wait,omitempty"`
}

// DefaultConfig returns a Config with the reference defaults: the public
// sync server, a 15s edit cadence, a 5s empty-document poll, and a 2s
// initial-sync window.
func DefaultConfig() Config {
	return Config{
		SyncURL:      defaultSyncURL,
		Name:         defaultName,
		EditInterval: Duration(defaultInterval),
		EmptyPoll:    Duration(defaultEmptyPoll),
		SyncWait:     Duration(defaultSyncWait),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.DocID != "" {
		c.DocID = source.DocID
	}
	if source.SyncURL != "" {
		c.SyncURL = source.SyncURL
	}
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.EditInterval > 0 {
		c.EditInterval = source.EditInterval
	}
	if source.EmptyPoll > 0 {
		c.EmptyPoll = source.EmptyPoll
	}
	if source.SyncWait > 0 {
		c.SyncWait = source.SyncWait
	}
}

// LoadConfig reads a JSON config file and merges it over the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
