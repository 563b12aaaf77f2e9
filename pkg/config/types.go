package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent praxisvoice configuration stored as
// config.toml in the .praxisvoice/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Voice       VoiceConfig       `toml:"voice"`
	API         APIConfig         `toml:"api"`
	Storage     StorageConfig     `toml:"storage"`
	Knowledge   KnowledgeConfig   `toml:"knowledge"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Worker      WorkerConfig      `toml:"worker"`
}

// VoiceConfig holds the webhook server and call-handling settings.
type VoiceConfig struct {
	Listen string `toml:"listen,omitempty"`

	// PublicURL is the externally reachable base URL the voice platform
	// calls back on. When empty, the request's own scheme and host are used.
	PublicURL string `toml:"public_url,omitempty"`

	// ForwardNumber is the practice number callers are transferred to.
	ForwardNumber string `toml:"forward_number,omitempty"`

	// CallerID is the number presented on transfers.
	CallerID string `toml:"caller_id,omitempty"`

	Language string `toml:"language,omitempty"`
	Voice    string `toml:"voice,omitempty"`

	// TokenSecret signs continuation tokens when set.
	TokenSecret string `toml:"token_secret,omitempty"`
}

// APIConfig holds inspection API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// StorageConfig selects the call log backend. The first configured backend
// wins in the order postgres, sheets, sqlite; the in-memory store is used
// otherwise.
type StorageConfig struct {
	SQLitePath            string `toml:"sqlite_path,omitempty"`
	PostgresDSN           string `toml:"postgres_dsn,omitempty"`
	SheetsSpreadsheetID   string `toml:"sheets_spreadsheet_id,omitempty"`
	SheetsCredentialsFile string `toml:"sheets_credentials_file,omitempty"`
	SheetsSheet           string `toml:"sheets_sheet,omitempty"`
}

// KnowledgeConfig points at an alternative knowledge base file.
type KnowledgeConfig struct {
	Path string `toml:"path,omitempty"`
}

// EventStreamConfig holds turn event publishing settings. Publishing is
// disabled without brokers.
type EventStreamConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// WorkerConfig sizes the background pool writing call logs and events.
type WorkerConfig struct {
	NumWorkers    uint   `toml:"num_workers,omitempty"`
	QueueSize     uint   `toml:"queue_size,omitempty"`
	UpsertTimeout string `toml:"upsert_timeout,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"voice.listen":         stringKey(func(c *Config) *string { return &c.Voice.Listen }),
	"voice.public_url":     stringKey(func(c *Config) *string { return &c.Voice.PublicURL }),
	"voice.forward_number": stringKey(func(c *Config) *string { return &c.Voice.ForwardNumber }),
	"voice.caller_id":      stringKey(func(c *Config) *string { return &c.Voice.CallerID }),
	"voice.language":       stringKey(func(c *Config) *string { return &c.Voice.Language }),
	"voice.voice":          stringKey(func(c *Config) *string { return &c.Voice.Voice }),
	"voice.token_secret":   stringKey(func(c *Config) *string { return &c.Voice.TokenSecret }),

	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"storage.sqlite_path":             stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn":            stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"storage.sheets_spreadsheet_id":   stringKey(func(c *Config) *string { return &c.Storage.SheetsSpreadsheetID }),
	"storage.sheets_credentials_file": stringKey(func(c *Config) *string { return &c.Storage.SheetsCredentialsFile }),
	"storage.sheets_sheet":            stringKey(func(c *Config) *string { return &c.Storage.SheetsSheet }),

	"knowledge.path": stringKey(func(c *Config) *string { return &c.Knowledge.Path }),

	"eventstream.kafka_brokers": stringKey(func(c *Config) *string { return &c.EventStream.KafkaBrokers }),
	"eventstream.kafka_topic":   stringKey(func(c *Config) *string { return &c.EventStream.KafkaTopic }),

	"worker.num_workers": uintKey("worker.num_workers", func(c *Config) *uint { return &c.Worker.NumWorkers }),
	"worker.queue_size":  uintKey("worker.queue_size", func(c *Config) *uint { return &c.Worker.QueueSize }),
	"worker.upsert_timeout": {
		get: func(c *Config) string { return c.Worker.UpsertTimeout },
		set: func(c *Config, v string) error {
			if err := validateDuration(v); err != nil {
				return fmt.Errorf("invalid value for worker.upsert_timeout: %w", err)
			}
			c.Worker.UpsertTimeout = v
			return nil
		},
	},
}
