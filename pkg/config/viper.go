package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable read by praxisvoice.
const EnvPrefix = "PRAXISVOICE"

// envAliases are environment variables of the original phone line setup,
// still honored next to their PRAXISVOICE_ names.
var envAliases = map[string]string{
	"voice.forward_number": "FORWARD_NUMBER",
	"voice.caller_id":      "TWILIO_CALLER_ID",
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the PRAXISVOICE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (PRAXISVOICE_VOICE_LISTEN, FORWARD_NUMBER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// FromViper resolves the effective Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Voice: VoiceConfig{
			Listen:        v.GetString("voice.listen"),
			PublicURL:     v.GetString("voice.public_url"),
			ForwardNumber: v.GetString("voice.forward_number"),
			CallerID:      v.GetString("voice.caller_id"),
			Language:      v.GetString("voice.language"),
			Voice:         v.GetString("voice.voice"),
			TokenSecret:   v.GetString("voice.token_secret"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Storage: StorageConfig{
			SQLitePath:            v.GetString("storage.sqlite_path"),
			PostgresDSN:           v.GetString("storage.postgres_dsn"),
			SheetsSpreadsheetID:   v.GetString("storage.sheets_spreadsheet_id"),
			SheetsCredentialsFile: v.GetString("storage.sheets_credentials_file"),
			SheetsSheet:           v.GetString("storage.sheets_sheet"),
		},
		Knowledge: KnowledgeConfig{
			Path: v.GetString("knowledge.path"),
		},
		EventStream: EventStreamConfig{
			KafkaBrokers: v.GetString("eventstream.kafka_brokers"),
			KafkaTopic:   v.GetString("eventstream.kafka_topic"),
		},
		Worker: WorkerConfig{
			NumWorkers:    v.GetUint("worker.num_workers"),
			QueueSize:     v.GetUint("worker.queue_size"),
			UpsertTimeout: v.GetString("worker.upsert_timeout"),
		},
	}

	if cfg.Worker.UpsertTimeout != "" {
		if err := validateDuration(cfg.Worker.UpsertTimeout); err != nil {
			return nil, fmt.Errorf("invalid worker.upsert_timeout: %w", err)
		}
	}
	applyDefaults(cfg)

	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, key := range orderedKeys {
		info := configKeys[key]
		v.SetDefault(key, info.get(d))
	}
}
