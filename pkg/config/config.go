package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// orderedKeys lists the config keys in TOML section order.
var orderedKeys = []string{
	"voice.listen",
	"voice.public_url",
	"voice.forward_number",
	"voice.caller_id",
	"voice.language",
	"voice.voice",
	"voice.token_secret",
	"api.listen",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"storage.sheets_spreadsheet_id",
	"storage.sheets_credentials_file",
	"storage.sheets_sheet",
	"knowledge.path",
	"eventstream.kafka_brokers",
	"eventstream.kafka_topic",
	"worker.num_workers",
	"worker.queue_size",
	"worker.upsert_timeout",
}

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .praxisvoice/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	out := make([]string, 0, len(orderedKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// IsSecretKey reports whether the value of key should be masked in listings.
func IsSecretKey(key string) bool {
	return key == "voice.token_secret" || key == "storage.postgres_dsn"
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target
// .praxisvoice/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config.
// Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Voice.Listen == "" {
		cfg.Voice.Listen = defaults.Voice.Listen
	}
	if cfg.Voice.Language == "" {
		cfg.Voice.Language = defaults.Voice.Language
	}
	if cfg.Voice.Voice == "" {
		cfg.Voice.Voice = defaults.Voice.Voice
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}

	if cfg.EventStream.KafkaTopic == "" {
		cfg.EventStream.KafkaTopic = defaults.EventStream.KafkaTopic
	}

	if cfg.Worker.NumWorkers == 0 {
		cfg.Worker.NumWorkers = defaults.Worker.NumWorkers
	}
	if cfg.Worker.QueueSize == 0 {
		cfg.Worker.QueueSize = defaults.Worker.QueueSize
	}
	if cfg.Worker.UpsertTimeout == "" {
		cfg.Worker.UpsertTimeout = defaults.Worker.UpsertTimeout
	}
}

// SaveConfig persists the configuration to config.toml in the target .praxisvoice/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	if cfg.Worker.UpsertTimeout != "" {
		if err := validateDuration(cfg.Worker.UpsertTimeout); err != nil {
			return nil, fmt.Errorf("invalid worker.upsert_timeout: %w", err)
		}
	}

	return cfg, nil
}

// KafkaBrokerList splits the comma-separated broker list.
func (e EventStreamConfig) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(e.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Timeout returns the per-job timeout, falling back to the default for
// unparsable values.
func (w WorkerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(w.UpsertTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultUpsertTimeout)
	}
	return d
}

func validateDuration(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", v)
	}
	return nil
}
