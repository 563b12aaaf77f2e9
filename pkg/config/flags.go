package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g.
// --forward-number on "praxisvoice serve", "praxisvoice serve voice" and
// "praxisvoice simulate").
type Flag struct {
	// Name is the long flag name (e.g. "forward-number").
	Name string

	// Shorthand is the one-letter short flag (e.g. "f"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "voice.forward_number").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagVoiceListen   = "voice-listen"
	FlagAPIListen     = "api-listen"
	FlagPublicURL     = "public-url"
	FlagForwardNumber = "forward-number"
	FlagCallerID      = "caller-id"
	FlagTokenSecret   = "token-secret"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"
	FlagSheetsID      = "sheets-spreadsheet"
	FlagKnowledge     = "knowledge"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
	FlagWorkers       = "workers"
	FlagQueueSize     = "queue-size"

	// Standalone subcommand variants use "listen" as the flag name
	// but bind to different viper keys depending on the service.
	FlagVoiceListenStandalone = "voice-listen-standalone"
	FlagAPIListenStandalone   = "api-listen-standalone"
)

// Flags is the registry shared by all praxisvoice commands.
var Flags = FlagSet{
	FlagVoiceListen:           {Name: "voice-listen", Shorthand: "v", ViperKey: "voice.listen", Description: "Address for the voice webhook server to listen on"},
	FlagAPIListen:             {Name: "api-listen", Shorthand: "a", ViperKey: "api.listen", Description: "Address for the inspection API to listen on"},
	FlagVoiceListenStandalone: {Name: "listen", Shorthand: "l", ViperKey: "voice.listen", Description: "Address for the voice webhook server to listen on"},
	FlagAPIListenStandalone:   {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the inspection API to listen on"},
	FlagPublicURL:             {Name: "public-url", ViperKey: "voice.public_url", Description: "Public base URL the voice platform calls back on"},
	FlagForwardNumber:         {Name: "forward-number", Shorthand: "f", ViperKey: "voice.forward_number", Description: "Phone number callers are transferred to"},
	FlagCallerID:              {Name: "caller-id", ViperKey: "voice.caller_id", Description: "Caller id presented on transfers"},
	FlagTokenSecret:           {Name: "token-secret", ViperKey: "voice.token_secret", Description: "Secret signing continuation tokens"},
	FlagSQLite:                {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite call log database (default: in-memory)"},
	FlagPostgres:              {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string for the call log"},
	FlagSheetsID:              {Name: "sheets-spreadsheet", ViperKey: "storage.sheets_spreadsheet_id", Description: "Google Sheets spreadsheet id for the call log"},
	FlagKnowledge:             {Name: "knowledge", Shorthand: "k", ViperKey: "knowledge.path", Description: "Path to a knowledge base TOML file (default: built-in)"},
	FlagKafkaBrokers:          {Name: "kafka-brokers", ViperKey: "eventstream.kafka_brokers", Description: "Comma-separated Kafka brokers for turn events"},
	FlagKafkaTopic:            {Name: "kafka-topic", ViperKey: "eventstream.kafka_topic", Description: "Kafka topic for turn events"},
	FlagWorkers:               {Name: "workers", ViperKey: "worker.num_workers", Description: "Number of background log workers"},
	FlagQueueSize:             {Name: "queue-size", ViperKey: "worker.queue_size", Description: "Capacity of the background log queue"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// Resolve builds the effective configuration of cmd: it reads the config
// file from the directory given by the persistent --config-dir flag, binds
// the registered flags of cmd and resolves the precedence chain.
func Resolve(cmd *cobra.Command, fs FlagSet, registryKeys []string) (*Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}

	BindRegisteredFlags(v, cmd, fs, registryKeys)
	return FromViper(v)
}
