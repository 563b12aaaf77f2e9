package config

const (
	defaultVoiceListen = ":8080"
	defaultAPIListen   = ":8081"
	defaultLanguage    = "de-DE"
	defaultVoice       = "Polly.Marlene"

	defaultKafkaTopic = "praxisvoice.turns"

	defaultNumWorkers    = 3
	defaultQueueSize     = 256
	defaultUpsertTimeout = "5s"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Voice: VoiceConfig{
			Listen:   defaultVoiceListen,
			Language: defaultLanguage,
			Voice:    defaultVoice,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Worker: WorkerConfig{
			NumWorkers:    defaultNumWorkers,
			QueueSize:     defaultQueueSize,
			UpsertTimeout: defaultUpsertTimeout,
		},
	}
}
