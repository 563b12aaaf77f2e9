// Package voice provides the webhook server the voice platform drives a phone
// call through. Every request is one turn: it is decoded, answered by the
// dialog engine, rendered as TwiML and its side effects are handed to the
// worker pool.
package voice

import "time"

// Config is the voice webhook server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// PublicURL is the externally reachable base URL used in callback URLs.
	// When empty the scheme and host of each request are used.
	PublicURL string

	// TokenSecret signs continuation tokens. Empty disables signing.
	TokenSecret string

	// Language and Voice configure speech synthesis and recognition.
	Language string
	Voice    string

	// NumWorkers, QueueSize and UpsertTimeout configure the worker pool.
	NumWorkers    uint
	QueueSize     uint
	UpsertTimeout time.Duration
}
