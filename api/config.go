// Package api provides an HTTP API server for inspecting call logs and
// exercising the dialog engine without a phone call.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// DisableMCP turns off the /mcp endpoint.
	DisableMCP bool
}
