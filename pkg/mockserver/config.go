// Package mockserver provides a local stand-in for the SpeakMCP desktop
// remote server. It speaks the same chat completions SSE protocol so the CLI
// can be exercised without the desktop app.
package mockserver

import "time"

const (
	DefaultListenAddr = "127.0.0.1:3210"
	DefaultModel      = "mock-agent"
	DefaultChunkSize  = 8
	DefaultFrameDelay = 40 * time.Millisecond
)

// Config is the mock server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:3210")
	ListenAddr string

	// APIKey is the bearer token clients must send. Empty accepts any
	// request, with or without a token.
	APIKey string

	// Model is reported by GET /v1/models and echoed in done frames.
	Model string

	// ChunkSize is how many runes each progress frame adds to the
	// streaming text.
	ChunkSize int

	// FrameDelay is the pause between streamed frames.
	FrameDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.FrameDelay < 0 {
		c.FrameDelay = 0
	}
	return c
}
