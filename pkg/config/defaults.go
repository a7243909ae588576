package config

import "time"

const (
	defaultServerURL = "http://localhost:3210/v1"
	defaultModel     = "gpt-4o"

	defaultTimeout     = "120s"
	defaultChatTimeout = 120 * time.Second
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			URL: defaultServerURL,
		},
		Chat: ChatConfig{
			Model:         defaultModel,
			Stream:        true,
			ShowToolCalls: true,
			Timeout:       defaultTimeout,
		},
		Output: OutputConfig{
			Colored:  true,
			Markdown: false,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}
