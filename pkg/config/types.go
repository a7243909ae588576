package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent speakmcp configuration stored as cli.toml
// in the speakmcp config directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Server  ServerConfig  `toml:"server"`
	Chat    ChatConfig    `toml:"chat"`
	Output  OutputConfig  `toml:"output"`
	Journal JournalConfig `toml:"journal"`
}

// ServerConfig holds the connection to the remote agent.
type ServerConfig struct {
	URL    string `toml:"url,omitempty"`
	APIKey string `toml:"api_key,omitempty"`
}

// ChatConfig holds defaults for chat turns.
type ChatConfig struct {
	Model                 string `toml:"model,omitempty"`
	DefaultConversationID string `toml:"default_conversation_id,omitempty"`
	Stream                bool   `toml:"stream"`
	ShowToolCalls         bool   `toml:"show_tool_calls"`
	MaxTokens             int    `toml:"max_tokens,omitempty"`
	Timeout               string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout, falling back to the default on an empty
// or invalid value.
func (c ChatConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultChatTimeout
	}
	return d
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	Colored  bool `toml:"colored"`
	Markdown bool `toml:"markdown"`
}

// JournalConfig controls the local record of completed turns.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.url": {
		get: func(c *Config) string { return c.Server.URL },
		set: func(c *Config, v string) error { c.Server.URL = v; return nil },
	},
	"server.api_key": {
		get: func(c *Config) string { return c.Server.APIKey },
		set: func(c *Config, v string) error { c.Server.APIKey = v; return nil },
	},
	"chat.model": {
		get: func(c *Config) string { return c.Chat.Model },
		set: func(c *Config, v string) error { c.Chat.Model = v; return nil },
	},
	"chat.default_conversation_id": {
		get: func(c *Config) string { return c.Chat.DefaultConversationID },
		set: func(c *Config, v string) error { c.Chat.DefaultConversationID = v; return nil },
	},
	"chat.stream":          boolKey("chat.stream", func(c *Config) *bool { return &c.Chat.Stream }),
	"chat.show_tool_calls": boolKey("chat.show_tool_calls", func(c *Config) *bool { return &c.Chat.ShowToolCalls }),
	"chat.max_tokens": {
		get: func(c *Config) string {
			if c.Chat.MaxTokens == 0 {
				return ""
			}
			return strconv.Itoa(c.Chat.MaxTokens)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.Chat.MaxTokens = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for chat.max_tokens: %q", v)
			}
			c.Chat.MaxTokens = n
			return nil
		},
	},
	"chat.timeout": {
		get: func(c *Config) string { return c.Chat.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for chat.timeout: %w", err)
			}
			c.Chat.Timeout = v
			return nil
		},
	},
	"output.colored":  boolKey("output.colored", func(c *Config) *bool { return &c.Output.Colored }),
	"output.markdown": boolKey("output.markdown", func(c *Config) *bool { return &c.Output.Markdown }),
	"journal.enabled": boolKey("journal.enabled", func(c *Config) *bool { return &c.Journal.Enabled }),
	"journal.path": {
		get: func(c *Config) string { return c.Journal.Path },
		set: func(c *Config, v string) error { c.Journal.Path = v; return nil },
	},
}

// secretKeys are masked by MaskedValue.
var secretKeys = map[string]bool{
	"server.api_key": true,
}
