package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/speakmcp/speakmcp-cli/pkg/dotdir"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

const (
	// FileName is the config file inside the speakmcp directory.
	FileName = "cli.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetDir  string
	targetPath string
}

// NewConfiger resolves the config directory (creating it if needed) and the
// cli.toml path inside it. The file itself is not required to exist.
func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, FileName)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetDir = target
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the list of all supported configuration key
// names in TOML section order.
func ValidConfigKeys() []string {
	ordered := []string{
		"server.url",
		"server.api_key",
		"chat.model",
		"chat.default_conversation_id",
		"chat.stream",
		"chat.show_tool_calls",
		"chat.max_tokens",
		"chat.timeout",
		"output.colored",
		"output.markdown",
		"journal.enabled",
		"journal.path",
	}

	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// GetTarget returns the path to cli.toml.
func (c *Configer) GetTarget() string {
	return c.targetPath
}

// GetDir returns the resolved speakmcp directory.
func (c *Configer) GetDir() string {
	return c.targetDir
}

// Exists reports whether cli.toml is present on disk.
func (c *Configer) Exists() bool {
	if c.targetPath == "" {
		return false
	}
	_, err := os.Stat(c.targetPath)
	return err == nil
}

// LoadConfig loads cli.toml. If the file does not exist, returns
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

	return ParseConfigTOML(data)
}

// applyDefaults fills empty string fields that must never be blank.
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Server.URL == "" {
		cfg.Server.URL = defaults.Server.URL
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = defaults.Chat.Model
	}
	if cfg.Chat.Timeout == "" {
		cfg.Chat.Timeout = defaults.Chat.Timeout
	}
}

// SaveConfig persists the configuration to cli.toml. The file may hold an
// API key, so it is written owner-only.
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

// InitConfig writes a default cli.toml. It refuses to overwrite an existing
// file unless force is set.
func (c *Configer) InitConfig(force bool) error {
	if c.Exists() && !force {
		return fmt.Errorf("config file already exists: %s", c.targetPath)
	}
	return c.SaveConfig(NewDefaultConfig())
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

// GetValue returns the string representation of key on an already loaded
// config.
func GetValue(cfg *Config, key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}
	return info.get(cfg), nil
}

// MaskedValue is GetValue with secrets shortened to their first eight
// characters.
func MaskedValue(cfg *Config, key string) (string, error) {
	v, err := GetValue(cfg, key)
	if err != nil || !secretKeys[key] {
		return v, err
	}
	return MaskSecret(v), nil
}

// MaskSecret hides s for display the same way the logger does.
func MaskSecret(s string) string {
	return logger.Mask(s)
}

// ParseConfigTOML parses raw TOML bytes on top of NewDefaultConfig(), so
// keys absent from the file keep their defaults.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// DescribeKeys formats the key list for command help text.
func DescribeKeys() string {
	return strings.Join(ValidConfigKeys(), ", ")
}
