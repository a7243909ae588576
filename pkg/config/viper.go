package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/speakmcp/speakmcp-cli/pkg/dotdir"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SPEAKMCP"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads cli.toml (if found via
// dotdir resolution), and binds environment variables with the SPEAKMCP_
// prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SPEAKMCP_SERVER_URL, SPEAKMCP_API_KEY, etc.)
//  3. cli.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName(strings.TrimSuffix(FileName, ".toml"))
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Resolve(configDir)
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

	// 3. Environment variables: SPEAKMCP_SERVER_URL, SPEAKMCP_CHAT_MODEL, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The short SPEAKMCP_API_KEY spelling predates the sectioned layout.
	if err := v.BindEnv("server.api_key", EnvPrefix+"_SERVER_API_KEY", EnvPrefix+"_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	return v, nil
}

// FromViper materializes the effective Config from v, running every value
// through the same setters used by "config set".
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()
	for _, key := range ValidConfigKeys() {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		if err := configKeys[key].set(cfg, raw); err != nil {
			return nil, err
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

	for _, key := range ValidConfigKeys() {
		v.SetDefault(key, configKeys[key].get(d))
	}
}

// LoadForCommand resolves the effective Config for a running command:
// cli.toml from --config-dir, SPEAKMCP_* env, then any registry flags the
// user set on cmd.
func LoadForCommand(cmd *cobra.Command) (*Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}

	BindRegisteredFlags(v, cmd, Flags, []string{FlagServer, FlagAPIKey, FlagModel, FlagTimeout})

	return FromViper(v)
}
