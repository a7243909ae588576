package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "speakmcp chat" and "speakmcp send").
type Flag struct {
	// Name is the long flag name (e.g. "server").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag and BindRegisteredFlags to
// avoid typos or drift from one command to another.
const (
	FlagServer  = "server"
	FlagAPIKey  = "api-key"
	FlagModel   = "model"
	FlagTimeout = "timeout"
)

// Flags is the registry shared by every speakmcp command.
var Flags = FlagSet{
	FlagServer: {
		Name:        "server",
		Shorthand:   "s",
		ViperKey:    "server.url",
		Description: "Server URL of the SpeakMCP remote API",
	},
	FlagAPIKey: {
		Name:        "api-key",
		Shorthand:   "k",
		ViperKey:    "server.api_key",
		Description: "API key for the SpeakMCP remote API",
	},
	FlagModel: {
		Name:        "model",
		ViperKey:    "chat.model",
		Description: "Model name sent with chat requests",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "chat.timeout",
		Description: "Request timeout (e.g. 120s, 5m)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, and description all come from the FlagSet
// entry so they cannot drift across commands. The default is left empty so
// an unset flag never shadows env or file values.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	addStringFlag(cmd.Flags(), fs, key, target)
}

// AddPersistentStringFlag is AddStringFlag for flags inherited by every
// subcommand.
func AddPersistentStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	addStringFlag(cmd.PersistentFlags(), fs, key, target)
}

func addStringFlag(flags *pflag.FlagSet, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	if def.Shorthand != "" {
		flags.StringVarP(target, def.Name, def.Shorthand, "", def.Description)
	} else {
		flags.StringVar(target, def.Name, "", def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
// Only flags the user actually set are bound.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flag(def.Name)
		if f == nil || !f.Changed {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// DefaultString returns the default string value for a viper key from
// NewDefaultConfig.
func DefaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}
