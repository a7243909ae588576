// Package configcmder provides the config command for managing persistent
// speakmcp configuration stored in cli.toml.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent speakmcp configuration.

Configuration is stored as cli.toml in the speakmcp config directory
(./.speakmcp/ when present, otherwise the user config directory). CLI flags
and SPEAKMCP_* environment variables take precedence over file values.

Keys use dotted notation matching the TOML section structure:
  server.url, server.api_key,
  chat.model, chat.default_conversation_id, chat.stream,
  chat.show_tool_calls, chat.max_tokens, chat.timeout,
  output.colored, output.markdown,
  journal.enabled, journal.path

Use subcommands to manage values:
  speakmcp config set <key> <value>    Set a configuration value
  speakmcp config get <key>            Get a configuration value
  speakmcp config list                 List values stored in cli.toml
  speakmcp config show                 Show the effective configuration
  speakmcp config init                 Write a default cli.toml

Examples:
  speakmcp config set server.url http://localhost:3210/v1
  speakmcp config set chat.stream false
  speakmcp config get server.url
  speakmcp config show`

const configShortDesc string = "Manage persistent speakmcp configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}
