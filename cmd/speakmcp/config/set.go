package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in cli.toml. Values are checked
before saving: booleans must parse as true/false, chat.max_tokens as a
non-negative integer and chat.timeout as a duration.

Examples:
  speakmcp config set server.url http://192.168.1.20:3210/v1
  speakmcp config set chat.show_tool_calls false
  speakmcp config set chat.timeout 5m`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(w io.Writer, key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, config.DescribeKeys())
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	shown := value
	if key == "server.api_key" {
		shown = config.MaskSecret(value)
	}

	fmt.Fprintf(w, "%s Set %s = %s %s\n",
		cliui.SuccessMark(),
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(shown),
		cliui.DimStyle.Render("("+cfger.GetTarget()+")"),
	)
	return nil
}
