// Package settingscmder provides commands for viewing and changing the
// SpeakMCP desktop app settings.
package settingscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const settingsLongDesc string = `View and change SpeakMCP desktop app settings.

Values given to "set" are typed before sending: true and false become
booleans, numbers become numbers, anything else is sent as a string.

Examples:
  speakmcp settings show
  speakmcp settings set mcpToolsProvider openai
  speakmcp settings set mcpMaxIterations 20`

const settingsShortDesc string = "View and change app settings"

// hidden keys are shown by their own commands.
var hidden = map[string]bool{
	"availablePresets": true,
}

func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: settingsShortDesc,
		Long:  settingsLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runShow)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				return runSet(ctx, env, client, args[0], args[1])
			})
		},
	})

	return cmd
}

func runShow(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	settings, err := client.Settings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	return env.Render(settings, []string{"SETTING", "VALUE"}, func() [][]string {
		keys := make([]string, 0, len(settings))
		for k := range settings {
			if !hidden[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{cliui.KeyStyle.Render(k), cliui.Truncate(formatValue(settings[k]), 60)})
		}
		return rows
	})
}

func runSet(ctx context.Context, env *cmdenv.Env, client *api.Client, key, value string) error {
	res, err := client.UpdateSetting(ctx, key, api.ParseSettingValue(value))
	if err != nil {
		return fmt.Errorf("updating setting %s: %w", key, err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, res)
	}

	cliui.Success(env.Out, "Setting '%s' updated to '%s'", key, value)
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case string:
		if val == "" {
			return "-"
		}
		return val
	case float64, int64, int:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
