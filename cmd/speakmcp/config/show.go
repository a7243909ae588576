package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

const showLongDesc string = `Show the effective configuration.

Unlike "config list", the values shown here include SPEAKMCP_* environment
variables and flags such as --server and --api-key. The API key is masked.

Examples:
  speakmcp config show
  SPEAKMCP_SERVER_URL=http://other:3210/v1 speakmcp config show
  speakmcp config show --json`

const showShortDesc string = "Show the effective configuration"

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadForCommand(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			jsonOut, _ := cmd.Flags().GetBool("json")
			return runShow(cmd.OutOrStdout(), cfg, configDir, jsonOut)
		},
	}

	return cmd
}

func runShow(w io.Writer, cfg *config.Config, configDir string, jsonOut bool) error {
	if jsonOut {
		values := make(map[string]string, len(config.ValidConfigKeys()))
		for _, key := range config.ValidConfigKeys() {
			v, err := config.MaskedValue(cfg, key)
			if err != nil {
				return err
			}
			values[key] = v
		}
		return cliui.PrintJSON(w, values)
	}

	apiKey := cliui.DimStyle.Render("(not set)")
	if cfg.Server.APIKey != "" {
		apiKey = cliui.DimStyle.Render(config.MaskSecret(cfg.Server.APIKey))
	}

	fmt.Fprintf(w, "%s\n", cliui.HeaderStyle.Render("Current configuration:"))
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Server URL:"), cliui.ValueStyle.Render(cfg.Server.URL))
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("API Key:"), apiKey)
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.ValueStyle.Render(cfg.Chat.Model))
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Streaming:"), yesNo(cfg.Chat.Stream))
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Colored output:"), yesNo(cfg.Output.Colored))
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Show tool calls:"), yesNo(cfg.Chat.ShowToolCalls))
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Timeout:"), cfg.Chat.TimeoutDuration())
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Journal:"), yesNo(cfg.Journal.Enabled))

	if cfger, err := config.NewConfiger(configDir); err == nil {
		fmt.Fprintf(w, "\n%s %s\n", cliui.DimStyle.Render("Config file:"), cfger.GetTarget())
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
