// Package healthcmder provides the health command.
package healthcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const healthShortDesc string = "Show SpeakMCP server health"

func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: healthShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runHealth)
		},
	}
}

func runHealth(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	h, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("checking health: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, h)
	}

	version := h.Version
	if version == "" {
		version = "unknown"
	}

	cliui.KV(env.Out, "Status", h.Status)
	cliui.KV(env.Out, "Version", version)
	if h.Uptime != nil {
		cliui.KV(env.Out, "Uptime", fmt.Sprintf("%ds", *h.Uptime))
	}
	return nil
}
