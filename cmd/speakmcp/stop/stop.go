// Package stopcmder provides the emergency stop command.
package stopcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const stopLongDesc string = `Stop every running agent session and tool call in SpeakMCP.

This affects all clients of the desktop app, not only turns started from
this CLI.`

const stopShortDesc string = "Emergency stop all agent activity"

func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: stopShortDesc,
		Long:  stopLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runStop)
		},
	}
}

func runStop(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	res, err := client.EmergencyStop(ctx)
	if err != nil {
		return fmt.Errorf("emergency stop: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, res)
	}

	if res.Success {
		cliui.Success(env.Out, "Emergency stop executed successfully")
		return nil
	}

	msg := res.Message
	if msg == "" {
		msg = "No message"
	}
	cliui.Warn(env.Out, "Emergency stop sent: %s", msg)
	return nil
}
