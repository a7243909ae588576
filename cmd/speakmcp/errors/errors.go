// Package errorscmder provides the errors command, which shows the desktop
// app's recent error log.
package errorscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const errorsShortDesc string = "Show recent server errors"

func NewErrorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors",
		Short: errorsShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runErrors)
		},
	}
}

func runErrors(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	entries, err := client.Errors(ctx)
	if err != nil {
		return fmt.Errorf("loading errors: %w", err)
	}

	if !env.JSON && len(entries) == 0 {
		fmt.Fprintln(env.Out, "No recent errors")
		return nil
	}

	return env.Render(entries, []string{"TIMESTAMP", "MESSAGE", "CONTEXT"}, func() [][]string {
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				cliui.DimStyle.Render(e.Timestamp),
				cliui.Truncate(e.Message, 60),
				e.Context,
			})
		}
		return rows
	})
}
