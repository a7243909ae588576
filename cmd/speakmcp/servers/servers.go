// Package serverscmder provides commands for listing and toggling the MCP
// servers configured in SpeakMCP.
package serverscmder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const serversLongDesc string = `Manage the MCP servers configured in SpeakMCP.

Examples:
  speakmcp servers list
  speakmcp servers disable github
  speakmcp servers enable github`

const serversShortDesc string = "Manage MCP servers"

func NewServersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: serversShortDesc,
		Long:  serversLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newToggleCmd("enable", true))
	cmd.AddCommand(newToggleCmd("disable", false))

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List MCP servers and their state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	}
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	servers, err := client.Servers(ctx)
	if err != nil {
		return fmt.Errorf("listing servers: %w", err)
	}

	return env.Render(servers, []string{"NAME", "ENABLED", "CONNECTED", "TOOLS", "ERROR"}, func() [][]string {
		rows := make([][]string, 0, len(servers))
		for _, s := range servers {
			rows = append(rows, []string{
				cliui.NameStyle.Render(s.Name),
				mark(s.Enabled),
				mark(s.Connected),
				strconv.Itoa(s.ToolCount),
				cliui.Truncate(s.Error, 40),
			})
		}
		return rows
	})
}

func newToggleCmd(verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <name>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an MCP server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				res, err := client.ToggleServer(ctx, args[0], enabled)
				if err != nil {
					return fmt.Errorf("updating server %s: %w", args[0], err)
				}
				if env.JSON {
					return cliui.PrintJSON(env.Out, res)
				}

				state := "disabled"
				if enabled {
					state = "enabled"
				}
				cliui.Success(env.Out, "Server '%s' %s", args[0], state)
				return nil
			})
		},
	}
}

func mark(ok bool) string {
	if ok {
		return cliui.SuccessMark()
	}
	return cliui.FailMark()
}
