// Package toolscmder provides commands for listing and calling the MCP
// tools exposed by SpeakMCP.
package toolscmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const toolsLongDesc string = `List and call MCP tools directly, without going through the agent.

Tool names are qualified by their server, as in "github:search_issues".

Examples:
  speakmcp tools list
  speakmcp tools call github:search_issues --args '{"query":"bug"}'`

const toolsShortDesc string = "List and call MCP tools"

type callCommander struct {
	args string
}

func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: toolsShortDesc,
		Long:  toolsLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available tools",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	})
	cmd.AddCommand(newCallCmd())

	return cmd
}

func newCallCmd() *cobra.Command {
	cmder := &callCommander{}

	cmd := &cobra.Command{
		Use:   "call <name>",
		Short: "Call a tool with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseArgs(cmder.args)
			if err != nil {
				return err
			}
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				return runCall(ctx, env, client, args[0], toolArgs)
			})
		},
	}

	cmd.Flags().StringVar(&cmder.args, "args", "{}", "Tool arguments as a JSON object")

	return cmd
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	tools, err := client.Tools(ctx)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}

	if !env.JSON && len(tools) == 0 {
		fmt.Fprintln(env.Out, "No tools available")
		return nil
	}

	return env.Render(tools, []string{"NAME", "DESCRIPTION"}, func() [][]string {
		rows := make([][]string, 0, len(tools))
		for _, t := range tools {
			rows = append(rows, []string{cliui.NameStyle.Render(t.Name), cliui.Truncate(t.Description, 60)})
		}
		return rows
	})
}

func runCall(ctx context.Context, env *cmdenv.Env, client *api.Client, name string, args json.RawMessage) error {
	res, err := client.CallTool(ctx, name, args)
	if err != nil {
		return fmt.Errorf("calling tool %s: %w", name, err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, res)
	}

	if res.IsError {
		fmt.Fprintf(env.Out, "%s %s\n", cliui.FailMark(), res.Text())
		return fmt.Errorf("tool %s reported an error", name)
	}
	fmt.Fprintln(env.Out, res.Text())
	return nil
}

// parseArgs checks that raw is a JSON object.
func parseArgs(raw string) (json.RawMessage, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("invalid --args: %w", err)
	}
	if obj == nil {
		return nil, errors.New("invalid --args: expected a JSON object")
	}
	return json.RawMessage(raw), nil
}
