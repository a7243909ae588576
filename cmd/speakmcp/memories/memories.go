// Package memoriescmder provides commands for the memories SpeakMCP keeps
// across conversations.
package memoriescmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const memoriesLongDesc string = `Manage memories: context SpeakMCP's agent can reference across
conversations.

Examples:
  speakmcp memories list
  speakmcp memories show mem_123
  speakmcp memories delete mem_123`

const memoriesShortDesc string = "Manage agent memories"

func NewMemoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memories",
		Short: memoriesShortDesc,
		Long:  memoriesLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List memories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				return runShow(ctx, env, client, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a memory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				if err := client.DeleteMemory(ctx, args[0]); err != nil {
					return fmt.Errorf("deleting memory: %w", err)
				}
				cliui.Success(env.Out, "Deleted memory: %s", args[0])
				return nil
			})
		},
	})

	return cmd
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	memories, err := client.Memories(ctx)
	if err != nil {
		return fmt.Errorf("listing memories: %w", err)
	}

	if !env.JSON && len(memories) == 0 {
		fmt.Fprintln(env.Out, "No memories found.")
		return nil
	}

	return env.Render(memories, []string{"ID", "CONTENT", "IMPORTANCE", "TAGS", "CREATED"}, func() [][]string {
		rows := make([][]string, 0, len(memories))
		for _, m := range memories {
			rows = append(rows, []string{
				cliui.HashStyle.Render(m.ID),
				cliui.Truncate(m.Content, 40),
				string(m.Importance),
				cliui.Truncate(strings.Join(m.Tags, ", "), 20),
				cliui.FormatTimestamp(m.CreatedAt),
			})
		}
		return rows
	})
}

func runShow(ctx context.Context, env *cmdenv.Env, client *api.Client, id string) error {
	m, err := client.Memory(ctx, id)
	if err != nil {
		return fmt.Errorf("loading memory: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, m)
	}

	cliui.KV(env.Out, "ID", cliui.HashStyle.Render(m.ID))
	if m.Importance != "" {
		cliui.KV(env.Out, "Importance", string(m.Importance))
	}
	if len(m.Tags) > 0 {
		cliui.KV(env.Out, "Tags", strings.Join(m.Tags, ", "))
	}
	cliui.KV(env.Out, "Created", cliui.FormatTimestamp(m.CreatedAt))
	fmt.Fprintln(env.Out)
	fmt.Fprintln(env.Out, m.Content)
	return nil
}
