// Package historycmder provides commands for browsing, exporting and
// resuming the conversations stored by SpeakMCP.
package historycmder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	chatcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/chat"
	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const historyLongDesc string = `Manage conversation history stored by the SpeakMCP desktop app.

Examples:
  speakmcp history list
  speakmcp history show conv_123
  speakmcp history export conv_123 -o chat.md
  speakmcp history export conv_123 --json > chat.json
  speakmcp history continue conv_123
  speakmcp history delete conv_123`

const historyShortDesc string = "Manage conversation history"

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show the messages of a conversation",
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
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				if err := client.DeleteConversation(ctx, args[0]); err != nil {
					return fmt.Errorf("deleting conversation: %w", err)
				}
				cliui.Success(env.Out, "Deleted conversation: %s", args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "continue <id>",
		Short: "Continue a past conversation interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmdenv.WithClient(cmd, func(ctx context.Context, _ *cmdenv.Env, client *api.Client) error {
				_, err := client.Conversation(ctx, args[0])
				return err
			})
			if err != nil {
				return fmt.Errorf("loading conversation %s: %w", args[0], err)
			}
			return chatcmder.Interactive(cmd, chatcmder.Options{ConversationID: args[0]})
		},
	})

	return cmd
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	convs, err := client.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	if !env.JSON && len(convs) == 0 {
		fmt.Fprintln(env.Out, "No conversations found.")
		return nil
	}

	return env.Render(convs, []string{"ID", "TITLE", "MESSAGES", "UPDATED"}, func() [][]string {
		rows := make([][]string, 0, len(convs))
		for _, c := range convs {
			rows = append(rows, []string{
				cliui.HashStyle.Render(c.ID),
				cliui.Truncate(c.Title, 40),
				strconv.Itoa(c.MessageCount),
				cliui.FormatTimestamp(c.UpdatedAt),
			})
		}
		return rows
	})
}

func runShow(ctx context.Context, env *cmdenv.Env, client *api.Client, id string) error {
	conv, err := client.Conversation(ctx, id)
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, conv)
	}

	w := env.Out
	cliui.KV(w, "Title", cliui.NameStyle.Render(conv.Title))
	cliui.KV(w, "ID", cliui.HashStyle.Render(conv.ID))
	cliui.KV(w, "Created", cliui.FormatTimestamp(conv.CreatedAt))
	cliui.KV(w, "Updated", cliui.FormatTimestamp(conv.UpdatedAt))
	cliui.KV(w, "Messages", strconv.Itoa(len(conv.Messages)))

	for _, m := range conv.Messages {
		fmt.Fprintln(w)
		prompt := cliui.AgentPromptStyle.Render(m.Role + ">")
		if m.Role == "user" {
			prompt = cliui.UserPromptStyle.Render(m.Role + ">")
		}
		fmt.Fprintf(w, "%s %s\n", prompt, m.Content)

		for _, tc := range m.ToolCalls {
			fmt.Fprintf(w, "  %s %s %s\n", cliui.StepStyle.Render("⚙"), cliui.NameStyle.Render(tc.Name), cliui.DimStyle.Render(cliui.Truncate(string(tc.Arguments), 60)))
		}
		for _, tr := range m.ToolResults {
			if tr.Success {
				fmt.Fprintf(w, "  %s %s\n", cliui.SuccessMark(), cliui.Truncate(tr.Content, 60))
			} else {
				fmt.Fprintf(w, "  %s %s\n", cliui.FailMark(), cliui.Truncate(tr.Error, 60))
			}
		}
	}
	return nil
}
