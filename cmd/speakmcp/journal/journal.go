// Package journalcmder provides commands for the local journal of completed
// chat turns.
package journalcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
	"github.com/speakmcp/speakmcp-cli/pkg/journal"
)

const journalLongDesc string = `Browse the local journal of completed chat turns.

Every successful turn is recorded in journal.db in the speakmcp config
directory while journal.enabled is true. The journal is local to this
machine and independent of the desktop app's conversation history.

Turn ids can be shortened to any unique prefix.

Examples:
  speakmcp journal list
  speakmcp journal list --conversation conv_123 --limit 5
  speakmcp journal show 3f2a
  speakmcp journal clear --yes`

const journalShortDesc string = "Browse the local turn journal"

type listCommander struct {
	limit        int
	conversation string
}

type clearCommander struct {
	yes bool
}

func NewJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: journalShortDesc,
		Long:  journalLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.Run(cmd, func(ctx context.Context, env *cmdenv.Env) error {
				return runShow(ctx, env, args[0])
			})
		},
	})
	cmd.AddCommand(newClearCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded turns, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.Run(cmd, func(ctx context.Context, env *cmdenv.Env) error {
				return runList(ctx, env, journal.ListOptions{Limit: cmder.limit, ConversationID: cmder.conversation})
			})
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", journal.DefaultListLimit, "Maximum number of turns to show")
	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Only show turns of this conversation")

	return cmd
}

func newClearCmd() *cobra.Command {
	cmder := &clearCommander{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmder.yes {
				return errors.New("refusing to clear the journal without --yes")
			}
			return cmdenv.Run(cmd, runClear)
		},
	}

	cmd.Flags().BoolVarP(&cmder.yes, "yes", "y", false, "Confirm deleting every turn")

	return cmd
}

func runList(ctx context.Context, env *cmdenv.Env, opts journal.ListOptions) error {
	j, err := env.OpenJournal(ctx)
	if err != nil {
		return err
	}

	turns, err := j.List(ctx, opts)
	if err != nil {
		return err
	}

	if !env.JSON && len(turns) == 0 {
		fmt.Fprintln(env.Out, "No turns recorded.")
		return nil
	}

	return env.Render(turns, []string{"ID", "CONVERSATION", "PROMPT", "CREATED"}, func() [][]string {
		rows := make([][]string, 0, len(turns))
		for _, t := range turns {
			rows = append(rows, []string{
				cliui.HashStyle.Render(t.ID[:min(8, len(t.ID))]),
				t.ConversationID,
				cliui.Truncate(t.Prompt, 50),
				t.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		return rows
	})
}

func runShow(ctx context.Context, env *cmdenv.Env, id string) error {
	j, err := env.OpenJournal(ctx)
	if err != nil {
		return err
	}

	t, err := j.Get(ctx, id)
	if err != nil {
		return err
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, t)
	}

	w := env.Out
	cliui.KV(w, "ID", cliui.HashStyle.Render(t.ID))
	if t.ConversationID != "" {
		cliui.KV(w, "Conversation", t.ConversationID)
	}
	if t.Model != "" {
		cliui.KV(w, "Model", t.Model)
	}
	cliui.KV(w, "Created", t.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", cliui.UserPromptStyle.Render("you>"), t.Prompt)
	fmt.Fprintf(w, "%s %s\n", cliui.AgentPromptStyle.Render("agent>"), t.Content)
	return nil
}

func runClear(ctx context.Context, env *cmdenv.Env) error {
	j, err := env.OpenJournal(ctx)
	if err != nil {
		return err
	}

	n, err := j.Clear(ctx)
	if err != nil {
		return err
	}
	cliui.Success(env.Out, "Cleared %d turns", n)
	return nil
}
