package historycmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

type exportCommander struct {
	output string
}

func newExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation as Markdown, or JSON with --json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				return runExport(ctx, env, client, args[0], cmder.output)
			})
		},
	}

	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func runExport(ctx context.Context, env *cmdenv.Env, client *api.Client, id, output string) error {
	conv, err := client.Conversation(ctx, id)
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}

	w := env.Out
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if env.JSON {
		err = cliui.PrintJSON(w, conv)
	} else {
		_, err = io.WriteString(w, transcript(conv))
	}
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	if output != "" {
		cliui.Success(env.Err, "Exported %d messages to %s", len(conv.Messages), output)
	}
	return nil
}

// transcript renders conv as a Markdown document.
func transcript(conv *api.Conversation) string {
	var b strings.Builder

	title := conv.Title
	if title == "" {
		title = conv.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- ID: `%s`\n", conv.ID)
	fmt.Fprintf(&b, "- Created: %s\n", cliui.FormatTimestamp(conv.CreatedAt))
	fmt.Fprintf(&b, "- Updated: %s\n", cliui.FormatTimestamp(conv.UpdatedAt))

	for _, m := range conv.Messages {
		fmt.Fprintf(&b, "\n## %s\n\n", role(m.Role))
		if m.Content != "" {
			fmt.Fprintf(&b, "%s\n", strings.TrimRight(m.Content, "\n"))
		}
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(&b, "\n**Tool call:** `%s`\n", tc.Name)
			if len(tc.Arguments) > 0 {
				fmt.Fprintf(&b, "\n```json\n%s\n```\n", tc.Arguments)
			}
		}
		for _, tr := range m.ToolResults {
			if tr.Success {
				fmt.Fprintf(&b, "\n**Tool result:**\n\n```\n%s\n```\n", tr.Content)
			} else {
				fmt.Fprintf(&b, "\n**Tool error:** %s\n", tr.Error)
			}
		}
	}

	return b.String()
}

func role(r string) string {
	if r == "" {
		return "Unknown"
	}
	return strings.ToUpper(r[:1]) + r[1:]
}
