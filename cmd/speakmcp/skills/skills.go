// Package skillscmder provides the skills command.
package skillscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const skillsShortDesc string = "Manage agent skills"

func NewSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: skillsShortDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List agent skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	})

	return cmd
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	skills, err := client.Skills(ctx)
	if err != nil {
		return fmt.Errorf("listing skills: %w", err)
	}

	if !env.JSON && len(skills) == 0 {
		fmt.Fprintln(env.Out, "No skills found.")
		return nil
	}

	return env.Render(skills, []string{"ID", "NAME", "DESCRIPTION", "ENABLED"}, func() [][]string {
		rows := make([][]string, 0, len(skills))
		for _, s := range skills {
			enabled := "no"
			if s.Enabled {
				enabled = "yes"
			}
			rows = append(rows, []string{
				cliui.HashStyle.Render(s.ID),
				cliui.NameStyle.Render(s.Name),
				cliui.Truncate(s.Description, 50),
				enabled,
			})
		}
		return rows
	})
}
