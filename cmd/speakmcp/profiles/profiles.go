// Package profilescmder provides commands for listing and switching
// SpeakMCP agent profiles.
package profilescmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const profilesLongDesc string = `Manage SpeakMCP agent profiles.

A profile bundles the agent's guidelines and tool configuration. Switching
profiles affects every client of the desktop app, not just this CLI.

Examples:
  speakmcp profiles list
  speakmcp profiles current
  speakmcp profiles switch prof_123`

const profilesShortDesc string = "Manage agent profiles"

func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: profilesShortDesc,
		Long:  profilesLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runCurrent)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "switch <id>",
		Short: "Switch to another profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				return runSwitch(ctx, env, client, args[0])
			})
		},
	})

	return cmd
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	list, err := client.Profiles(ctx)
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}

	return env.Render(list, []string{"", "ID", "NAME", "DEFAULT"}, func() [][]string {
		rows := make([][]string, 0, len(list.Profiles))
		for _, p := range list.Profiles {
			current := " "
			if p.ID == list.CurrentProfileID {
				current = "*"
			}
			def := ""
			if p.IsDefault {
				def = "yes"
			}
			rows = append(rows, []string{current, cliui.HashStyle.Render(p.ID), cliui.NameStyle.Render(p.Name), def})
		}
		return rows
	})
}

func runCurrent(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	p, err := client.CurrentProfile(ctx)
	if err != nil {
		return fmt.Errorf("getting current profile: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, p)
	}

	cliui.KV(env.Out, "ID", cliui.HashStyle.Render(p.ID))
	cliui.KV(env.Out, "Name", cliui.NameStyle.Render(p.Name))
	if p.Guidelines != "" {
		cliui.KV(env.Out, "Guidelines", p.Guidelines)
	}
	return nil
}

func runSwitch(ctx context.Context, env *cmdenv.Env, client *api.Client, id string) error {
	p, err := client.SwitchProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("switching profile: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, p)
	}

	cliui.Success(env.Out, "Switched to profile: %s", p.Name)
	return nil
}
