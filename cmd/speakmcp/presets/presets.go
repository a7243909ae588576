// Package presetscmder provides commands for the model presets configured
// in SpeakMCP.
package presetscmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const presetsLongDesc string = `List and switch the model presets SpeakMCP uses for its agent.

A preset can be addressed by id or, case-insensitively, by name.

Examples:
  speakmcp presets list
  speakmcp presets current
  speakmcp presets switch openrouter`

const presetsShortDesc string = "Manage model presets"

func NewPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: presetsShortDesc,
		Long:  presetsLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List model presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runList)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the current model preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.WithClient(cmd, runCurrent)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "switch <id|name>",
		Short: "Switch the current model preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdenv.WithClient(cmd, func(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
				return runSwitch(ctx, env, client, args[0])
			})
		},
	})

	return cmd
}

func load(ctx context.Context, client *api.Client) ([]api.ModelPreset, string, error) {
	settings, err := client.Settings(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("loading settings: %w", err)
	}
	presets, current, err := settings.Presets()
	if err != nil {
		return nil, "", fmt.Errorf("decoding presets: %w", err)
	}
	return presets, current, nil
}

func runList(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	presets, current, err := load(ctx, client)
	if err != nil {
		return err
	}

	return env.Render(presets, []string{"NAME", "ID", "BASE URL", "BUILT-IN", "CURRENT"}, func() [][]string {
		rows := make([][]string, 0, len(presets))
		for _, p := range presets {
			builtIn := "no"
			if p.IsBuiltIn {
				builtIn = "yes"
			}
			marker := ""
			if p.ID == current {
				marker = "*"
			}
			rows = append(rows, []string{cliui.NameStyle.Render(p.Name), cliui.HashStyle.Render(p.ID), p.BaseURL, builtIn, marker})
		}
		return rows
	})
}

func runCurrent(ctx context.Context, env *cmdenv.Env, client *api.Client) error {
	presets, current, err := load(ctx, client)
	if err != nil {
		return err
	}
	if current == "" {
		return errors.New("no model preset selected")
	}

	preset, err := api.ResolvePreset(presets, current)
	if err != nil {
		// The id is set but the preset list does not describe it.
		preset = api.ModelPreset{ID: current, Name: current}
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, preset)
	}

	cliui.KV(env.Out, "Name", cliui.NameStyle.Render(preset.Name))
	cliui.KV(env.Out, "ID", cliui.HashStyle.Render(preset.ID))
	if preset.BaseURL != "" {
		cliui.KV(env.Out, "Base URL", preset.BaseURL)
	}
	return nil
}

func runSwitch(ctx context.Context, env *cmdenv.Env, client *api.Client, nameOrID string) error {
	presets, _, err := load(ctx, client)
	if err != nil {
		return err
	}

	preset, err := api.ResolvePreset(presets, nameOrID)
	if err != nil {
		return err
	}

	res, err := client.PatchSettings(ctx, map[string]any{"currentModelPresetId": preset.ID})
	if err != nil {
		return fmt.Errorf("switching preset: %w", err)
	}
	if env.JSON {
		return cliui.PrintJSON(env.Out, res)
	}
	if !res.Success {
		return errors.New("failed to switch preset")
	}

	cliui.Success(env.Out, "Switched to model preset: %s (%s)", preset.Name, preset.ID)
	return nil
}
