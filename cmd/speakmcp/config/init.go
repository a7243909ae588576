package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

const initLongDesc string = `Write a cli.toml with default values.

Refuses to overwrite an existing file unless --force is given.

Examples:
  speakmcp config init
  speakmcp config init --force`

const initShortDesc string = "Initialize cli.toml with defaults"

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runInit(cmd.OutOrStdout(), configDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing cli.toml")

	return cmd
}

func runInit(w io.Writer, configDir string, force bool) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.InitConfig(force); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Created config file: %s\n", cliui.SuccessMark(), cfger.GetTarget())
	return nil
}
