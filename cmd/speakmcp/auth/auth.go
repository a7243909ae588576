// Package authcmder provides the auth command for storing the SpeakMCP API key.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

const authLongDesc string = `Store the API key for the SpeakMCP remote server.

The key is saved as server.api_key in cli.toml, which is written owner-only.
It is read with hidden input from a terminal, or from the first line of
stdin when piped. When --server is given the server URL is stored as well.

The key is shown in the SpeakMCP desktop app under Settings > Remote Server.

Examples:
  speakmcp auth                                  Prompt for the API key
  speakmcp auth --server http://10.0.0.5:3210/v1 Store key and server URL
  echo $KEY | speakmcp auth                      Pipe the key from stdin`

const authShortDesc string = "Store the SpeakMCP API key"

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			server := ""
			if f := cmd.Flag(config.Flags[config.FlagServer].Name); f != nil && f.Changed {
				server = f.Value.String()
			}

			return runAuth(cmd.InOrStdin(), cmd.OutOrStdout(), configDir, server)
		},
	}

	return cmd
}

func runAuth(in io.Reader, w io.Writer, configDir, server string) error {
	apiKey, err := readAPIKey(in, w)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SetConfigValue("server.api_key", apiKey); err != nil {
		return err
	}
	if server != "" {
		if err := cfger.SetConfigValue("server.url", server); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n  %s Stored API key %s\n",
		cliui.SuccessMark(),
		cliui.DimStyle.Render("("+config.MaskSecret(apiKey)+")"),
	)
	if server != "" {
		fmt.Fprintf(w, "  %s Server %s\n", cliui.SuccessMark(), cliui.NameStyle.Render(server))
	}
	fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("Run 'speakmcp status' to check the connection."))

	return nil
}

// readAPIKey reads an API key from in. If in is not a terminal, it reads
// the first line. Otherwise, it prompts interactively with hidden input.
func readAPIKey(in io.Reader, w io.Writer) (string, error) {
	f, isFile := in.(*os.File)

	// Piped input
	if !isFile || !term.IsTerminal(int(f.Fd())) {
		scanner := bufio.NewScanner(in)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	fmt.Fprintf(w, "  Enter SpeakMCP API key: ")
	key, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	return string(key), nil
}
