// Package statuscmder provides the status command for checking the
// connection to the SpeakMCP remote server.
package statuscmder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
)

const statusLongDesc string = `Check the connection to the SpeakMCP remote server.

Requests the model list, a lightweight call with no side effects, and
reports whether the server is reachable and the API key is accepted.
Exits non-zero when the server cannot be reached or rejects the key.

Examples:
  speakmcp status
  speakmcp status --server http://10.0.0.5:3210/v1`

const statusShortDesc string = "Check connection to the server"

// statusResult is the --json shape.
type statusResult struct {
	Server        string   `json:"server"`
	Connected     bool     `json:"connected"`
	Authenticated bool     `json:"authenticated"`
	Status        int      `json:"status,omitempty"`
	Models        []string `json:"models,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdenv.Run(cmd, runStatus)
		},
	}

	return cmd
}

func runStatus(ctx context.Context, env *cmdenv.Env) error {
	w := env.Out
	server := env.Config.Server.URL

	client, err := env.Client()
	if errors.Is(err, api.ErrAPIKeyMissing) {
		if env.JSON {
			return cliui.PrintJSON(w, statusResult{Server: server, Error: "API key not configured"})
		}
		fmt.Fprintf(w, "%s API key not configured\n", cliui.WarnStyle.Render("warning:"))
		fmt.Fprintln(w, "Run 'speakmcp config set server.api_key <KEY>' or 'speakmcp auth' to set it.")
		return nil
	}
	if err != nil {
		return err
	}

	var models []api.Model
	probe := func() error {
		var perr error
		models, perr = client.Models(ctx)
		return perr
	}

	if env.JSON {
		err = probe()
	} else {
		err = cliui.Step(w, "Checking "+cliui.KeyStyle.Render(server), probe)
	}

	res := classify(server, models, err)
	if env.JSON {
		if perr := cliui.PrintJSON(w, res); perr != nil {
			return perr
		}
	} else {
		printResult(w, res)
	}

	switch {
	case !res.Connected:
		return fmt.Errorf("could not connect to %s", server)
	case !res.Authenticated:
		return errors.New("authentication failed")
	}
	return nil
}

func classify(server string, models []api.Model, err error) statusResult {
	res := statusResult{Server: server}

	status := api.StatusCode(err)
	switch {
	case err == nil:
		res.Connected = true
		res.Authenticated = true
		for _, m := range models {
			res.Models = append(res.Models, m.ID)
		}
	case status != 0:
		// The server answered, just not with a model list.
		res.Connected = true
		res.Status = status
		res.Authenticated = status != 401 && status != 403
		res.Error = err.Error()
	default:
		res.Error = err.Error()
	}

	return res
}

func printResult(w io.Writer, res statusResult) {
	if !res.Connected {
		fmt.Fprintf(w, "%s Could not connect to %s\n", cliui.FailMark(), res.Server)
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render(res.Error))
		return
	}

	fmt.Fprintf(w, "%s Connected to %s\n", cliui.SuccessMark(), cliui.KeyStyle.Render(res.Server))

	switch {
	case !res.Authenticated:
		fmt.Fprintf(w, "%s Authentication failed - check your API key\n", cliui.FailMark())
	case res.Status != 0:
		fmt.Fprintf(w, "%s Server returned status %d\n", cliui.WarnStyle.Render("⚠"), res.Status)
	default:
		fmt.Fprintf(w, "%s Authentication successful\n", cliui.SuccessMark())
		if len(res.Models) > 0 {
			fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("Models:"), cliui.ValueStyle.Render(fmt.Sprint(res.Models)))
		}
	}
}
