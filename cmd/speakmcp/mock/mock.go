// Package mockcmder provides the mock command, which runs a local stand-in
// for the SpeakMCP remote server.
package mockcmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
	"github.com/speakmcp/speakmcp-cli/pkg/mockserver"
)

const mockLongDesc string = `Run a mock SpeakMCP remote server for trying the CLI without the
desktop app.

The mock agent echoes each message back, streaming it in small chunks
with one simulated tool call. Messages starting with "fail:" produce an
agent error instead.

Examples:
  speakmcp mock
  speakmcp mock --listen 127.0.0.1:4000 --mock-key sk-test
  speakmcp --server http://127.0.0.1:3210/v1 --api-key any send "hi"`

const mockShortDesc string = "Run a local mock server"

type mockCommander struct {
	listen string
	key    string
	model  string
	delay  time.Duration
	chunk  int
}

func NewMockCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: mockShortDesc,
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			return cmder.run(cmd, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", mockserver.DefaultListenAddr, "Address to listen on")
	cmd.Flags().StringVar(&cmder.key, "mock-key", "", "Bearer token clients must send (default: accept any)")
	cmd.Flags().StringVar(&cmder.model, "model", mockserver.DefaultModel, "Model name to report")
	cmd.Flags().DurationVar(&cmder.delay, "delay", mockserver.DefaultFrameDelay, "Pause between streamed frames")
	cmd.Flags().IntVar(&cmder.chunk, "chunk", mockserver.DefaultChunkSize, "Characters added per progress frame")

	return cmd
}

func (c *mockCommander) run(cmd *cobra.Command, debug bool) error {
	l := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(cliui.IsTerminal(os.Stderr)),
		logger.WithWriter(cmd.ErrOrStderr()),
	)

	server := mockserver.NewServer(mockserver.Config{
		ListenAddr: c.listen,
		APIKey:     c.key,
		Model:      c.model,
		ChunkSize:  c.chunk,
		FrameDelay: c.delay,
	}, l)

	fmt.Fprintf(cmd.OutOrStdout(), "Mock server listening on %s\n", cliui.KeyStyle.Render("http://"+server.Addr()+"/v1"))

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("mock server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		l.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
