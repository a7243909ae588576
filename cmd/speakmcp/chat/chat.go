// Package chatcmder provides the chat command for interactive sessions
// with the SpeakMCP agent.
package chatcmder

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/chat"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

const chatLongDesc string = `Start an interactive chat session with the SpeakMCP agent.

Each line you enter is sent as one turn. Answers stream in as the agent
produces them, with tool calls shown as they happen. Ctrl+C cancels the
running turn without leaving the session; Ctrl+D or /quit exits.

Edits to cli.toml are picked up before the next turn.

REPL commands:
  /new, /clear       Start a new conversation
  /status            Show server and conversation
  /help, /?          Show help
  /quit, /exit, /q   Exit

Examples:
  speakmcp chat
  speakmcp chat -c conv_123
  speakmcp chat --no-stream`

const chatShortDesc string = "Start an interactive chat session"

// Options is one interactive session.
type Options struct {
	ConversationID string
	NoStream       bool
}

type chatCommander struct {
	conversation string
	noStream     bool
	model        string
	timeout      string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Interactive(cmd, Options{
				ConversationID: cmder.conversation,
				NoStream:       cmder.noStream,
			})
		},
	}

	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Conversation ID to continue")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for complete answers instead of streaming")
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

// Interactive runs the REPL for cmd. It is shared with the root command and
// "history continue".
func Interactive(cmd *cobra.Command, opts Options) error {
	return cmdenv.Run(cmd, func(ctx context.Context, env *cmdenv.Env) error {
		stream := env.Config.Chat.Stream && !opts.NoStream

		runner, err := env.Runner(ctx, stream)
		if err != nil {
			return err
		}

		conversationID := opts.ConversationID
		if conversationID == "" {
			conversationID = env.Config.Chat.DefaultConversationID
		}

		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)

		replOpts := chat.REPLOptions{
			In:             cmd.InOrStdin(),
			Out:            env.Out,
			Err:            env.Err,
			Server:         env.Config.Server.URL,
			ConversationID: conversationID,
			Interrupts:     interrupts,
			Logger:         env.Logger,
		}

		// A missing watcher only costs hot reload.
		if path, err := env.ConfigPath(); err == nil {
			watcher, werr := config.Watch(ctx, path)
			if werr != nil {
				env.Logger.Debug("config watch unavailable", "error", werr)
			} else {
				defer watcher.Close()
				replOpts.ConfigChanged = watcher.Changes()
				replOpts.Reload = func() (*chat.Runner, string, error) {
					if err := env.Reload(cmd); err != nil {
						return nil, "", err
					}
					r, err := env.Runner(ctx, env.Config.Chat.Stream && !opts.NoStream)
					if err != nil {
						return nil, "", err
					}
					env.Logger.Debug("config reloaded", "server", env.Config.Server.URL)
					return r, env.Config.Server.URL, nil
				}
			}
		}

		return chat.NewREPL(runner, replOpts).Run(ctx)
	})
}
