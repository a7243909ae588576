// Package sendcmder provides the send command for one-shot chat turns.
package sendcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
	"github.com/speakmcp/speakmcp-cli/pkg/dotdir"
)

const sendLongDesc string = `Send a single message and print the answer.

The answer goes to stdout so it can be piped. The conversation id and any
tool notices go to stderr. Use "-" as the message to read it from stdin.

Streaming follows chat.stream in cli.toml unless --stream is given.
--continue resumes the conversation the last successful turn completed in.

Examples:
  speakmcp send "What's on my calendar today?"
  speakmcp send -c conv_123 "And tomorrow?"
  git diff | speakmcp send -
  speakmcp send --continue "one more thing"`

const sendShortDesc string = "Send a single message and exit"

// ErrNoPreviousConversation is returned by --continue when no turn has
// completed yet.
var ErrNoPreviousConversation = errors.New("no previous conversation to continue")

// Options is one send invocation.
type Options struct {
	Message        string
	ConversationID string
	Continue       bool

	// Stream overrides chat.stream when non-nil.
	Stream *bool
}

type sendCommander struct {
	conversation string
	cont         bool
	stream       bool
	model        string
	timeout      string
}

func NewSendCmd() *cobra.Command {
	cmder := &sendCommander{}

	cmd := &cobra.Command{
		Use:   "send <message|->",
		Short: sendShortDesc,
		Long:  sendLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := Options{
				Message:        args[0],
				ConversationID: cmder.conversation,
				Continue:       cmder.cont,
			}
			if cmd.Flags().Changed("stream") {
				opts.Stream = &cmder.stream
			}
			return Send(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Conversation ID to continue")
	cmd.Flags().BoolVar(&cmder.cont, "continue", false, "Continue the most recent conversation")
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Print the answer as it streams in")
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)

	cmd.MarkFlagsMutuallyExclusive("conversation", "continue")

	return cmd
}

// Send runs one chat turn for cmd. It is shared with the root command's -m.
func Send(cmd *cobra.Command, opts Options) error {
	return cmdenv.Run(cmd, func(ctx context.Context, env *cmdenv.Env) error {
		message, err := readMessage(opts.Message, cmd.InOrStdin())
		if err != nil {
			return err
		}

		conversationID, err := resolveConversation(env, opts)
		if err != nil {
			return err
		}

		stream := env.Config.Chat.Stream
		if opts.Stream != nil {
			stream = *opts.Stream
		}
		// JSON output is the final result only.
		if env.JSON {
			stream = false
			env.Out = io.Discard
		}

		runner, err := env.Runner(ctx, stream)
		if err != nil {
			return err
		}

		// Ctrl+C cancels the turn; the output printed so far stays.
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		res, err := runner.Turn(ctx, message, conversationID)
		if err != nil {
			return err
		}

		if env.JSON {
			return cliui.PrintJSON(cmd.OutOrStdout(), res)
		}

		if res.ConversationID != "" {
			fmt.Fprintf(env.Err, "%s: %s\n", cliui.DimStyle.Render("conversation_id"), res.ConversationID)
		}
		return nil
	})
}

func readMessage(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		if strings.TrimSpace(arg) == "" {
			return "", errors.New("message cannot be empty")
		}
		return arg, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	message := strings.TrimSpace(string(data))
	if message == "" {
		return "", errors.New("no input received on stdin")
	}
	return message, nil
}

func resolveConversation(env *cmdenv.Env, opts Options) (string, error) {
	switch {
	case opts.ConversationID != "":
		return opts.ConversationID, nil

	case opts.Continue:
		last, err := dotdir.NewManager().LoadLastConversation(env.ConfigDir)
		if err != nil {
			return "", err
		}
		if last == nil {
			return "", ErrNoPreviousConversation
		}
		return last.ID, nil

	default:
		return env.Config.Chat.DefaultConversationID, nil
	}
}
