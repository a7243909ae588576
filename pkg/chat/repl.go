package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

const maxInputLine = 1024 * 1024

// REPLOptions configures a REPL.
type REPLOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Server is shown by /status.
	Server string

	// ConversationID is continued by the first turn.
	ConversationID string

	// Interrupts cancels the running turn. At the prompt it only prints a
	// hint; Ctrl+D or /quit leaves.
	Interrupts <-chan os.Signal

	// ConfigChanged triggers Reload before the next turn.
	ConfigChanged <-chan struct{}

	// Reload builds a runner from the re-read config.
	Reload func() (*Runner, string, error)

	Logger *slog.Logger
}

// REPL is the interactive chat loop. Turns run strictly one after another.
type REPL struct {
	runner *Runner
	opts   REPLOptions
	logger *slog.Logger

	conversationID string
}

// NewREPL returns a REPL driving runner.
func NewREPL(runner *Runner, opts REPLOptions) *REPL {
	l := opts.Logger
	if l == nil {
		l = logger.Nop()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Err == nil {
		opts.Err = io.Discard
	}

	return &REPL{
		runner:         runner,
		opts:           opts,
		logger:         l,
		conversationID: opts.ConversationID,
	}
}

// ConversationID is the conversation the next turn continues.
func (r *REPL) ConversationID() string {
	return r.conversationID
}

type inputLine struct {
	text string
	err  error
	eof  bool
}

// Run reads lines until EOF, /quit or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	out := r.opts.Out

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", cliui.HeaderStyle.Render("SpeakMCP chat"))
	if r.conversationID != "" {
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Continuing:"), cliui.HashStyle.Render(r.conversationID))
	}
	r.printHelp()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, r.opts.In)

	for {
		r.reloadIfChanged()

		fmt.Fprint(out, cliui.UserPromptStyle.Render("you>")+" ")

		var (
			line inputLine
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case <-r.opts.Interrupts:
			fmt.Fprintf(out, "\n  %s\n", cliui.DimStyle.Render("(use /quit or Ctrl+D to exit)"))
			continue
		case line, ok = <-lines:
		}

		if !ok {
			return nil
		}
		if line.err != nil {
			return fmt.Errorf("reading input: %w", line.err)
		}
		if line.eof {
			fmt.Fprintln(out)
			return nil
		}

		input := strings.TrimSpace(line.text)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}

		r.turn(ctx, input)
	}
}

// command handles a slash command and reports whether the REPL should exit.
func (r *REPL) command(input string) bool {
	out := r.opts.Out

	switch input {
	case "/exit", "/quit", "/q":
		fmt.Fprintln(out, cliui.DimStyle.Render("Goodbye!"))
		return true

	case "/new", "/clear":
		r.conversationID = ""
		fmt.Fprintln(out, cliui.WarnStyle.Render("Started new conversation."))

	case "/help", "/?":
		r.printHelp()

	case "/status":
		conv := r.conversationID
		if conv == "" {
			conv = "(none)"
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s\n", cliui.HeaderStyle.Render("Status"))
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Server:"), cliui.ValueStyle.Render(r.opts.Server))
		fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Conversation:"), cliui.DimStyle.Render(conv))
		fmt.Fprintf(out, "  %s %t\n\n", cliui.KeyStyle.Render("Streaming:"), r.runner.Streaming())

	default:
		fmt.Fprintln(out, cliui.ErrorStyle.Render("Unknown command: "+input))
	}

	return false
}

func (r *REPL) turn(ctx context.Context, input string) {
	fmt.Fprint(r.opts.Out, cliui.AgentPromptStyle.Render("agent>")+" ")

	turnCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		select {
		case <-r.opts.Interrupts:
			cancel()
		case <-done:
		}
	}()

	res, err := r.runner.Turn(turnCtx, input, r.conversationID)
	close(done)
	cancelled := turnCtx.Err() != nil && ctx.Err() == nil
	cancel()

	switch {
	case err == nil:
		if res.ConversationID != "" {
			r.conversationID = res.ConversationID
		}
	case cancelled:
		fmt.Fprintf(r.opts.Err, "%s\n", cliui.WarnStyle.Render("Cancelled."))
	default:
		fmt.Fprintf(r.opts.Err, "%s\n", cliui.ErrorStyle.Render("Error: "+err.Error()))
	}

	fmt.Fprintln(r.opts.Out)
}

func (r *REPL) reloadIfChanged() {
	if r.opts.ConfigChanged == nil || r.opts.Reload == nil {
		return
	}

	select {
	case <-r.opts.ConfigChanged:
	default:
		return
	}

	runner, server, err := r.opts.Reload()
	if err != nil {
		r.logger.Warn("config reload failed, keeping previous settings", "error", err)
		return
	}

	r.runner = runner
	r.opts.Server = server
	fmt.Fprintf(r.opts.Out, "  %s\n", cliui.DimStyle.Render("Config reloaded."))
}

func (r *REPL) printHelp() {
	out := r.opts.Out
	cmd := cliui.KeyStyle.Render

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", cliui.HeaderStyle.Render("Commands:"))
	fmt.Fprintf(out, "    %s     Start a new conversation\n", cmd("/new"))
	fmt.Fprintf(out, "    %s  Show connection status\n", cmd("/status"))
	fmt.Fprintf(out, "    %s    Show this help\n", cmd("/help"))
	fmt.Fprintf(out, "    %s    Exit\n", cmd("/quit"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("Ctrl+C cancels a running request. Ctrl+D exits."))
	fmt.Fprintln(out)
}

// readLines scans in on its own goroutine so the prompt can also wait on
// interrupts. The channel yields a final eof or err entry and is closed when
// the goroutine exits, which it also does once ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	ch := make(chan inputLine)

	send := func(line inputLine) bool {
		select {
		case ch <- line:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)

		for scanner.Scan() {
			if !send(inputLine{text: scanner.Text()}) {
				return
			}
		}

		err := scanner.Err()
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if err != nil {
			send(inputLine{err: err})
			return
		}
		send(inputLine{eof: true})
	}()

	return ch
}
