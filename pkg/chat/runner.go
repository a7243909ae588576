// Package chat runs chat turns for the speakmcp commands: one-shot sends,
// the interactive REPL, and the bookkeeping done after each turn.
package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

// Client is what a Runner needs from pkg/api.
type Client interface {
	agent.Transport
	Chat(ctx context.Context, req agent.ChatRequest) (*agent.FinalResult, error)
}

// Options configures a Runner.
type Options struct {
	// Stream uses the SSE transport and prints text as it arrives.
	Stream bool

	// ShowToolCalls prints tool notices on Err.
	ShowToolCalls bool

	// Markdown renders non-streamed answers with glamour.
	Markdown bool

	// Model overrides the client's default model.
	Model string

	// Out receives assistant text. Err receives notices.
	Out io.Writer
	Err io.Writer

	// Recorder persists completed turns. Optional.
	Recorder *Recorder

	Logger *slog.Logger
}

// Runner sends chat turns and prints their output.
type Runner struct {
	client Client
	driver *agent.Driver
	opts   Options
	logger *slog.Logger
}

// NewRunner returns a Runner over client.
func NewRunner(client Client, opts Options) *Runner {
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

	return &Runner{
		client: client,
		driver: agent.NewDriver(client, l),
		opts:   opts,
		logger: l,
	}
}

// Streaming reports whether turns use the SSE transport.
func (r *Runner) Streaming() bool {
	return r.opts.Stream
}

// Turn sends message, continuing conversationID when set, and prints the
// answer. Streamed text already printed stays printed when the turn fails.
func (r *Runner) Turn(ctx context.Context, message, conversationID string) (*agent.FinalResult, error) {
	req := agent.ChatRequest{
		Model:          r.opts.Model,
		Message:        message,
		ConversationID: conversationID,
	}

	var (
		res *agent.FinalResult
		err error
	)
	if r.opts.Stream {
		res, err = r.stream(ctx, req)
	} else {
		res, err = r.complete(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if r.opts.Recorder != nil {
		r.opts.Recorder.Record(ctx, message, res)
	}

	return res, nil
}

func (r *Runner) stream(ctx context.Context, req agent.ChatRequest) (*agent.FinalResult, error) {
	w := &lineTracker{w: r.opts.Out}

	res, err := r.driver.Run(ctx, req, func(em agent.Emission) {
		switch em.Kind {
		case agent.EmissionText:
			if _, werr := io.WriteString(w, em.Text); werr != nil {
				r.logger.Debug("writing assistant text", "error", werr)
			}
		case agent.EmissionToolCall, agent.EmissionToolResult:
			if r.opts.ShowToolCalls {
				r.notice(em)
			}
		}
	})

	w.finish()
	return res, err
}

func (r *Runner) complete(ctx context.Context, req agent.ChatRequest) (*agent.FinalResult, error) {
	res, err := r.client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	if r.opts.ShowToolCalls {
		for _, tc := range lastTurnToolCalls(res.History) {
			fmt.Fprintf(r.opts.Err, "%s %s\n", toolMark(), cliui.DimStyle.Render(tc.Name))
		}
	}

	content := res.Content
	if r.opts.Markdown {
		rendered, merr := cliui.RenderMarkdown(content)
		if merr != nil {
			r.logger.Debug("rendering markdown", "error", merr)
		}
		content = rendered
	}

	w := &lineTracker{w: r.opts.Out}
	io.WriteString(w, content)
	w.finish()

	return res, nil
}

func (r *Runner) notice(em agent.Emission) {
	step := em.Step
	if step == nil {
		return
	}

	switch em.Kind {
	case agent.EmissionToolCall:
		name := step.ToolCall.Name
		if step.ToolCall.ServerName != "" {
			name = step.ToolCall.ServerName + ":" + name
		}
		fmt.Fprintf(r.opts.Err, "%s %s\n", toolMark(), cliui.DimStyle.Render(name))

	case agent.EmissionToolResult:
		result := step.ToolResult
		if result.Success {
			fmt.Fprintf(r.opts.Err, "  %s %s\n", cliui.SuccessMark(), cliui.DimStyle.Render(preview(result.Content)))
			return
		}
		msg := result.Error
		if msg == "" {
			msg = result.Content
		}
		fmt.Fprintf(r.opts.Err, "  %s %s\n", cliui.FailMark(), cliui.DimStyle.Render(preview(msg)))
	}
}

func toolMark() string {
	return cliui.WarnStyle.Render("⚙")
}

// preview is the first line of s, cut to fit a notice.
func preview(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return cliui.Truncate(s, 60)
}

// lastTurnToolCalls returns the tool calls made after the last user message.
func lastTurnToolCalls(history []agent.ConversationMessage) []agent.ToolCall {
	var calls []agent.ToolCall
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role == "user" {
			break
		}
		// Prepend so calls keep their original order.
		calls = append(append([]agent.ToolCall(nil), msg.ToolCalls...), calls...)
	}
	return calls
}

// lineTracker remembers whether the last byte written was a newline so the
// answer can be terminated with exactly one.
type lineTracker struct {
	w       io.Writer
	written bool
	last    byte
}

func (t *lineTracker) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := t.w.Write(p)
	if n > 0 {
		t.written = true
		t.last = p[n-1]
	}
	return n, err
}

func (t *lineTracker) finish() {
	if t.written && t.last != '\n' {
		io.WriteString(t.w, "\n")
	}
}
