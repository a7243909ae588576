package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

// ChatRequest is one user turn. ConversationID continues an existing
// conversation when set.
type ChatRequest struct {
	Model          string
	Message        string
	ConversationID string
	Stream         bool
}

// FrameSource yields raw SSE data payloads for one turn. Next returns io.EOF
// when the stream ends normally; any other error is a transport failure.
type FrameSource interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Transport opens a frame source for a chat request.
type Transport interface {
	Open(ctx context.Context, req ChatRequest) (FrameSource, error)
}

// Sink receives emissions synchronously and in arrival order.
type Sink func(Emission)

// Driver runs streaming chat turns over a Transport.
type Driver struct {
	transport Transport
	logger    *slog.Logger
}

// NewDriver returns a Driver. A nil logger discards diagnostics.
func NewDriver(t Transport, l *slog.Logger) *Driver {
	if l == nil {
		l = logger.Nop()
	}
	return &Driver{transport: t, logger: l}
}

// Run sends req with streaming enabled and consumes frames until the turn
// terminates. Text already handed to sink stays delivered when Run fails.
// The frame source is closed on every return path.
func (d *Driver) Run(ctx context.Context, req ChatRequest, sink Sink) (*FinalResult, error) {
	if sink == nil {
		sink = func(Emission) {}
	}
	req.Stream = true

	src, err := d.transport.Open(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, transportError(ctxErr)
		}
		return nil, transportError(err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			d.logger.Debug("closing frame source", "error", cerr)
		}
	}()

	session := NewSession(d.logger)
	frames := 0

	for {
		raw, err := src.Next(ctx)

		// A cancelled turn discards whatever the source handed back.
		if ctxErr := ctx.Err(); ctxErr != nil {
			d.logger.Debug("turn cancelled", "frames", frames)
			return nil, transportError(ctxErr)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				d.logger.Debug("stream ended without terminal frame", "frames", frames)
				return nil, incompleteError()
			}
			return nil, transportError(err)
		}
		frames++

		ev := Decode(raw)
		if ev == nil {
			continue
		}

		emissions, cont := session.Apply(ev)
		for _, em := range emissions {
			sink(em)
		}

		switch cont.Outcome {
		case StopOK:
			d.logger.Debug("turn complete", "frames", frames, "printed", session.PrintedLen())
			return session.Result(), nil
		case StopErr:
			return nil, remoteError(cont.Message)
		}
	}
}
