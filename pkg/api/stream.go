package api

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
	"github.com/speakmcp/speakmcp-cli/pkg/sse"
)

// Open implements agent.Transport. It posts the turn with streaming enabled
// and returns a frame source over the SSE response body.
func (c *Client) Open(ctx context.Context, req agent.ChatRequest) (agent.FrameSource, error) {
	req.Stream = true

	resp, err := c.send(ctx, http.MethodPost, ChatPath, c.completionRequest(req), "text/event-stream")
	if err != nil {
		return nil, err
	}

	c.logger.Debug("stream opened",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return &frameSource{
		body:   resp.Body,
		reader: sse.NewReader(resp.Body, c.dump),
	}, nil
}

var _ agent.Transport = (*Client)(nil)

// frameSource adapts an SSE response body to agent.FrameSource.
type frameSource struct {
	body   io.ReadCloser
	reader *sse.Reader

	closeOnce sync.Once
	closeErr  error
}

// Next returns the data payload of the next SSE event. Events without data
// are skipped. The request context already aborts the body read on
// cancellation, so ctx is only checked between events.
func (s *frameSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		ev, err := s.reader.Next()
		if err != nil {
			return "", err
		}
		if ev == nil {
			return "", io.EOF
		}
		if ev.Data == "" {
			continue
		}
		return ev.Data, nil
	}
}

// Close releases the response body. It is safe to call more than once.
func (s *frameSource) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
