package chat_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

// fakeClient replays scripted frames and records requests.
type fakeClient struct {
	mu       sync.Mutex
	frames   [][]string
	block    bool
	chatRes  *agent.FinalResult
	chatErr  error
	requests []agent.ChatRequest
}

func (f *fakeClient) Open(_ context.Context, req agent.ChatRequest) (agent.FrameSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.frames) == 0 {
		return nil, errors.New("no scripted turn")
	}
	frames := f.frames[0]
	f.frames = f.frames[1:]
	return &fakeSource{frames: frames, block: f.block}, nil
}

func (f *fakeClient) Chat(_ context.Context, req agent.ChatRequest) (*agent.FinalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	return f.chatRes, f.chatErr
}

func (f *fakeClient) Requests() []agent.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]agent.ChatRequest(nil), f.requests...)
}

type fakeSource struct {
	frames []string
	block  bool
}

func (s *fakeSource) Next(ctx context.Context) (string, error) {
	if len(s.frames) == 0 {
		if s.block {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "", io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *fakeSource) Close() error { return nil }

func progressFrame(text string) string {
	return `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"maxIterations":10,"steps":[],"isComplete":false,"streamingContent":{"text":"` + text + `","isStreaming":true}}}`
}

func doneFrame(content, conv string) string {
	return `{"type":"done","data":{"content":"` + content + `","conversation_id":"` + conv + `","model":"m"}}`
}
