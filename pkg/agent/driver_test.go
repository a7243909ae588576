package agent_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

// fakeSource replays frames, then returns tail (io.EOF when nil).
type fakeSource struct {
	mu     sync.Mutex
	frames []string
	tail   error
	block  bool
	read   int
	closed bool
}

func (f *fakeSource) Next(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.read < len(f.frames) {
		fr := f.frames[f.read]
		f.read++
		f.mu.Unlock()
		return fr, nil
	}
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.tail != nil {
		return "", f.tail
	}
	return "", io.EOF
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeTransport struct {
	src     *fakeSource
	openErr error
	got     agent.ChatRequest
}

func (t *fakeTransport) Open(_ context.Context, req agent.ChatRequest) (agent.FrameSource, error) {
	t.got = req
	if t.openErr != nil {
		return nil, t.openErr
	}
	return t.src, nil
}

const (
	frameHel     = `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"maxIterations":10,"steps":[],"isComplete":false,"streamingContent":{"text":"Hel","isStreaming":true}}}`
	frameHello   = `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"maxIterations":10,"steps":[],"isComplete":false,"streamingContent":{"text":"Hello","isStreaming":true}}}`
	frameDone    = `{"type":"done","data":{"content":"Hello world","conversationId":"conv-1"}}`
	frameError   = `{"type":"error","data":{"message":"rate limited"}}`
	frameWorking = `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"maxIterations":10,"steps":[],"isComplete":false}}`
)

var _ = Describe("Driver", func() {
	var (
		src       *fakeSource
		transport *fakeTransport
		driver    *agent.Driver
		received  []string
		sink      agent.Sink
	)

	BeforeEach(func() {
		src = &fakeSource{}
		transport = &fakeTransport{src: src}
		driver = agent.NewDriver(transport, nil)
		received = nil
		sink = func(em agent.Emission) {
			if em.Kind == agent.EmissionText {
				received = append(received, em.Text)
			}
		}
	})

	It("forces streaming on the outbound request", func() {
		src.frames = []string{frameDone}
		_, err := driver.Run(context.Background(), agent.ChatRequest{Message: "hi", ConversationID: "c"}, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(transport.got.Stream).To(BeTrue())
		Expect(transport.got.Message).To(Equal("hi"))
		Expect(transport.got.ConversationID).To(Equal("c"))
	})

	It("streams suffixes and returns the final result", func() {
		src.frames = []string{frameHel, frameHello, frameDone}

		res, err := driver.Run(context.Background(), agent.ChatRequest{Message: "hi"}, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(received).To(Equal([]string{"Hel", "lo", " world"}))
		Expect(res.Content).To(Equal("Hello world"))
		Expect(res.ConversationID).To(Equal("conv-1"))
		Expect(src.isClosed()).To(BeTrue())
	})

	It("stops reading after the done frame", func() {
		src.frames = []string{frameDone, frameError, frameHello}

		_, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(src.read).To(Equal(1))
		Expect(src.isClosed()).To(BeTrue())
	})

	It("returns a remote error and keeps earlier output delivered", func() {
		src.frames = []string{frameHel, frameError, frameDone}

		res, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(res).To(BeNil())
		Expect(errors.Is(err, agent.ErrRemote)).To(BeTrue())

		var serr *agent.SessionError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Kind).To(Equal(agent.KindRemote))
		Expect(serr.Message).To(Equal("rate limited"))
		Expect(received).To(Equal([]string{"Hel"}))
		Expect(src.isClosed()).To(BeTrue())
	})

	It("reports an incomplete stream when the source ends early", func() {
		src.frames = []string{frameWorking}

		_, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(errors.Is(err, agent.ErrIncompleteStream)).To(BeTrue())
		Expect(errors.Is(err, agent.ErrTransport)).To(BeFalse())
		Expect(src.isClosed()).To(BeTrue())
	})

	It("treats [DONE] and empty frames as no-ops", func() {
		src.frames = []string{"", "[DONE]", frameHel, "[DONE]", frameDone}

		res, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Content).To(Equal("Hello world"))
		Expect(received).To(Equal([]string{"Hel", "lo world"}))
	})

	It("skips unknown frames", func() {
		src.frames = []string{"not json", `{"type":"ping","data":{}}`, frameDone}

		res, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Content).To(Equal("Hello world"))
	})

	It("wraps source failures as transport errors", func() {
		cause := errors.New("connection reset")
		src.frames = []string{frameHel}
		src.tail = cause

		_, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(errors.Is(err, agent.ErrTransport)).To(BeTrue())
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(received).To(Equal([]string{"Hel"}))
		Expect(src.isClosed()).To(BeTrue())
	})

	It("wraps open failures as transport errors", func() {
		transport.openErr = errors.New("dial tcp: refused")

		_, err := driver.Run(context.Background(), agent.ChatRequest{}, sink)
		Expect(errors.Is(err, agent.ErrTransport)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("refused"))
	})

	It("closes the source and reports cancellation as a transport error", func() {
		src.frames = []string{frameHel}
		src.block = true

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			_, err := driver.Run(ctx, agent.ChatRequest{}, sink)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		var err error
		Eventually(errCh).Should(Receive(&err))
		Expect(errors.Is(err, agent.ErrTransport)).To(BeTrue())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(src.isClosed()).To(BeTrue())
	})

	It("discards frames that arrive after cancellation", func() {
		src.frames = []string{frameDone}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := driver.Run(ctx, agent.ChatRequest{}, sink)
		Expect(res).To(BeNil())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(received).To(BeEmpty())
	})
})
