package mockserver

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

var _ = Describe("turn frames", func() {
	replay := func(frames []string) ([]agent.Emission, agent.Continuation, *agent.Session) {
		session := agent.NewSession(nil)
		var (
			out  []agent.Emission
			cont agent.Continuation
		)
		for _, f := range frames {
			if f == agent.DoneSentinel {
				break
			}
			var ems []agent.Emission
			ems, cont = session.Apply(agent.Decode(f))
			out = append(out, ems...)
			if cont.Terminal() {
				break
			}
		}
		return out, cont, session
	}

	It("scripts a tool call, streamed text and a done frame", func() {
		frames, err := turn{
			sessionID:      "s-1",
			conversationID: "c-1",
			prompt:         "hello there",
			reply:          Reply("hello there"),
			model:          "mock-agent",
			chunkSize:      4,
		}.frames()
		Expect(err).NotTo(HaveOccurred())
		Expect(frames[len(frames)-1]).To(Equal(agent.DoneSentinel))

		ems, cont, session := replay(frames)
		Expect(cont.Outcome).To(Equal(agent.StopOK))

		var text strings.Builder
		var kinds []agent.EmissionKind
		for _, em := range ems {
			kinds = append(kinds, em.Kind)
			if em.Kind == agent.EmissionText {
				text.WriteString(em.Text)
			}
		}
		Expect(text.String()).To(Equal("Echo: hello there"))
		Expect(kinds).To(ContainElement(agent.EmissionToolCall))

		toolResults := 0
		for _, k := range kinds {
			if k == agent.EmissionToolResult {
				toolResults++
			}
		}
		Expect(toolResults).To(Equal(1))

		Expect(session.Result().ConversationID).To(Equal("c-1"))
		Expect(session.Result().Model).To(Equal("mock-agent"))
	})

	It("streams multi-byte replies on rune boundaries", func() {
		frames, err := turn{prompt: "héllo wörld", reply: Reply("héllo wörld"), chunkSize: 3}.frames()
		Expect(err).NotTo(HaveOccurred())

		ems, _, _ := replay(frames)
		var text strings.Builder
		for _, em := range ems {
			if em.Kind == agent.EmissionText {
				text.WriteString(em.Text)
			}
		}
		Expect(text.String()).To(Equal("Echo: héllo wörld"))
	})

	It("answers fail: prompts with an error frame", func() {
		frames, err := turn{prompt: "fail: tool crashed", chunkSize: 4}.frames()
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(2))

		_, cont, _ := replay(frames)
		Expect(cont.Outcome).To(Equal(agent.StopErr))
		Expect(cont.Message).To(Equal("tool crashed"))
	})

	It("uses a default failure message", func() {
		frames, err := turn{prompt: "fail:", chunkSize: 4}.frames()
		Expect(err).NotTo(HaveOccurred())

		_, cont, _ := replay(frames)
		Expect(cont.Message).To(Equal("mock agent failure"))
	})

	DescribeTable("Reply",
		func(prompt, want string) {
			Expect(Reply(prompt)).To(Equal(want))
		},
		Entry("echoes", "hi", "Echo: hi"),
		Entry("trims", "  hi \n", "Echo: hi"),
		Entry("empty", "   ", "You sent an empty message."),
	)
})

var _ = Describe("title", func() {
	It("collapses whitespace and truncates long prompts", func() {
		Expect(title("a\n  b")).To(Equal("a b"))
		Expect(title(strings.Repeat("x", 50))).To(Equal(strings.Repeat("x", 40) + "..."))
	})
})
