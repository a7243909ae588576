package agent_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

var _ = Describe("Decode", func() {
	DescribeTable("returns no event for keep-alive payloads",
		func(raw string) {
			Expect(agent.Decode(raw)).To(BeNil())
		},
		Entry("empty", ""),
		Entry("whitespace", "   \n\t"),
		Entry("done sentinel", "[DONE]"),
		Entry("padded done sentinel", "  [DONE]\n"),
	)

	DescribeTable("falls back to Unknown for malformed input",
		func(raw string) {
			ev := agent.Decode(raw)
			Expect(ev).To(BeAssignableToTypeOf(&agent.UnknownEvent{}))
			Expect(ev.(*agent.UnknownEvent).Raw).To(Equal(raw))
		},
		Entry("not json", "hello"),
		Entry("truncated json", `{"type":"progress","data":{`),
		Entry("json array", `[1,2,3]`),
		Entry("json null", `null`),
		Entry("missing type", `{"data":{}}`),
		Entry("non-string type", `{"type":7,"data":{}}`),
		Entry("unrecognized type", `{"type":"heartbeat","data":{}}`),
		Entry("data is a string", `{"type":"done","data":"Hello"}`),
		Entry("data missing", `{"type":"error"}`),
		Entry("done without content", `{"type":"done","data":{"model":"gpt-4o"}}`),
		Entry("done with wrong content type", `{"type":"done","data":{"content":5}}`),
		Entry("error without message", `{"type":"error","data":{"code":429}}`),
		Entry("progress with wrong steps type", `{"type":"progress","data":{"steps":"nope"}}`),
		Entry("progress with wrong streaming type", `{"type":"progress","data":{"streamingContent":{"text":1}}}`),
		Entry("empty progress", `{"type":"progress","data":{}}`),
		Entry("progress with only streaming content", `{"type":"progress","data":{"streamingContent":{"text":"Hel","isStreaming":true}}}`),
		Entry("progress without sessionId", `{"type":"progress","data":{"currentIteration":1,"maxIterations":10,"steps":[],"isComplete":false}}`),
		Entry("progress with null sessionId", `{"type":"progress","data":{"sessionId":null,"currentIteration":1,"maxIterations":10,"steps":[],"isComplete":false}}`),
		Entry("progress without currentIteration", `{"type":"progress","data":{"sessionId":"s","maxIterations":10,"steps":[],"isComplete":false}}`),
		Entry("progress without maxIterations", `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"steps":[],"isComplete":false}}`),
		Entry("progress without steps", `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"maxIterations":10,"isComplete":false}}`),
		Entry("progress without isComplete", `{"type":"progress","data":{"sessionId":"s","currentIteration":1,"maxIterations":10,"steps":[]}}`),
	)

	It("accepts a progress frame carrying only the required fields", func() {
		ev := agent.Decode(`{"type":"progress","data":{"sessionId":"s","currentIteration":0,"maxIterations":0,"steps":[],"isComplete":true}}`)
		Expect(ev).To(BeAssignableToTypeOf(&agent.ProgressEvent{}))

		u := ev.(*agent.ProgressEvent).Update
		Expect(u.SessionID).To(Equal("s"))
		Expect(u.Steps).To(BeEmpty())
		Expect(u.IsComplete).To(BeTrue())
		Expect(u.StreamingContent).To(BeNil())
	})

	It("decodes a progress frame with camelCase fields", func() {
		raw := `{"type":"progress","data":{
			"sessionId":"s1","conversationId":"c1","conversationTitle":"Greeting",
			"currentIteration":2,"maxIterations":10,"isComplete":false,"isSnoozed":true,
			"steps":[{"id":"st1","type":"tool_call","title":"Search","status":"running",
				"toolCall":{"name":"search","arguments":{"q":"go"},"serverName":"web"}}],
			"streamingContent":{"text":"Hel","isStreaming":true}}}`

		ev := agent.Decode(raw)
		Expect(ev).To(BeAssignableToTypeOf(&agent.ProgressEvent{}))

		u := ev.(*agent.ProgressEvent).Update
		Expect(u.SessionID).To(Equal("s1"))
		Expect(u.ConversationID).To(Equal("c1"))
		Expect(u.ConversationTitle).To(Equal("Greeting"))
		Expect(u.CurrentIteration).To(Equal(2))
		Expect(u.MaxIterations).To(Equal(10))
		Expect(*u.IsSnoozed).To(BeTrue())
		Expect(u.StreamingContent).NotTo(BeNil())
		Expect(u.StreamingContent.Text).To(Equal("Hel"))
		Expect(u.StreamingContent.IsStreaming).To(BeTrue())
		Expect(u.Steps).To(HaveLen(1))
		Expect(u.Steps[0].Kind).To(Equal("tool_call"))
		Expect(u.Steps[0].ToolCall.Name).To(Equal("search"))
		Expect(u.Steps[0].ToolCall.ServerName).To(Equal("web"))
		Expect(string(u.Steps[0].ToolCall.Arguments)).To(MatchJSON(`{"q":"go"}`))
	})

	It("decodes a done frame with camelCase conversation fields", func() {
		ev := agent.Decode(`{"type":"done","data":{"content":"Hi","conversationId":"c9","model":"gpt-4o",
			"conversationHistory":[{"role":"user","content":"Hello"}]}}`)
		Expect(ev).To(BeAssignableToTypeOf(&agent.DoneEvent{}))

		p := ev.(*agent.DoneEvent).Payload
		Expect(p.Content).To(Equal("Hi"))
		Expect(p.ConversationID).To(Equal("c9"))
		Expect(p.Model).To(Equal("gpt-4o"))
		Expect(p.ConversationHistory).To(HaveLen(1))
	})

	It("accepts snake_case conversation fields on done frames", func() {
		ev := agent.Decode(`{"type":"done","data":{"content":"Hi","conversation_id":"c7",
			"conversation_history":[{"role":"assistant","content":"Hi","toolCalls":[{"name":"x"}]}]}}`)
		p := ev.(*agent.DoneEvent).Payload
		Expect(p.ConversationID).To(Equal("c7"))
		Expect(p.ConversationHistory).To(HaveLen(1))
		Expect(p.ConversationHistory[0].ToolCalls[0].Name).To(Equal("x"))
	})

	It("accepts an empty content string on done frames", func() {
		ev := agent.Decode(`{"type":"done","data":{"content":""}}`)
		Expect(ev).To(BeAssignableToTypeOf(&agent.DoneEvent{}))
	})

	It("decodes an error frame", func() {
		ev := agent.Decode(`{"type":"error","data":{"message":"rate limited"}}`)
		Expect(ev).To(Equal(&agent.ErrorEvent{Message: "rate limited"}))
	})

	It("trims surrounding whitespace before parsing", func() {
		ev := agent.Decode("  {\"type\":\"error\",\"data\":{\"message\":\"x\"}}\n")
		Expect(ev).To(Equal(&agent.ErrorEvent{Message: "x"}))
	})
})
