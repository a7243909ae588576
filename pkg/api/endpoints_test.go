package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

var _ = Describe("Endpoints", func() {
	var (
		server    *httptest.Server
		client    *api.Client
		responses map[string]string
		last      recorded
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		responses = map[string]string{}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			last = recorded{method: r.Method, path: r.URL.EscapedPath()}
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&last.body)
			}
			resp, ok := responses[r.Method+" "+r.URL.EscapedPath()]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, resp)
		}))

		var err error
		client, err = api.New(api.Options{BaseURL: server.URL + "/v1", APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("lists and toggles MCP servers", func() {
		responses["GET /v1/mcp/servers"] = `{"servers":[{"name":"github","enabled":true,"connected":true,"toolCount":12}]}`
		responses["POST /v1/mcp/servers/my%20fs/toggle"] = `{"success":true,"server":"my fs","enabled":false}`

		servers, err := client.Servers(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(servers).To(Equal([]api.MCPServer{{Name: "github", Enabled: true, Connected: true, ToolCount: 12}}))

		res, err := client.ToggleServer(ctx, "my fs", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeTrue())
		Expect(last.body).To(HaveKeyWithValue("enabled", false))
	})

	It("lists tools with an empty body and calls a tool", func() {
		responses["POST /v1/mcp/tools/list"] = `{"tools":[{"name":"fs:read","description":"Read a file"}]}`
		responses["POST /v1/mcp/tools/call"] = `{"content":[{"type":"text","text":"one"},{"type":"image"},{"type":"text","text":"two"}]}`

		tools, err := client.Tools(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tools[0].Name).To(Equal("fs:read"))
		Expect(last.body).To(BeEmpty())

		res, err := client.CallTool(ctx, "fs:read", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Text()).To(Equal("one\ntwo"))
		Expect(last.body).To(HaveKeyWithValue("name", "fs:read"))
		Expect(last.body).To(HaveKeyWithValue("arguments", BeEmpty()))
	})

	It("reads profiles and switches by id", func() {
		responses["GET /v1/profiles"] = `{"profiles":[{"id":"p1","name":"Default"}],"currentProfileId":"p1"}`
		responses["POST /v1/profiles/current"] = `{"id":"p2","name":"Coder"}`

		list, err := client.Profiles(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list.CurrentProfileID).To(Equal("p1"))

		p, err := client.SwitchProfile(ctx, "p2")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name).To(Equal("Coder"))
		Expect(last.body).To(HaveKeyWithValue("profileId", "p2"))
	})

	It("reads conversations", func() {
		responses["GET /v1/conversations"] = `{"conversations":[{"id":"c1","title":"Hello","messageCount":2}]}`
		responses["GET /v1/conversations/c1"] = `{"id":"c1","title":"Hello","messages":[{"role":"user","content":"hi"}]}`
		responses["DELETE /v1/conversations/c1"] = `{}`

		list, err := client.Conversations(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))

		conv, err := client.Conversation(ctx, "c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(conv.Messages[0].Content).To(Equal("hi"))

		Expect(client.DeleteConversation(ctx, "c1")).To(Succeed())
		Expect(last.method).To(Equal(http.MethodDelete))

		_, err = client.Conversation(ctx, "missing")
		Expect(err).To(MatchError(api.ErrNotFound))
	})

	It("reads presets out of settings and patches the current one", func() {
		responses["GET /v1/settings"] = `{
			"theme":"dark",
			"availablePresets":[{"id":"openai","name":"OpenAI","baseUrl":"https://api.openai.com/v1","isBuiltIn":true}],
			"currentModelPresetId":"openai"
		}`
		responses["PATCH /v1/settings"] = `{"success":true,"updated":["currentModelPresetId"]}`

		settings, err := client.Settings(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings).To(HaveKeyWithValue("theme", "dark"))

		presets, current, err := settings.Presets()
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(Equal("openai"))
		Expect(presets).To(Equal([]api.ModelPreset{{ID: "openai", Name: "OpenAI", BaseURL: "https://api.openai.com/v1", IsBuiltIn: true}}))

		res, err := client.PatchSettings(ctx, map[string]any{"currentModelPresetId": "openai"})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeTrue())
		Expect(last.method).To(Equal(http.MethodPatch))
	})

	It("posts single setting updates with typed values", func() {
		responses["POST /v1/settings"] = `{"success":true}`

		_, err := client.UpdateSetting(ctx, "autoSubmit", api.ParseSettingValue("TRUE"))
		Expect(err).NotTo(HaveOccurred())
		Expect(last.body).To(HaveKeyWithValue("key", "autoSubmit"))
		Expect(last.body).To(HaveKeyWithValue("value", true))
	})

	It("reads memories with either importance encoding", func() {
		responses["GET /v1/memories"] = `{"memories":[
			{"id":"m1","content":"likes go","importance":"high","tags":["lang"],"createdAt":1700000000000},
			{"id":"m2","content":"uses vim","importance":3,"createdAt":1700000000000}
		]}`
		responses["DELETE /v1/memories/m1"] = ``

		memories, err := client.Memories(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(memories[0].Importance).To(Equal(api.Importance("high")))
		Expect(memories[1].Importance).To(Equal(api.Importance("3")))
		Expect(memories[0].Created().UnixMilli()).To(Equal(int64(1700000000000)))

		Expect(client.DeleteMemory(ctx, "m1")).To(Succeed())
	})

	It("executes the emergency stop", func() {
		responses["POST /v1/emergency-stop"] = `{"success":true,"message":"stopped 2 sessions"}`

		res, err := client.EmergencyStop(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Message).To(Equal("stopped 2 sessions"))
	})

	It("reads health, errors, and skills", func() {
		responses["GET /v1/health"] = `{"status":"ok","version":"1.2.0","uptime":42}`
		responses["GET /v1/errors"] = `{"errors":[{"timestamp":"2026-01-01T00:00:00Z","message":"boom"}]}`
		responses["GET /v1/skills"] = `{"skills":[{"id":"s1","name":"Summarize","enabled":true}]}`

		h, err := client.Health(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(*h.Uptime).To(Equal(int64(42)))

		errs, err := client.Errors(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(errs[0].Message).To(Equal("boom"))

		skills, err := client.Skills(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(skills[0].Name).To(Equal("Summarize"))
	})
})

var _ = Describe("ParseSettingValue", func() {
	DescribeTable("infers the JSON type",
		func(in string, expected any) {
			Expect(api.ParseSettingValue(in)).To(Equal(expected))
		},
		Entry("true", "true", true),
		Entry("mixed case false", "False", false),
		Entry("integer", "42", int64(42)),
		Entry("negative integer", "-7", int64(-7)),
		Entry("float", "0.5", 0.5),
		Entry("string", "dark", "dark"),
		Entry("NaN stays a string", "NaN", "NaN"),
		Entry("empty string", "", ""),
	)
})

var _ = Describe("ResolvePreset", func() {
	presets := []api.ModelPreset{
		{ID: "openai", Name: "OpenAI"},
		{ID: "groq", Name: "openai"},
		{ID: "custom-1", Name: "My Local"},
	}

	It("prefers an exact id match", func() {
		p, err := api.ResolvePreset(presets, "openai")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.ID).To(Equal("openai"))
	})

	It("falls back to a case-insensitive name", func() {
		p, err := api.ResolvePreset(presets, "my local")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.ID).To(Equal("custom-1"))
	})

	It("explains how to list presets when nothing matches", func() {
		_, err := api.ResolvePreset(presets, "nope")
		Expect(err).To(MatchError("Preset 'nope' not found. Use 'speakmcp presets list' to see available presets."))
	})
})
