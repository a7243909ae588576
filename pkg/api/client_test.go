package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *api.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))

		var err error
		client, err = api.New(api.Options{
			BaseURL: server.URL + "/v1/",
			APIKey:  "sk-test",
			Model:   "gpt-4o",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("New", func() {
		It("requires a base URL", func() {
			_, err := api.New(api.Options{})
			Expect(err).To(MatchError("server URL is required"))
		})

		It("joins endpoints without doubled slashes", func() {
			Expect(client.Endpoint("/models")).To(Equal(server.URL + "/v1/models"))
			Expect(client.Endpoint("models")).To(Equal(server.URL + "/v1/models"))
		})
	})

	Describe("NewFromConfig", func() {
		It("fails without an api key", func() {
			_, err := api.NewFromConfig(config.NewDefaultConfig(), nil)
			Expect(err).To(MatchError(api.ErrAPIKeyMissing))
			Expect(err.Error()).To(ContainSubstring("speakmcp config set server.api_key"))
		})

		It("builds a client from the config", func() {
			cfg := config.NewDefaultConfig()
			cfg.Server.APIKey = "sk-1"
			c, err := api.NewFromConfig(cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.BaseURL()).To(Equal("http://localhost:3210/v1"))
		})
	})

	Describe("Get", func() {
		It("sends bearer auth and a request id", func() {
			var got *http.Request
			handler = func(w http.ResponseWriter, r *http.Request) {
				got = r
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"object":"list","data":[{"id":"gpt-4o"}]}`)
			}

			models, err := client.Models(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(models).To(HaveLen(1))
			Expect(models[0].ID).To(Equal("gpt-4o"))

			Expect(got.URL.Path).To(Equal("/v1/models"))
			Expect(got.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
			_, err = uuid.Parse(got.Header.Get("X-Request-Id"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports undecodable bodies", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<html>")
			}
			_, err := client.Health(ctx)
			Expect(err).To(MatchError(ContainSubstring("decoding health response")))
		})

		It("wraps connection failures", func() {
			server.Close()
			_, err := client.Health(ctx)
			Expect(err).To(MatchError(ContainSubstring("connecting to")))
			Expect(api.StatusCode(err)).To(Equal(0))
		})
	})

	Describe("typed errors", func() {
		DescribeTable("maps status codes",
			func(status int, sentinel error, prefix string) {
				handler = func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "nope", status)
				}

				err := client.Get(ctx, "health", nil)
				Expect(err).To(HaveOccurred())
				Expect(api.StatusCode(err)).To(Equal(status))
				if sentinel != nil {
					Expect(errors.Is(err, sentinel)).To(BeTrue())
				}
				Expect(err.Error()).To(HavePrefix(prefix))
				Expect(err.Error()).To(ContainSubstring("nope"))
			},
			Entry("401", http.StatusUnauthorized, api.ErrUnauthorized, "Unauthorized (401)"),
			Entry("404", http.StatusNotFound, api.ErrNotFound, "Not Found (404)"),
			Entry("500", http.StatusInternalServerError, api.ErrServer, "Server Error (500)"),
			Entry("503", http.StatusServiceUnavailable, api.ErrServer, "Server Error (503)"),
			Entry("409", http.StatusConflict, nil, "HTTP Error (409)"),
		)

		It("does not match unrelated sentinels", func() {
			err := &api.APIError{Status: http.StatusNotFound}
			Expect(errors.Is(err, api.ErrUnauthorized)).To(BeFalse())
			Expect(err.Error()).To(Equal("Not Found (404): Not Found"))
		})
	})

	Describe("Chat", func() {
		It("posts a non-streaming request and reads the first choice", func() {
			var body api.ChatCompletionRequest
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				io.WriteString(w, `{
					"choices":[{"message":{"role":"assistant","content":"Hi there"}}],
					"conversation_id":"conv-1",
					"conversation_history":[{"role":"user","content":"hello"},{"role":"assistant","content":"Hi there"}]
				}`)
			}

			res, err := client.Chat(ctx, agent.ChatRequest{Message: "hello", ConversationID: "conv-0", Stream: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Content).To(Equal("Hi there"))
			Expect(res.ConversationID).To(Equal("conv-1"))
			Expect(res.History).To(HaveLen(2))

			Expect(body.Stream).To(BeFalse())
			Expect(body.Model).To(Equal("gpt-4o"))
			Expect(body.ConversationID).To(Equal("conv-0"))
			Expect(body.Messages).To(Equal([]api.Message{{Role: "user", Content: "hello"}}))
			Expect(body.MaxTokens).To(BeZero())
		})

		It("fails when choices are missing", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"choices":[]}`)
			}
			_, err := client.Chat(ctx, agent.ChatRequest{Message: "hello"})
			Expect(err).To(MatchError(api.ErrMissingChoices))
		})

		It("sends max_tokens only when configured", func() {
			var raw map[string]any
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&raw)).To(Succeed())
				io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
			}

			_, err := client.Chat(ctx, agent.ChatRequest{Message: "a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).NotTo(HaveKey("max_tokens"))
			Expect(raw).NotTo(HaveKey("conversationId"))

			limited, err := api.New(api.Options{BaseURL: server.URL + "/v1", APIKey: "k", MaxTokens: 256})
			Expect(err).NotTo(HaveOccurred())
			_, err = limited.Chat(ctx, agent.ChatRequest{Message: "a", Model: "other"})
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(HaveKeyWithValue("max_tokens", BeNumerically("==", 256)))
			Expect(raw).To(HaveKeyWithValue("model", "other"))
		})
	})
})
