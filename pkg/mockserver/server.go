package mockserver

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

// Server is the mock SpeakMCP remote server.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App

	mu            sync.Mutex
	conversations map[string]*conversation
	state         *appState
	started       time.Time
}

type conversation struct {
	id        string
	title     string
	createdAt int64
	updatedAt int64
	messages  []agent.ConversationMessage
}

type errorResponse struct {
	Error string `json:"error"`
}

// chatRequest accepts both spellings of the conversation id.
type chatRequest struct {
	Model               string           `json:"model"`
	Messages            []requestMessage `json:"messages"`
	ConversationID      string           `json:"conversationId"`
	ConversationIDSnake string           `json:"conversation_id"`
	Stream              bool             `json:"stream"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewServer creates a new mock server. Routes mirror the desktop app's
// /v1 remote API.
func NewServer(config Config, l *slog.Logger) *Server {
	if l == nil {
		l = logger.Nop()
	}

	// Route params are stored as map keys, so they must not alias
	// fasthttp's reused buffers.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	s := &Server{
		config:        config.withDefaults(),
		logger:        l,
		app:           app,
		conversations: map[string]*conversation{},
		state:         newAppState(),
		started:       time.Now(),
	}

	v1 := app.Group("/v1", s.requireAuth)
	v1.Get("/models", s.handleModels)
	v1.Post("/chat/completions", s.handleChat)
	v1.Get("/health", s.handleHealth)
	v1.Get("/conversations", s.handleListConversations)
	v1.Get("/conversations/:id", s.handleGetConversation)
	v1.Delete("/conversations/:id", s.handleDeleteConversation)
	v1.Get("/mcp/servers", s.handleServers)
	v1.Post("/mcp/servers/:name/toggle", s.handleToggleServer)
	v1.Post("/mcp/tools/list", s.handleTools)
	v1.Post("/mcp/tools/call", s.handleCallTool)
	v1.Get("/profiles", s.handleProfiles)
	v1.Get("/profiles/current", s.handleCurrentProfile)
	v1.Post("/profiles/current", s.handleSwitchProfile)
	v1.Get("/settings", s.handleSettings)
	v1.Post("/settings", s.handleUpdateSetting)
	v1.Patch("/settings", s.handlePatchSettings)
	v1.Get("/memories", s.handleMemories)
	v1.Get("/memories/:id", s.handleMemory)
	v1.Delete("/memories/:id", s.handleDeleteMemory)
	v1.Get("/skills", s.handleSkills)
	v1.Get("/errors", s.handleErrors)
	v1.Post("/emergency-stop", s.handleStop)

	return s
}

// App exposes the fiber app, mostly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.config.ListenAddr
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock server",
		"listen", s.config.ListenAddr,
		"auth", s.config.APIKey != "",
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting mock server", "listen", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requireAuth(c *fiber.Ctx) error {
	if s.config.APIKey == "" {
		return c.Next()
	}

	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || token != s.config.APIKey {
		s.logger.Debug("rejected request", "path", c.Path())
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid api key"})
	}
	return c.Next()
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"object": "list",
		"data": []fiber.Map{
			{"id": s.config.Model, "object": "model", "owned_by": "speakmcp"},
		},
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "mock",
		"uptime":  int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	prompt := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			prompt = req.Messages[i].Content
			break
		}
	}
	if prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "no user message"})
	}

	convID := req.ConversationID
	if convID == "" {
		convID = req.ConversationIDSnake
	}

	if msg, ok := failure(prompt); ok {
		s.recordError(msg, convID)
		if !req.Stream {
			return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: msg})
		}
		frames, err := turn{prompt: prompt}.frames()
		if err != nil {
			return err
		}
		return s.stream(c, frames)
	}

	reply := Reply(prompt)
	conv := s.appendTurn(convID, prompt, reply)

	model := req.Model
	if model == "" {
		model = s.config.Model
	}

	s.logger.Debug("mock chat turn",
		"conversation_id", conv.id,
		"stream", req.Stream,
	)

	if !req.Stream {
		return c.JSON(fiber.Map{
			"id":     "chatcmpl-" + uuid.NewString(),
			"object": "chat.completion",
			"model":  model,
			"choices": []fiber.Map{{
				"index":         0,
				"message":       fiber.Map{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"conversation_id":      conv.id,
			"conversation_history": conv.messages,
		})
	}

	frames, err := turn{
		sessionID:      "session-" + uuid.NewString(),
		conversationID: conv.id,
		prompt:         prompt,
		reply:          reply,
		model:          model,
		history:        conv.messages,
		chunkSize:      s.config.ChunkSize,
	}.frames()
	if err != nil {
		s.logger.Error("building frames", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error"})
	}

	return s.stream(c, frames)
}

func (s *Server) stream(c *fiber.Ctx, frames []string) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// A chunked body stream flushes each frame as it is written, so
	// clients see progress before the turn is done.
	pr, pw := io.Pipe()
	go s.writeFrames(pw, frames)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

func (s *Server) writeFrames(pw *io.PipeWriter, frames []string) {
	for i, f := range frames {
		if i > 0 && s.config.FrameDelay > 0 {
			time.Sleep(s.config.FrameDelay)
		}
		if _, err := fmt.Fprintf(pw, "data: %s\n\n", f); err != nil {
			// client went away
			s.logger.Debug("stream write failed", "error", err, "frame", i)
			pw.CloseWithError(err)
			return
		}
	}
	pw.Close()
}

// appendTurn records prompt and reply on the conversation, creating it when
// id is empty or unknown. It returns a snapshot safe to use without the lock.
func (s *Server) appendTurn(id, prompt, reply string) conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowMillis()
	conv, ok := s.conversations[id]
	if !ok {
		if id == "" {
			id = "conv_" + uuid.NewString()
		}
		conv = &conversation{id: id, title: title(prompt), createdAt: now}
		s.conversations[id] = conv
	}

	conv.messages = append(conv.messages,
		agent.ConversationMessage{Role: "user", Content: prompt, Timestamp: now},
		agent.ConversationMessage{
			Role:        "assistant",
			Content:     reply,
			Timestamp:   now,
			ToolCalls:   []agent.ToolCall{{Name: "echo"}},
			ToolResults: []agent.ToolResult{{Success: true, Content: prompt}},
		},
	)
	conv.updatedAt = now

	snapshot := *conv
	snapshot.messages = append([]agent.ConversationMessage(nil), conv.messages...)
	return snapshot
}

func (s *Server) handleListConversations(c *fiber.Ctx) error {
	s.mu.Lock()
	list := make([]fiber.Map, 0, len(s.conversations))
	convs := make([]*conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].updatedAt > convs[j].updatedAt })
	for _, conv := range convs {
		list = append(list, fiber.Map{
			"id":           conv.id,
			"title":        conv.title,
			"createdAt":    conv.createdAt,
			"updatedAt":    conv.updatedAt,
			"messageCount": len(conv.messages),
			"preview":      conv.messages[len(conv.messages)-1].Content,
		})
	}
	s.mu.Unlock()

	return c.JSON(fiber.Map{"conversations": list})
}

func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[c.Params("id")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}

	return c.JSON(fiber.Map{
		"id":        conv.id,
		"title":     conv.title,
		"createdAt": conv.createdAt,
		"updatedAt": conv.updatedAt,
		"messages":  conv.messages,
	})
}

func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	if _, ok := s.conversations[id]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	delete(s.conversations, id)

	return c.JSON(fiber.Map{"success": true})
}

func title(prompt string) string {
	prompt = strings.Join(strings.Fields(prompt), " ")
	runes := []rune(prompt)
	if len(runes) > 40 {
		return string(runes[:40]) + "..."
	}
	return prompt
}
