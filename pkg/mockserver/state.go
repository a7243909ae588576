package mockserver

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// appState is the mutable desktop app state behind the management
// endpoints. It is guarded by Server.mu.
type appState struct {
	servers        map[string]bool
	profiles       []fiber.Map
	currentProfile string
	settings       map[string]any
	memories       []fiber.Map
	errors         []fiber.Map
}

func newAppState() *appState {
	now := time.Now().UnixMilli()

	return &appState{
		servers: map[string]bool{"mock": true},
		profiles: []fiber.Map{
			{"id": "default", "name": "Default", "isDefault": true, "guidelines": "Be helpful."},
			{"id": "coder", "name": "Coder", "guidelines": "Prefer code over prose."},
		},
		currentProfile: "default",
		settings: map[string]any{
			"mcpToolsProvider":     "mock",
			"mcpAgentModeEnabled":  true,
			"mcpMaxIterations":     float64(10),
			"currentModelPresetId": "builtin-mock",
			"availablePresets": []any{
				map[string]any{"id": "builtin-mock", "name": "Mock", "baseUrl": "http://127.0.0.1:3210/v1", "isBuiltIn": true},
				map[string]any{"id": "custom-local", "name": "Local", "baseUrl": "http://localhost:11434/v1"},
			},
		},
		memories: []fiber.Map{
			{"id": "mem_1", "content": "The user prefers short answers.", "importance": "high", "tags": []string{"style"}, "createdAt": now},
		},
	}
}

func (s *Server) handleServers(c *fiber.Ctx) error {
	s.mu.Lock()
	names := make([]string, 0, len(s.state.servers))
	for name := range s.state.servers {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]fiber.Map, 0, len(names))
	for _, name := range names {
		enabled := s.state.servers[name]
		count := 0
		if enabled {
			count = 1
		}
		list = append(list, fiber.Map{"name": name, "enabled": enabled, "connected": enabled, "toolCount": count})
	}
	s.mu.Unlock()

	return c.JSON(fiber.Map{"servers": list})
}

func (s *Server) handleToggleServer(c *fiber.Ctx) error {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	name := c.Params("name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.servers[name]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "server not found"})
	}
	s.state.servers[name] = body.Enabled

	return c.JSON(fiber.Map{"success": true, "server": name, "enabled": body.Enabled})
}

func (s *Server) handleTools(c *fiber.Ctx) error {
	s.mu.Lock()
	enabled := s.state.servers["mock"]
	s.mu.Unlock()

	tools := []fiber.Map{}
	if enabled {
		tools = append(tools, fiber.Map{
			"name":        "mock:echo",
			"description": "Echoes its text argument back",
			"inputSchema": fiber.Map{"type": "object", "properties": fiber.Map{"text": fiber.Map{"type": "string"}}},
		})
	}
	return c.JSON(fiber.Map{"tools": tools})
}

func (s *Server) handleCallTool(c *fiber.Ctx) error {
	var body struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if body.Name != "mock:echo" {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: fmt.Sprintf("tool not found: %s", body.Name)})
	}

	var args struct {
		Text string `json:"text"`
	}
	if len(body.Arguments) > 0 {
		if err := json.Unmarshal(body.Arguments, &args); err != nil {
			return c.JSON(fiber.Map{"isError": true, "content": []fiber.Map{{"type": "text", "text": "arguments must be an object"}}})
		}
	}

	return c.JSON(fiber.Map{"content": []fiber.Map{{"type": "text", "text": args.Text}}})
}

func (s *Server) handleProfiles(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(fiber.Map{"profiles": s.state.profiles, "currentProfileId": s.state.currentProfile})
}

func (s *Server) handleCurrentProfile(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(s.profile(s.state.currentProfile))
}

func (s *Server) handleSwitchProfile(c *fiber.Ctx) error {
	var body struct {
		ProfileID string `json:"profileId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profile(body.ProfileID)
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "profile not found"})
	}
	s.state.currentProfile = body.ProfileID

	return c.JSON(p)
}

func (s *Server) profile(id string) fiber.Map {
	for _, p := range s.state.profiles {
		if p["id"] == id {
			return p
		}
	}
	return nil
}

func (s *Server) handleSettings(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(s.state.settings)
}

func (s *Server) handleUpdateSetting(c *fiber.Ctx) error {
	var body struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil || body.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "key is required"})
	}

	s.mu.Lock()
	s.state.settings[body.Key] = body.Value
	s.mu.Unlock()

	return c.JSON(fiber.Map{"success": true, "updated": []string{body.Key}})
}

func (s *Server) handlePatchSettings(c *fiber.Ctx) error {
	fields := map[string]any{}
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := fields["currentModelPresetId"].(string); ok && !s.hasPreset(id) {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "unknown preset: " + id})
	}

	updated := make([]string, 0, len(fields))
	for k, v := range fields {
		s.state.settings[k] = v
		updated = append(updated, k)
	}
	sort.Strings(updated)

	return c.JSON(fiber.Map{"success": true, "updated": updated})
}

func (s *Server) hasPreset(id string) bool {
	presets, _ := s.state.settings["availablePresets"].([]any)
	for _, p := range presets {
		if m, ok := p.(map[string]any); ok && m["id"] == id {
			return true
		}
	}
	return false
}

func (s *Server) handleMemories(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return c.JSON(fiber.Map{"memories": s.state.memories})
}

func (s *Server) handleMemory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.state.memories {
		if m["id"] == c.Params("id") {
			return c.JSON(m)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "memory not found"})
}

func (s *Server) handleDeleteMemory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.state.memories {
		if m["id"] == c.Params("id") {
			s.state.memories = append(s.state.memories[:i], s.state.memories[i+1:]...)
			return c.JSON(fiber.Map{"success": true})
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "memory not found"})
}

func (s *Server) handleSkills(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"skills": []fiber.Map{
			{"id": "skill_echo", "name": "Echo", "description": "Repeat the last message", "enabled": true},
		},
	})
}

func (s *Server) handleErrors(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := append([]fiber.Map{}, s.state.errors...)
	return c.JSON(fiber.Map{"errors": errs})
}

// recordError adds a failed turn to the error log served by GET /errors.
func (s *Server) recordError(msg, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   msg,
	}
	if conversationID != "" {
		entry["context"] = "conversation " + conversationID
	}
	s.state.errors = append(s.state.errors, entry)
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "message": "no running sessions"})
}
