package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

// Model is one entry of GET models.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

type modelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// MCPServer is one MCP server configured in the desktop app.
type MCPServer struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	ToolCount int    `json:"toolCount"`
	Error     string `json:"error,omitempty"`
}

type serverList struct {
	Servers []MCPServer `json:"servers"`
}

// ToggleResult is the response of POST mcp/servers/{name}/toggle.
type ToggleResult struct {
	Success bool   `json:"success"`
	Server  string `json:"server,omitempty"`
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

// Profile is an agent profile.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Guidelines string `json:"guidelines,omitempty"`
	IsDefault  bool   `json:"isDefault,omitempty"`
	CreatedAt  int64  `json:"createdAt,omitempty"`
	UpdatedAt  int64  `json:"updatedAt,omitempty"`
}

// ProfileList is the response of GET profiles.
type ProfileList struct {
	Profiles         []Profile `json:"profiles"`
	CurrentProfileID string    `json:"currentProfileId,omitempty"`
}

// Tool is an MCP tool exposed through the desktop app.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type toolList struct {
	Tools []Tool `json:"tools"`
}

// ToolContent is one content block of a tool call result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolCallResult is the response of POST mcp/tools/call.
type ToolCallResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Text joins the text blocks of the result.
func (r *ToolCallResult) Text() string {
	var out string
	for i, c := range r.Content {
		if c.Text == "" {
			continue
		}
		if i > 0 && out != "" {
			out += "\n"
		}
		out += c.Text
	}
	return out
}

// ConversationSummary is one entry of GET conversations.
type ConversationSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	MessageCount int    `json:"messageCount"`
	Preview      string `json:"preview,omitempty"`
}

type conversationList struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// Conversation is a full conversation from GET conversations/{id}.
type Conversation struct {
	ID        string                      `json:"id"`
	Title     string                      `json:"title"`
	CreatedAt int64                       `json:"createdAt"`
	UpdatedAt int64                       `json:"updatedAt"`
	Messages  []agent.ConversationMessage `json:"messages"`
}

// Settings is the desktop app settings object. Its keys are owned by the
// desktop app, so it is kept loosely typed.
type Settings map[string]any

// ModelPreset is a model provider preset carried inside Settings.
type ModelPreset struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BaseURL   string `json:"baseUrl"`
	IsBuiltIn bool   `json:"isBuiltIn,omitempty"`
}

// Presets extracts availablePresets and currentModelPresetId from s.
func (s Settings) Presets() ([]ModelPreset, string, error) {
	var presets []ModelPreset
	if raw, ok := s["availablePresets"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(data, &presets); err != nil {
			return nil, "", err
		}
	}

	current, _ := s["currentModelPresetId"].(string)
	return presets, current, nil
}

// SettingsUpdate is the response of POST and PATCH settings.
type SettingsUpdate struct {
	Success bool     `json:"success"`
	Updated []string `json:"updated,omitempty"`
}

// StopResult is the response of POST emergency-stop.
type StopResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Importance is a memory's importance. Servers send either a label or a
// number, so both decode into its text form.
type Importance string

func (i *Importance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Importance(s)
		return nil
	}
	if string(data) == "null" {
		*i = ""
		return nil
	}
	*i = Importance(data)
	return nil
}

// Memory is one long-term agent memory.
type Memory struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Importance Importance `json:"importance,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	CreatedAt  int64      `json:"createdAt"`
}

// Created converts the millisecond timestamp.
func (m Memory) Created() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

type memoryList struct {
	Memories []Memory `json:"memories"`
}

// Skill is a custom automation workflow available to the agent.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

type skillList struct {
	Skills []Skill `json:"skills"`
}

// Health is the response of GET health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  *int64 `json:"uptime,omitempty"`
}

// ErrorEntry is one entry of the desktop app error log.
type ErrorEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Context   string `json:"context,omitempty"`
}

type errorList struct {
	Errors []ErrorEntry `json:"errors"`
}
