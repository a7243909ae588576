package api

import (
	"context"
	"encoding/json"
	"net/url"
)

// Models lists the models the server advertises. The status command uses it
// as a connectivity and authentication probe.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	var resp modelList
	if err := c.Get(ctx, "models", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Servers lists the configured MCP servers.
func (c *Client) Servers(ctx context.Context) ([]MCPServer, error) {
	var resp serverList
	if err := c.Get(ctx, "mcp/servers", &resp); err != nil {
		return nil, err
	}
	return resp.Servers, nil
}

// ToggleServer enables or disables the named MCP server.
func (c *Client) ToggleServer(ctx context.Context, name string, enabled bool) (*ToggleResult, error) {
	var resp ToggleResult
	body := map[string]bool{"enabled": enabled}
	if err := c.Post(ctx, "mcp/servers/"+url.PathEscape(name)+"/toggle", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profiles lists agent profiles.
func (c *Client) Profiles(ctx context.Context) (*ProfileList, error) {
	var resp ProfileList
	if err := c.Get(ctx, "profiles", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentProfile returns the active agent profile.
func (c *Client) CurrentProfile(ctx context.Context) (*Profile, error) {
	var resp Profile
	if err := c.Get(ctx, "profiles/current", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SwitchProfile activates the profile with the given id.
func (c *Client) SwitchProfile(ctx context.Context, id string) (*Profile, error) {
	var resp Profile
	body := map[string]string{"profileId": id}
	if err := c.Post(ctx, "profiles/current", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tools lists the MCP tools available to the agent.
func (c *Client) Tools(ctx context.Context) ([]Tool, error) {
	var resp toolList
	if err := c.Post(ctx, "mcp/tools/list", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// CallTool invokes an MCP tool directly. A nil args sends an empty object.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (*ToolCallResult, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var resp ToolCallResult
	body := struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}{Name: name, Arguments: args}

	if err := c.Post(ctx, "mcp/tools/call", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Conversations lists stored conversations.
func (c *Client) Conversations(ctx context.Context) ([]ConversationSummary, error) {
	var resp conversationList
	if err := c.Get(ctx, "conversations", &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// Conversation fetches one conversation with its messages.
func (c *Client) Conversation(ctx context.Context, id string) (*Conversation, error) {
	var resp Conversation
	if err := c.Get(ctx, "conversations/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteConversation removes a stored conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.Delete(ctx, "conversations/"+url.PathEscape(id))
}

// Settings fetches the desktop app settings.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	resp := Settings{}
	if err := c.Get(ctx, "settings", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateSetting sets a single key. value is sent as its JSON type.
func (c *Client) UpdateSetting(ctx context.Context, key string, value any) (*SettingsUpdate, error) {
	var resp SettingsUpdate
	body := map[string]any{"key": key, "value": value}
	if err := c.Post(ctx, "settings", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PatchSettings merges fields into the settings.
func (c *Client) PatchSettings(ctx context.Context, fields map[string]any) (*SettingsUpdate, error) {
	var resp SettingsUpdate
	if err := c.Patch(ctx, "settings", fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EmergencyStop aborts every running agent session.
func (c *Client) EmergencyStop(ctx context.Context) (*StopResult, error) {
	var resp StopResult
	if err := c.Post(ctx, "emergency-stop", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Memories lists the agent's long-term memories.
func (c *Client) Memories(ctx context.Context) ([]Memory, error) {
	var resp memoryList
	if err := c.Get(ctx, "memories", &resp); err != nil {
		return nil, err
	}
	return resp.Memories, nil
}

// Memory fetches one memory.
func (c *Client) Memory(ctx context.Context, id string) (*Memory, error) {
	var resp Memory
	if err := c.Get(ctx, "memories/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMemory removes a memory.
func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	return c.Delete(ctx, "memories/"+url.PathEscape(id))
}

// Skills lists the agent skills.
func (c *Client) Skills(ctx context.Context) ([]Skill, error) {
	var resp skillList
	if err := c.Get(ctx, "skills", &resp); err != nil {
		return nil, err
	}
	return resp.Skills, nil
}

// Health reports the desktop app health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.Get(ctx, "health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Errors returns the recent desktop app error log.
func (c *Client) Errors(ctx context.Context) ([]ErrorEntry, error) {
	var resp errorList
	if err := c.Get(ctx, "errors", &resp); err != nil {
		return nil, err
	}
	return resp.Errors, nil
}
