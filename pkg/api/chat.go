package api

import (
	"context"
	"errors"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

// ChatPath is the OpenAI-compatible completions endpoint.
const ChatPath = "chat/completions"

// ErrMissingChoices is returned when a non-streaming response has no choices.
var ErrMissingChoices = errors.New("API response missing choices")

// Message is one OpenAI-style chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body of POST chat/completions.
type ChatCompletionRequest struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	ConversationID string    `json:"conversationId,omitempty"`
	Stream         bool      `json:"stream,omitempty"`
	MaxTokens      int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Message Message `json:"message"`
}

// chatCompletionResponse is the non-streaming response. The conversation
// fields are snake_case on this endpoint.
type chatCompletionResponse struct {
	Choices             []chatChoice                `json:"choices"`
	Model               string                      `json:"model,omitempty"`
	ConversationID      string                      `json:"conversation_id,omitempty"`
	ConversationHistory []agent.ConversationMessage `json:"conversation_history,omitempty"`
}

func (c *Client) completionRequest(req agent.ChatRequest) ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	return ChatCompletionRequest{
		Model:          model,
		Messages:       []Message{{Role: "user", Content: req.Message}},
		ConversationID: req.ConversationID,
		Stream:         req.Stream,
		MaxTokens:      c.maxTokens,
	}
}

// Chat sends one turn without streaming and waits for the full answer.
func (c *Client) Chat(ctx context.Context, req agent.ChatRequest) (*agent.FinalResult, error) {
	req.Stream = false

	var resp chatCompletionResponse
	if err := c.Post(ctx, ChatPath, c.completionRequest(req), &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, ErrMissingChoices
	}

	return &agent.FinalResult{
		Content:        resp.Choices[0].Message.Content,
		ConversationID: resp.ConversationID,
		History:        resp.ConversationHistory,
		Model:          resp.Model,
	}, nil
}
