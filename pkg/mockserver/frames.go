package mockserver

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
)

// FailPrefix makes the mock agent answer with an error frame. The rest of
// the message becomes the error text.
const FailPrefix = "fail:"

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type donePayload struct {
	Content             string                      `json:"content"`
	ConversationID      string                      `json:"conversation_id"`
	ConversationHistory []agent.ConversationMessage `json:"conversation_history"`
	Model               string                      `json:"model"`
}

// turn is one scripted mock agent reply.
type turn struct {
	sessionID      string
	conversationID string
	prompt         string
	reply          string
	model          string
	history        []agent.ConversationMessage
	chunkSize      int
}

// Reply is the mock agent's answer to prompt.
func Reply(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You sent an empty message."
	}
	return "Echo: " + prompt
}

// failure reports whether prompt asks for a failed turn, and its message.
func failure(prompt string) (string, bool) {
	msg, ok := strings.CutPrefix(prompt, FailPrefix)
	if !ok {
		return "", false
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "mock agent failure"
	}
	return msg, true
}

// frames renders the SSE data payloads for t, in order, ending with the
// [DONE] sentinel.
func (t turn) frames() ([]string, error) {
	if msg, ok := failure(t.prompt); ok {
		errFrame, err := encode("error", map[string]string{"message": msg})
		if err != nil {
			return nil, err
		}
		return []string{errFrame, agent.DoneSentinel}, nil
	}

	args, err := json.Marshal(map[string]string{"text": t.prompt})
	if err != nil {
		return nil, err
	}

	thinking := agent.Step{ID: "step-1", Kind: "thinking", Title: "Thinking", Status: agent.StepStatusComplete}
	toolStep := agent.Step{
		ID:     "step-2",
		Kind:   "tool_call",
		Title:  "Calling echo",
		Status: agent.StepStatusRunning,
		ToolCall: &agent.ToolCallInfo{
			Name:       "echo",
			Arguments:  args,
			ServerName: "mock",
		},
	}

	var out []string
	add := func(u agent.ProgressUpdate) error {
		u.SessionID = t.sessionID
		u.ConversationID = t.conversationID
		u.MaxIterations = 10
		u.CurrentIteration = 1
		f, err := encode("progress", u)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	}

	if err := add(agent.ProgressUpdate{Steps: []agent.Step{thinking, toolStep}}); err != nil {
		return nil, err
	}

	toolStep.Status = agent.StepStatusComplete
	toolStep.ToolResult = &agent.ToolResultInfo{Success: true, Content: t.prompt}
	steps := []agent.Step{thinking, toolStep}

	// The same step reported again must not produce a second notice.
	if err := add(agent.ProgressUpdate{Steps: steps}); err != nil {
		return nil, err
	}

	runes := []rune(t.reply)
	for end := t.chunkSize; ; end += t.chunkSize {
		if end > len(runes) {
			end = len(runes)
		}
		err := add(agent.ProgressUpdate{
			Steps:            steps,
			StreamingContent: &agent.StreamingContent{Text: string(runes[:end]), IsStreaming: true},
		})
		if err != nil {
			return nil, err
		}
		if end == len(runes) {
			break
		}
	}

	done, err := encode("done", donePayload{
		Content:             t.reply,
		ConversationID:      t.conversationID,
		ConversationHistory: t.history,
		Model:               t.model,
	})
	if err != nil {
		return nil, err
	}

	return append(out, done, agent.DoneSentinel), nil
}

func encode(frameType string, data any) (string, error) {
	b, err := json.Marshal(envelope{Type: frameType, Data: data})
	if err != nil {
		return "", fmt.Errorf("encoding %s frame: %w", frameType, err)
	}
	return string(b), nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
