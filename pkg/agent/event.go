// Package agent implements the client side of a streaming chat turn against a
// remote agent: decoding SSE frame payloads into typed events, tracking what
// has already been shown to the user, and driving a frame source until the
// turn terminates.
//
// The pipeline for one turn is:
//
//	FrameSource ─▶ Decode ─▶ Session.Apply ─▶ Sink
//	                                  │
//	                                  ▼
//	                        Driver.Run result
package agent

import (
	"encoding/json"
)

// Event is one decoded frame of the agent stream. It is a closed set:
// *ProgressEvent, *DoneEvent, *ErrorEvent and *UnknownEvent.
type Event interface {
	isEvent()
}

// ProgressEvent is a mid-turn update from the agent.
type ProgressEvent struct {
	Update ProgressUpdate
}

// DoneEvent terminates a turn successfully.
type DoneEvent struct {
	Payload DonePayload
}

// ErrorEvent terminates a turn with a remote failure.
type ErrorEvent struct {
	Message string
}

// UnknownEvent carries a frame whose envelope or inner shape was not
// recognized. It is never terminal.
type UnknownEvent struct {
	Raw string
}

func (*ProgressEvent) isEvent() {}
func (*DoneEvent) isEvent()     {}
func (*ErrorEvent) isEvent()    {}
func (*UnknownEvent) isEvent()  {}

// ProgressUpdate is the payload of a "progress" frame. Field names are
// camelCase on the wire.
type ProgressUpdate struct {
	SessionID           string                `json:"sessionId"`
	ConversationID      string                `json:"conversationId,omitempty"`
	ConversationTitle   string                `json:"conversationTitle,omitempty"`
	CurrentIteration    int                   `json:"currentIteration"`
	MaxIterations       int                   `json:"maxIterations"`
	Steps               []Step                `json:"steps"`
	IsComplete          bool                  `json:"isComplete"`
	IsSnoozed           *bool                 `json:"isSnoozed,omitempty"`
	FinalContent        *string               `json:"finalContent,omitempty"`
	StreamingContent    *StreamingContent     `json:"streamingContent,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversationHistory,omitempty"`
}

// UnmarshalJSON requires sessionId, currentIteration, maxIterations, steps
// and isComplete. A null counts as missing.
func (p *ProgressUpdate) UnmarshalJSON(data []byte) error {
	var required struct {
		SessionID        *string `json:"sessionId"`
		CurrentIteration *int    `json:"currentIteration"`
		MaxIterations    *int    `json:"maxIterations"`
		Steps            *[]Step `json:"steps"`
		IsComplete       *bool   `json:"isComplete"`
	}
	if err := json.Unmarshal(data, &required); err != nil {
		return err
	}

	switch {
	case required.SessionID == nil:
		return errMissingField("sessionId")
	case required.CurrentIteration == nil:
		return errMissingField("currentIteration")
	case required.MaxIterations == nil:
		return errMissingField("maxIterations")
	case required.Steps == nil:
		return errMissingField("steps")
	case required.IsComplete == nil:
		return errMissingField("isComplete")
	}

	type plain ProgressUpdate
	return json.Unmarshal(data, (*plain)(p))
}

// StreamingContent is the cumulative text generated so far in a turn.
type StreamingContent struct {
	Text        string `json:"text"`
	IsStreaming bool   `json:"isStreaming"`
}

// Step statuses the session reacts to. Other values pass through untouched.
const (
	StepStatusRunning  = "running"
	StepStatusComplete = "complete"
)

// Step is one unit of agent work reported in a progress frame.
type Step struct {
	ID         string          `json:"id"`
	Kind       string          `json:"type"`
	Title      string          `json:"title"`
	Status     string          `json:"status"`
	ToolCall   *ToolCallInfo   `json:"toolCall,omitempty"`
	ToolResult *ToolResultInfo `json:"toolResult,omitempty"`
	LLMContent string          `json:"llmContent,omitempty"`
}

// ToolCallInfo describes a tool invocation. Arguments are kept as raw JSON
// because their shape is owned by the tool.
type ToolCallInfo struct {
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	ServerName string          `json:"serverName,omitempty"`
}

// ToolResultInfo describes the outcome of a tool invocation.
type ToolResultInfo struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// ToolCall is a tool invocation recorded in conversation history.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult is a tool outcome recorded in conversation history.
type ToolResult struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// ConversationMessage is one entry of the agent's conversation history.
type ConversationMessage struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Timestamp   int64        `json:"timestamp,omitempty"`
	ToolCalls   []ToolCall   `json:"toolCalls,omitempty"`
	ToolResults []ToolResult `json:"toolResults,omitempty"`
}

// DonePayload is the payload of a "done" frame.
type DonePayload struct {
	Content             string                `json:"content"`
	ConversationID      string                `json:"conversationId,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversationHistory,omitempty"`
	Model               string                `json:"model,omitempty"`
}

// UnmarshalJSON requires "content" and accepts both camelCase and
// snake_case spellings of the conversation fields.
func (d *DonePayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content                  *string               `json:"content"`
		ConversationID           string                `json:"conversationId"`
		ConversationIDSnake      string                `json:"conversation_id"`
		ConversationHistory      []ConversationMessage `json:"conversationHistory"`
		ConversationHistorySnake []ConversationMessage `json:"conversation_history"`
		Model                    string                `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Content == nil {
		return errMissingField("content")
	}

	d.Content = *raw.Content
	d.ConversationID = raw.ConversationID
	if d.ConversationID == "" {
		d.ConversationID = raw.ConversationIDSnake
	}
	d.ConversationHistory = raw.ConversationHistory
	if d.ConversationHistory == nil {
		d.ConversationHistory = raw.ConversationHistorySnake
	}
	d.Model = raw.Model
	return nil
}

// FinalResult is the structured outcome of a successful turn, built once
// from the done frame.
type FinalResult struct {
	Content        string                `json:"content"`
	ConversationID string                `json:"conversation_id,omitempty"`
	History        []ConversationMessage `json:"conversation_history,omitempty"`
	Model          string                `json:"model,omitempty"`
}
