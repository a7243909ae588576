package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DoneSentinel is the keep-alive payload some servers send in place of a
// JSON frame. It never produces an event.
const DoneSentinel = "[DONE]"

// Frame types understood by Decode.
const (
	FrameProgress = "progress"
	FrameDone     = "done"
	FrameError    = "error"
)

type envelope struct {
	Type *string         `json:"type"`
	Data json.RawMessage `json:"data"`
}

type errorPayload struct {
	Message *string `json:"message"`
}

type missingFieldError string

func (e missingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", string(e))
}

func errMissingField(name string) error {
	return missingFieldError(name)
}

// Decode turns one SSE data payload into an Event. It returns nil for empty
// payloads and the [DONE] sentinel. Anything that is not a recognizable
// {type, data} frame comes back as *UnknownEvent carrying the raw text, so
// malformed input can never abort a turn.
func Decode(raw string) Event {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == DoneSentinel {
		return nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil || env.Type == nil {
		return &UnknownEvent{Raw: raw}
	}

	if !isObject(env.Data) {
		return &UnknownEvent{Raw: raw}
	}

	switch *env.Type {
	case FrameProgress:
		var update ProgressUpdate
		if err := json.Unmarshal(env.Data, &update); err != nil {
			return &UnknownEvent{Raw: raw}
		}
		return &ProgressEvent{Update: update}

	case FrameDone:
		var payload DonePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return &UnknownEvent{Raw: raw}
		}
		return &DoneEvent{Payload: payload}

	case FrameError:
		var payload errorPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.Message == nil {
			return &UnknownEvent{Raw: raw}
		}
		return &ErrorEvent{Message: *payload.Message}

	default:
		return &UnknownEvent{Raw: raw}
	}
}

func isObject(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
