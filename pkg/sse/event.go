// Package sse parses the Server-Sent Events stream returned by the SpeakMCP
// chat completions endpoint. Raw bytes can optionally be mirrored to a dump
// writer for debugging while events are consumed.
//
// This package does NOT provide SSE writer or server capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event is a single parsed SSE event, delimited by a blank line.
type Event struct {
	// Type is the "event:" field. Empty means the default "message" type.
	Type string

	// Data is every "data:" line of the event joined with "\n".
	Data string

	// ID is the last "id:" field, if present.
	ID string
}
