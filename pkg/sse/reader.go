package sse

import (
	"bufio"
	"io"
	"strings"
)

const (
	initialBufSize = 64 * 1024

	// MaxLineSize bounds a single SSE line. Progress frames carry the whole
	// conversation history, so this is generous.
	MaxLineSize = 4 * 1024 * 1024
)

// Reader reads SSE events from a source io.Reader. Every raw line is also
// written verbatim to an optional dump writer, which lets "--dump-stream"
// capture exactly what the server sent.
type Reader struct {
	scanner *bufio.Scanner
	dump    io.Writer

	// current accumulates fields for the event being built.
	current *Event
	hasData bool

	// sawData is set once a data line is seen, even an empty one.
	sawData bool
}

// NewReader returns a Reader over src. A nil dump discards the raw copy.
func NewReader(src io.Reader, dump io.Writer) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufSize), MaxLineSize)

	if dump == nil {
		dump = io.Discard
	}

	return &Reader{
		scanner: scanner,
		dump:    dump,
		current: &Event{},
	}
}

// Next blocks until a complete event is available (terminated by a blank
// line) and returns it. Next returns nil, nil when the source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := strings.TrimSuffix(r.scanner.Text(), "\r")

		// bufio.Scanner strips the newline, so it is reinserted for the dump.
		if _, err := io.WriteString(r.dump, raw+"\n"); err != nil {
			return nil, err
		}

		if raw == "" {
			if r.hasData {
				ev := r.current
				r.reset()
				return ev, nil
			}

			// leading blank lines and keep-alive newlines
			continue
		}

		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// Stream ended without a trailing blank line.
	if r.hasData {
		ev := r.current
		r.reset()
		return ev, nil
	}

	return nil, nil
}

// parseLine accumulates one "field:value" line into the current event.
// A single space after the colon is stripped.
func (r *Reader) parseLine(line string) {
	var field, value string

	if before, after, ok := strings.Cut(line, ":"); ok {
		field = before
		value = strings.TrimPrefix(after, " ")
	} else {
		field = line
	}

	switch field {
	case "data":
		if r.sawData {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.sawData = true
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	default:
		// "retry" and unknown fields are ignored.
	}
}

func (r *Reader) reset() {
	r.current = &Event{}
	r.hasData = false
	r.sawData = false
}
