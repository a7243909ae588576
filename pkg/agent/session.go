package agent

import (
	"log/slog"
	"unicode/utf8"

	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

// EmissionKind distinguishes printed text from side-channel notices.
type EmissionKind int

const (
	// EmissionText is a new suffix of the assistant's output.
	EmissionText EmissionKind = iota

	// EmissionToolCall announces a tool invocation reported by a step.
	EmissionToolCall

	// EmissionToolResult announces a tool outcome reported by a step.
	EmissionToolResult
)

func (k EmissionKind) String() string {
	switch k {
	case EmissionText:
		return "text"
	case EmissionToolCall:
		return "tool_call"
	case EmissionToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// Emission is one unit handed to the Sink. Text is set for EmissionText;
// Step is set for tool notices.
type Emission struct {
	Kind EmissionKind
	Text string
	Step *Step
}

// Outcome is the session's decision after applying an event.
type Outcome int

const (
	// Continue means the turn is still active.
	Continue Outcome = iota

	// StopOK means a done frame ended the turn.
	StopOK

	// StopErr means an error frame ended the turn.
	StopErr
)

// Continuation pairs an Outcome with the remote error message for StopErr.
type Continuation struct {
	Outcome Outcome
	Message string
}

// Terminal reports whether no further frames should be read.
func (c Continuation) Terminal() bool {
	return c.Outcome != Continue
}

// Session owns the per-turn state: how many bytes of assistant text have
// been emitted, which tool notices were already announced, and the terminal
// result. A Session is single-use and not safe for concurrent use.
type Session struct {
	printedLen int
	final      *FinalResult
	terminal   *Continuation
	announced  map[string]struct{}

	logger *slog.Logger
}

// NewSession returns a Session in the active state. A nil logger discards
// diagnostics.
func NewSession(l *slog.Logger) *Session {
	if l == nil {
		l = logger.Nop()
	}
	return &Session{
		announced: make(map[string]struct{}),
		logger:    l,
	}
}

// PrintedLen is the byte offset of assistant text already emitted.
func (s *Session) PrintedLen() int {
	return s.printedLen
}

// Result returns the final result once a done frame has been applied.
func (s *Session) Result() *FinalResult {
	return s.final
}

// Terminated reports whether a done or error frame has ended the session.
func (s *Session) Terminated() bool {
	return s.terminal != nil
}

// Apply folds one event into the session. Once terminated, the session
// ignores further events and keeps returning the terminal continuation.
func (s *Session) Apply(ev Event) ([]Emission, Continuation) {
	if s.terminal != nil {
		return nil, *s.terminal
	}

	switch e := ev.(type) {
	case *ProgressEvent:
		return s.applyProgress(&e.Update), Continuation{Outcome: Continue}

	case *DoneEvent:
		var out []Emission
		if text, ok := s.advance(e.Payload.Content); ok {
			out = append(out, Emission{Kind: EmissionText, Text: text})
		}
		s.final = &FinalResult{
			Content:        e.Payload.Content,
			ConversationID: e.Payload.ConversationID,
			History:        e.Payload.ConversationHistory,
			Model:          e.Payload.Model,
		}
		return out, s.stop(Continuation{Outcome: StopOK})

	case *ErrorEvent:
		return nil, s.stop(Continuation{Outcome: StopErr, Message: e.Message})

	case *UnknownEvent:
		s.logger.Debug("ignoring unrecognized frame", "raw", e.Raw)
		return nil, Continuation{Outcome: Continue}

	default:
		return nil, Continuation{Outcome: Continue}
	}
}

func (s *Session) applyProgress(u *ProgressUpdate) []Emission {
	var out []Emission

	for i := range u.Steps {
		step := &u.Steps[i]
		if step.Status != StepStatusRunning && step.Status != StepStatusComplete {
			continue
		}
		if step.ToolCall != nil && s.markAnnounced(EmissionToolCall, step.ID) {
			out = append(out, Emission{Kind: EmissionToolCall, Step: step})
		}
		if step.ToolResult != nil && s.markAnnounced(EmissionToolResult, step.ID) {
			out = append(out, Emission{Kind: EmissionToolResult, Step: step})
		}
	}

	sc := u.StreamingContent
	if sc == nil || !sc.IsStreaming {
		return out
	}

	if len(sc.Text) < s.printedLen {
		s.logger.Debug("ignoring stale streaming frame",
			"text_len", len(sc.Text),
			"printed_len", s.printedLen,
		)
		return out
	}

	if text, ok := s.advance(sc.Text); ok {
		out = append(out, Emission{Kind: EmissionText, Text: text})
	}
	return out
}

// advance returns the part of text beyond the printed cursor and moves the
// cursor to the end of text. When text does not share the printed prefix
// and the cursor lands inside a multi-byte rune, the partial rune is skipped
// so the emission stays valid UTF-8.
func (s *Session) advance(text string) (string, bool) {
	if len(text) <= s.printedLen {
		return "", false
	}
	start := s.printedLen
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	s.printedLen = len(text)
	if start == len(text) {
		return "", false
	}
	return text[start:], true
}

// markAnnounced records a notice for a step id and reports whether it is new.
// Steps without an id are always announced.
func (s *Session) markAnnounced(kind EmissionKind, id string) bool {
	if id == "" {
		return true
	}
	key := kind.String() + ":" + id
	if _, seen := s.announced[key]; seen {
		return false
	}
	s.announced[key] = struct{}{}
	return true
}

func (s *Session) stop(c Continuation) Continuation {
	s.terminal = &c
	return c
}
