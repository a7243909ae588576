package agent

import (
	"errors"
	"fmt"
)

// ErrorKind classifies how a turn failed.
type ErrorKind int

const (
	// KindRemote is an error frame sent by the agent.
	KindRemote ErrorKind = iota + 1

	// KindIncomplete is a stream that ended without a done or error frame.
	KindIncomplete

	// KindTransport is a connection, read or cancellation failure.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindIncomplete:
		return "incomplete"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is against a *SessionError.
var (
	ErrRemote           = errors.New("agent reported an error")
	ErrIncompleteStream = errors.New("stream ended without receiving a done event")
	ErrTransport        = errors.New("transport failure")
)

// SessionError is the typed failure returned by Driver.Run.
type SessionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SessionError) Error() string {
	switch e.Kind {
	case KindRemote:
		return "server error: " + e.Message
	case KindIncomplete:
		return ErrIncompleteStream.Error()
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("stream error: %v", e.Err)
		}
		return "stream error: " + e.Message
	default:
		return e.Message
	}
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *SessionError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return e.Kind == KindRemote
	case ErrIncompleteStream:
		return e.Kind == KindIncomplete
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

func remoteError(msg string) *SessionError {
	return &SessionError{Kind: KindRemote, Message: msg}
}

func incompleteError() *SessionError {
	return &SessionError{Kind: KindIncomplete}
}

func transportError(err error) *SessionError {
	return &SessionError{Kind: KindTransport, Err: err}
}
