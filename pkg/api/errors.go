package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAPIKeyMissing is returned by NewFromConfig when no api key is set.
	ErrAPIKeyMissing = errors.New("API key not configured. Run 'speakmcp config set server.api_key <KEY>' or 'speakmcp auth'")

	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response from the SpeakMCP server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.Status)
	}

	switch {
	case e.Status == http.StatusUnauthorized:
		return fmt.Sprintf("Unauthorized (401): %s", body)
	case e.Status == http.StatusNotFound:
		return fmt.Sprintf("Not Found (404): %s", body)
	case e.Status >= http.StatusInternalServerError:
		return fmt.Sprintf("Server Error (%d): %s", e.Status, body)
	default:
		return fmt.Sprintf("HTTP Error (%d): %s", e.Status, body)
	}
}

// Is matches the status class sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
