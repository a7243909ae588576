// Package api is the HTTP client for the SpeakMCP remote server. It covers
// the JSON management endpoints, non-streaming chat, and the streaming chat
// transport consumed by pkg/agent.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/speakmcp/speakmcp-cli/pkg/config"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

const (
	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 64 * 1024
)

// Options configures a Client.
type Options struct {
	// BaseURL is the server root including the /v1 prefix,
	// e.g. "http://localhost:3210/v1".
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// Model is sent with chat requests when the request does not name one.
	Model string

	// MaxTokens is sent with chat requests when greater than zero.
	MaxTokens int

	// Timeout bounds non-streaming requests. Streaming requests are bounded
	// only by their context. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Dump receives a verbatim copy of every streamed SSE body.
	Dump io.Writer

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client talks to the SpeakMCP remote server.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
	dump      io.Writer

	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a Client for opts. It does not contact the server.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		timeout:    opts.Timeout,
		dump:       opts.Dump,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}

	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		// No client-level timeout: it would also cut long streaming turns.
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	return c, nil
}

// NewFromConfig returns a Client for the effective configuration. It fails
// with ErrAPIKeyMissing when no api key is configured.
func NewFromConfig(cfg *config.Config, l *slog.Logger) (*Client, error) {
	if cfg.Server.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	return New(Options{
		BaseURL:   cfg.Server.URL,
		APIKey:    cfg.Server.APIKey,
		Model:     cfg.Chat.Model,
		MaxTokens: cfg.Chat.MaxTokens,
		Timeout:   cfg.Chat.TimeoutDuration(),
		Logger:    l,
	})
}

// BaseURL returns the server root requests are made against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetDump sets the writer that receives raw streamed bodies.
func (c *Client) SetDump(w io.Writer) {
	c.dump = w
}

// Endpoint joins path onto the base URL.
func (c *Client) Endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Get performs a GET and decodes the JSON response into out. A nil out
// discards the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Patch performs a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a DELETE. Any response body is discarded.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// send issues the request and returns the response only for 2xx statuses.
// Any other status is turned into an *APIError and the body is closed.
func (c *Client) send(ctx context.Context, method, path string, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s request: %w", path, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	url := c.Endpoint(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", path, err)
	}

	requestID := uuid.NewString()
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-Id", requestID)

	c.logger.Debug("api request",
		"method", method,
		"url", url,
		"request_id", requestID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("api error response",
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return nil, &APIError{Status: resp.StatusCode, Body: string(errBody)}
	}

	return resp, nil
}
