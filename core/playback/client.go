// Package playback wraps an external player-control HTTP API. The wrapper is
// intentionally thin: commands are forwarded, state is returned raw, and
// nothing here feeds back into the rest of the app.
package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"submerge/logger"
)

// ErrUnknownCommand is returned for a command name outside the known set.
var ErrUnknownCommand = errors.New("unknown playback command")

// commands maps command names to the remote API method and path.
var commands = map[string]struct {
	method string
	path   string
}{
	"connect": {http.MethodPost, "/player/connect"},
	"play":    {http.MethodPost, "/player/play"},
	"pause":   {http.MethodPost, "/player/pause"},
	"resume":  {http.MethodPost, "/player/resume"},
	"seek":    {http.MethodPost, "/player/seek"},
	"queue":   {http.MethodPost, "/player/queue"},
	"state":   {http.MethodGet, "/player/state"},
}

// Client talks to the remote player API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a playback client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a remote player API is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Command forwards a named command to the remote player and returns the raw
// response body. payload may be nil for commands without parameters.
func (c *Client) Command(ctx context.Context, name string, payload json.RawMessage) (json.RawMessage, error) {
	spec, ok := commands[name]
	if !ok {
		return nil, ErrUnknownCommand
	}

	var body io.Reader
	if len(payload) > 0 && spec.method != http.MethodGet {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, c.baseURL+spec.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build playback request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("playback request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read playback response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("playback command rejected",
			logger.String("command", name),
			logger.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("playback api returned status %d", resp.StatusCode)
	}
	if len(data) == 0 {
		data = []byte(`{}`)
	}
	return data, nil
}

// State fetches the current remote player state.
func (c *Client) State(ctx context.Context) (json.RawMessage, error) {
	return c.Command(ctx, "state", nil)
}
