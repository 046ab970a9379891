// Package detect is the HTTP client for the remote video-detection service.
//
// The service exposes four endpoints: GET /status reports a running flag,
// POST /start and /stop toggle detection, and GET /video_feed serves a
// multipart MJPEG stream (consumed by the feed package, not here).
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Status is the detection state reported by GET /status.
type Status struct {
	Running bool `json:"running"`
}

// actionResponse is the body returned by the start/stop/test endpoints.
// The service signals logical failure in-band: status == "error" with a
// human-readable message, inside an otherwise successful HTTP response.
type actionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// statusError is the sentinel value of actionResponse.Status.
const statusError = "error"

// ServerError is a logical error reported by the service itself, as opposed
// to a transport or decode failure. Its message is the server's own text and
// is intended to be shown to the user verbatim.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// Client talks to one detection service instance.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  zerolog.Logger
}

// NewClient creates a detection service client. timeout bounds each request;
// 0 leaves requests unbounded, which matches the service's reference web
// client. The logger is used for request failures only.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "detect-client").Logger(),
	}
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// FeedURL returns the video feed URL with a cache-busting timestamp
// parameter. Each call with a distinct t yields a distinct URL, forcing
// intermediaries to re-fetch the stream.
func (c *Client) FeedURL(t time.Time) string {
	return fmt.Sprintf("%s/video_feed?ts=%d", c.baseURL, t.UnixMilli())
}

// Status fetches the current detection state.
func (c *Client) Status(ctx context.Context) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return Status{}, fmt.Errorf("detect: build status request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("status request failed")
		return Status{}, fmt.Errorf("detect: status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("code", resp.StatusCode).Msg("status request rejected")
		return Status{}, fmt.Errorf("detect: status returned %d", resp.StatusCode)
	}

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return Status{}, fmt.Errorf("detect: decode status response: %w", err)
	}
	return st, nil
}

// Start asks the service to begin detection. On success it returns the
// server's message ("Detection started", "Detection is already running", …).
// A server-reported failure comes back as a *ServerError carrying the
// server's own message.
func (c *Client) Start(ctx context.Context) (string, error) {
	return c.postAction(ctx, "/start")
}

// Stop asks the service to end detection. The response body is decoded and
// discarded: its content does not matter, but a malformed body is an error.
func (c *Client) Stop(ctx context.Context) error {
	resp, err := c.post(ctx, "/stop")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var discard any
	if err := json.NewDecoder(resp.Body).Decode(&discard); err != nil {
		return fmt.Errorf("detect: decode stop response: %w", err)
	}
	return nil
}

// TestVoiceAlert triggers the service's text-to-speech self test and returns
// the server's message. Sentinel errors are handled like Start.
func (c *Client) TestVoiceAlert(ctx context.Context) (string, error) {
	return c.postAction(ctx, "/test_tts")
}

// postAction POSTs to path and interprets the {status, message} body,
// converting the "error" sentinel into a *ServerError.
func (c *Client) postAction(ctx context.Context, path string) (string, error) {
	resp, err := c.post(ctx, path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var action actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&action); err != nil {
		return "", fmt.Errorf("detect: decode %s response: %w", path, err)
	}

	if action.Status == statusError {
		c.logger.Warn().Str("path", path).Str("message", action.Message).Msg("server reported error")
		return "", &ServerError{Message: action.Message}
	}

	c.logger.Info().Str("path", path).Str("status", action.Status).Msg("action accepted")
	return action.Message, nil
}

// post issues an empty-body JSON POST to path.
func (c *Client) post(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("detect: build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("detect: %s request: %w", path, err)
	}
	return resp, nil
}
