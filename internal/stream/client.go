package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

// Request is the body posted to the agent endpoint. Wallet must be a 0x
// prefixed address; validating it is the caller's job.
type Request struct {
	Message string `json:"message"`
	Wallet  string `json:"wallet"`
}

// Client opens streaming sessions against a single agent endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for endpoint. The default HTTP client has no
// timeout; bound a session through the context instead.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL sessions are opened against.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Stream posts req and decodes the streamed response into cb. It performs
// exactly one request, never retries and reports every failure through
// cb.OnError.
func (c *Client) Stream(ctx context.Context, req Request, cb Callbacks) Outcome {
	start := time.Now()
	log := logger.WithStream(c.endpoint, req.Wallet)
	log.Debug("Opening agent stream")

	payload, err := json.Marshal(req)
	if err != nil {
		return failSession(log, cb, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return failSession(log, cb, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Agent request failed")
		return failSession(log, cb, fmt.Errorf("failed to send request: %w", err))
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Warn("Agent endpoint returned error status")
		return failSession(log, cb, &StatusError{Code: resp.StatusCode})
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return failSession(log, cb, ErrNoBody)
	}

	outcome := Decode(ctx, resp.Body, cb)
	log.WithFields(map[string]interface{}{
		"outcome":     outcome.String(),
		"duration_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
	}).Debug("Agent stream finished")
	return outcome
}

// failSession reports a failure that happened before decoding started. A
// panicking OnError is logged and swallowed like it is inside Decode.
func failSession(log *logger.Logger, cb Callbacks, err error) (outcome Outcome) {
	outcome = OutcomeError
	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("Error callback panicked")
		}
	}()
	cb.fail(err)
	return outcome
}
