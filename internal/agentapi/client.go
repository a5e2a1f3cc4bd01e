// Package agentapi is a client for the dailyagi REST backend: reminders,
// spending analysis, grocery lists and premium status.
package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Backland-Labs/dailyagi/internal/logger"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

// DefaultTimeout bounds every REST call unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

// Client talks to one backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for baseURL, e.g. http://localhost:8000.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		requestID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks the backend.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReminders returns the reminders of address.
func (c *Client) ListReminders(ctx context.Context, address string) ([]Reminder, error) {
	if err := wallet.ValidateAddress(address); err != nil {
		return nil, err
	}

	var out struct {
		Reminders []Reminder `json:"reminders"`
	}
	query := url.Values{"address": {address}}
	if err := c.doJSON(ctx, http.MethodGet, "/agent/reminders", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Reminders, nil
}

// CreateReminder stores a new reminder and returns it as saved by the backend.
func (c *Client) CreateReminder(ctx context.Context, in NewReminder) (*Reminder, error) {
	if err := wallet.ValidateAddress(in.Address); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("reminder title is required")
	}

	var out struct {
		Reminder Reminder `json:"reminder"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/agent/reminders", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Reminder, nil
}

// DeleteReminder removes reminder id owned by address.
func (c *Client) DeleteReminder(ctx context.Context, id, address string) error {
	if err := wallet.ValidateAddress(address); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("reminder id is required")
	}

	query := url.Values{"address": {address}}
	return c.doJSON(ctx, http.MethodDelete, "/agent/reminders/"+url.PathEscape(id), query, nil, nil)
}

// AnalyzeSpending classifies the transactions of address over the range.
func (c *Client) AnalyzeSpending(ctx context.Context, address string, tr TimeRange) (*SpendingReport, error) {
	if err := wallet.ValidateAddress(address); err != nil {
		return nil, err
	}
	if tr == "" {
		tr = Range30Days
	}
	if !tr.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeRange, tr)
	}

	body := map[string]string{"address": address, "timeRange": string(tr)}
	var out SpendingReport
	if err := c.doJSON(ctx, http.MethodPost, "/agent/spending", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadGrocery sends a fridge photo and returns the generated shopping list.
func (c *Client) UploadGrocery(ctx context.Context, address, filename string, image io.Reader) (*GroceryList, error) {
	if err := wallet.ValidateAddress(address); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", path.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.WriteField("address", address); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	var out GroceryList
	if err := c.do(ctx, http.MethodPost, "/agent/grocery", nil, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGroceryList fetches a stored shopping list by content id.
func (c *Client) GetGroceryList(ctx context.Context, cid string) (*GroceryList, error) {
	if cid == "" {
		return nil, fmt.Errorf("cid is required")
	}

	var out GroceryList
	if err := c.doJSON(ctx, http.MethodGet, "/agent/grocery/"+url.PathEscape(cid), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PremiumStatus reports the staking status of address.
func (c *Client) PremiumStatus(ctx context.Context, address string) (*PremiumStatus, error) {
	if err := wallet.ValidateAddress(address); err != nil {
		return nil, err
	}

	var out PremiumStatus
	if err := c.doJSON(ctx, http.MethodGet, "/premium/status/"+url.PathEscape(address), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunAgent invokes one sub-agent directly through the orchestration endpoint.
func (c *Client) RunAgent(ctx context.Context, req RunRequest) (*RunResult, error) {
	if err := wallet.ValidateAddress(req.Address); err != nil {
		return nil, err
	}

	var out RunResult
	if err := c.doJSON(ctx, http.MethodPost, "/agent/run", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, p string, query url.Values, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, p, query, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	target := c.baseURL + p
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := c.requestID()
	req.Header.Set("X-Request-ID", requestID)

	log := logger.WithFields(map[string]interface{}{
		"method":     method,
		"path":       p,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithField("error", err.Error()).Warn("API request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	log = log.WithFields(map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: p, StatusCode: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil {
			if json.Unmarshal(raw, &detail) == nil {
				apiErr.Detail = detail.Detail
			}
		}
		log.Warn("API returned error status")
		return apiErr
	}

	log.Debug("API request completed")

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
