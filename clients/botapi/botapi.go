package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fincsops/config"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Client is the typed request boundary to the bot service. The base URL is
// fixed at construction; every read is sent uncached because the console has
// no cache layer of its own. No retries here - the sync loop retries
// implicitly on its own timer.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
}

func NewClient(logger *zap.Logger, cfg *config.Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.API.Timeout,
		},
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
	}
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is the uniform failure carried back from any call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorDetail matches the service's structured error payload.
type errorDetail struct {
	Detail string `json:"detail"`
}

// apiError normalizes a non-2xx response into an APIError: structured detail
// first, then raw body text, then a generic message.
func apiError(status int, body []byte) *APIError {
	var detail errorDetail
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return &APIError{Status: status, Message: detail.Detail}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return &APIError{Status: status, Message: msg}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("request failed (%d)", status)}
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp.StatusCode, data)
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// getList fetches an array endpoint. A body that is not an array degrades to
// an empty slice instead of failing the read.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("non-array response, treating as empty",
			zap.String("path", path),
		)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Status fetches the current bot status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Settings fetches the current bot settings.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := c.getJSON(ctx, "/settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Signals fetches the most recent parsed signals.
func (c *Client) Signals(ctx context.Context, limit int) ([]Signal, error) {
	return getList[Signal](ctx, c, fmt.Sprintf("/signals?limit=%d", limit))
}

// Actions fetches the most recent executed actions.
func (c *Client) Actions(ctx context.Context, limit int) ([]ActionRecord, error) {
	return getList[ActionRecord](ctx, c, fmt.Sprintf("/actions?limit=%d", limit))
}

// Raw fetches the most recent raw captures.
func (c *Client) Raw(ctx context.Context, limit int) ([]RawCapture, error) {
	return getList[RawCapture](ctx, c, fmt.Sprintf("/raw?limit=%d", limit))
}

// SaxoHealth fetches the broker connection snapshot.
func (c *Client) SaxoHealth(ctx context.Context) (*SaxoHealth, error) {
	var health SaxoHealth
	if err := c.getJSON(ctx, "/saxo/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// SaxoAuthURL generates a broker authorization URL.
func (c *Client) SaxoAuthURL(ctx context.Context) (string, error) {
	var resp AuthURLResponse
	if err := c.getJSON(ctx, "/saxo/auth-url", &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// SaxoAuthExchange trades an authorization code for broker tokens.
func (c *Client) SaxoAuthExchange(ctx context.Context, code string) (*AuthExchangeResponse, error) {
	var resp AuthExchangeResponse
	body := map[string]string{"code": code}
	if err := c.postJSON(ctx, "/saxo/auth-exchange", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartBot starts the bot scheduler.
func (c *Client) StartBot(ctx context.Context) error {
	return c.postJSON(ctx, "/bot/start", nil, nil)
}

// StopBot stops the bot scheduler.
func (c *Client) StopBot(ctx context.Context) error {
	return c.postJSON(ctx, "/bot/stop", nil, nil)
}

// RunOnce triggers one immediate cycle and returns its result summary when
// the service provides one.
func (c *Client) RunOnce(ctx context.Context) (*RunOnceResponse, error) {
	var resp RunOnceResponse
	if err := c.postJSON(ctx, "/bot/run-once", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveSettings submits a full settings document and returns the server's
// accepted version.
func (c *Client) SaveSettings(ctx context.Context, settings Settings) (*Settings, error) {
	var saved Settings
	if err := c.postJSON(ctx, "/settings", settings, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateDryRun submits a partial settings update flipping only dry_run.
func (c *Client) UpdateDryRun(ctx context.Context, dryRun bool) (*Settings, error) {
	var saved Settings
	body := map[string]bool{"dry_run": dryRun}
	if err := c.postJSON(ctx, "/settings", body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
