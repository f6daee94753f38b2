package boost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxBodySize caps how much of an engine response is read.
const maxBodySize = 1 << 20 // 1 MiB

// Client is an HTTP client for the boost engine.
//
// The engine exposes three GET endpoints:
//
//	/start?url=<target>   begin boosting a URL, returns a session ID
//	/status/<sessionId>   current cumulative stats
//	/stop/<sessionId>     stop the session
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new boost engine client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start asks the engine to begin boosting the target URL.
// The returned response carries the engine's session ID on success.
func (c *Client) Start(ctx context.Context, targetURL string) (*Response, error) {
	query := url.Values{}
	query.Set("url", targetURL)

	endpoint := c.baseURL + "/start?" + query.Encode()
	return c.get(ctx, endpoint)
}

// Status retrieves the current cumulative stats for a session.
func (c *Client) Status(ctx context.Context, sessionID string) (*Response, error) {
	endpoint := c.baseURL + "/status/" + url.PathEscape(sessionID)
	return c.get(ctx, endpoint)
}

// Stop asks the engine to end a session.
func (c *Client) Stop(ctx context.Context, sessionID string) (*Response, error) {
	endpoint := c.baseURL + "/stop/" + url.PathEscape(sessionID)
	return c.get(ctx, endpoint)
}

func (c *Client) get(ctx context.Context, endpoint string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
