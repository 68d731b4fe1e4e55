// Package ludora provides the official Go SDK for the Ludora educational
// gaming platform API.
//
// Covers the platform REST surface (games, lobbies, event polling, health)
// with a sub-module access pattern, plus the realtime event stream client.
//
// Example:
//
//	client := ludora.NewClient("sess-...")
//
//	// REST API
//	games, _ := client.Games().List(ctx, nil)
//	lobby, _ := client.Lobbies().Get(ctx, "lobby-42")
//
//	// Realtime stream
//	rt := client.Realtime().Subscribe(ludora.SubscriptionOptions{
//		Channels: []string{"lobby:42"},
//	}, nil)
//	rt.AddEventListener("scoreUpdate", func(ev ludora.Event) { ... })
//	rt.Connect()
//	defer rt.Close()
package ludora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ============================================================================
// Environment
// ============================================================================

type Environment string

const (
	Production Environment = "production"
	Staging    Environment = "staging"
)

var environments = map[Environment]string{
	Production: "https://api.ludora.app",
	Staging:    "https://staging-api.ludora.app",
}

const (
	DefaultBaseURL = "https://api.ludora.app"
	DefaultTimeout = 30 * time.Second
)

// ============================================================================
// Client
// ============================================================================

type Client struct {
	sessionToken string
	baseURL      string
	httpClient   *http.Client

	games    *GamesClient
	lobbies  *LobbiesClient
	events   *EventsClient
	status   *StatusClient
	realtime *RealtimeAPI
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithEnvironment(env Environment) ClientOption {
	return func(c *Client) {
		if u, ok := environments[env]; ok {
			c.baseURL = u
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// NewClient creates a new Ludora client.
// sessionToken is optional; pass "" for endpoints that allow anonymous access.
func NewClient(sessionToken string, opts ...ClientOption) *Client {
	c := &Client{
		sessionToken: sessionToken,
		baseURL:      DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.games = &GamesClient{client: c}
	c.lobbies = &LobbiesClient{client: c}
	c.events = &EventsClient{client: c}
	c.status = &StatusClient{client: c}
	c.realtime = &RealtimeAPI{client: c}
	return c
}

// SetToken sets or updates the session token.
func (c *Client) SetToken(token string) {
	c.sessionToken = token
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Games returns the games API sub-client.
func (c *Client) Games() *GamesClient { return c.games }

// Lobbies returns the lobbies API sub-client.
func (c *Client) Lobbies() *LobbiesClient { return c.lobbies }

// Events returns the event-polling API sub-client.
func (c *Client) Events() *EventsClient { return c.events }

// Status returns the platform status sub-client.
func (c *Client) Status() *StatusClient { return c.status }

// Realtime returns the realtime stream API.
func (c *Client) Realtime() *RealtimeAPI { return c.realtime }

// ============================================================================
// Internal request helper
// ============================================================================

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, query map[string]string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		params := url.Values{}
		for k, v := range query {
			params.Set(k, v)
		}
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, query map[string]string) (*APIResult, error) {
	data, err := c.doRequest(ctx, method, path, body, query)
	if err != nil {
		return nil, err
	}
	return decodeJSON[APIResult](data)
}

func decodeJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

func paginationQuery(opts *PaginationOptions) map[string]string {
	if opts == nil {
		return nil
	}
	q := map[string]string{}
	if opts.Limit > 0 {
		q["limit"] = fmt.Sprintf("%d", opts.Limit)
	}
	if opts.Offset > 0 {
		q["offset"] = fmt.Sprintf("%d", opts.Offset)
	}
	if len(q) == 0 {
		return nil
	}
	return q
}

// ============================================================================
// Sub-Clients
// ============================================================================

// StatusClient reports platform health.
type StatusClient struct{ client *Client }

func (s *StatusClient) Health(ctx context.Context) (*APIResult, error) {
	return s.client.do(ctx, "GET", "/api/health", nil, nil)
}

// GamesClient handles game catalog access.
type GamesClient struct{ client *Client }

func (g *GamesClient) List(ctx context.Context, opts *PaginationOptions) (*APIResult, error) {
	return g.client.do(ctx, "GET", "/api/games", nil, paginationQuery(opts))
}

func (g *GamesClient) Get(ctx context.Context, gameID string) (*APIResult, error) {
	return g.client.do(ctx, "GET", "/api/games/"+gameID, nil, nil)
}

// LobbiesClient handles lobby state access.
type LobbiesClient struct{ client *Client }

func (l *LobbiesClient) Get(ctx context.Context, lobbyID string) (*APIResult, error) {
	return l.client.do(ctx, "GET", "/api/lobbies/"+lobbyID, nil, nil)
}

func (l *LobbiesClient) Members(ctx context.Context, lobbyID string) (*APIResult, error) {
	return l.client.do(ctx, "GET", "/api/lobbies/"+lobbyID+"/members", nil, nil)
}

// EventsClient polls the same events the realtime stream delivers.
// It backs the degraded-mode poll hook when streaming is unavailable.
type EventsClient struct{ client *Client }

// Poll fetches events after the given cursor for the given channels.
// A zero cursor starts from the earliest retained event.
func (e *EventsClient) Poll(ctx context.Context, channels []string, since int64, limit int) (*EventsPage, error) {
	if limit <= 0 {
		limit = 100
	}
	query := map[string]string{
		"channels": strings.Join(channels, ","),
		"since":    fmt.Sprintf("%d", since),
		"limit":    fmt.Sprintf("%d", limit),
	}
	result, err := e.client.do(ctx, "GET", "/api/events/poll", nil, query)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		msg := "event poll failed"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return nil, fmt.Errorf("%s", msg)
	}
	var page EventsPage
	if err := result.Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode events page: %w", err)
	}
	return &page, nil
}

// ============================================================================
// Realtime factory
// ============================================================================

// RealtimeAPI creates realtime stream clients bound to this API client.
type RealtimeAPI struct{ client *Client }

// StreamURL returns the SSE stream endpoint.
func (r *RealtimeAPI) StreamURL() string {
	return r.client.baseURL + "/sse/events"
}

// Subscribe creates an SSE realtime client for the given subscription.
// Call Connect() to establish the stream and Close() when done.
func (r *RealtimeAPI) Subscribe(opts SubscriptionOptions, config *RealtimeConfig) *RealtimeClient {
	return newRealtimeClient(r.client.baseURL, r.client.sessionToken, r.client.httpClient, opts, config, transportSSE)
}

// SubscribeWS creates a WebSocket realtime client for the given subscription.
// The WS endpoint carries the same envelopes as the SSE stream.
func (r *RealtimeAPI) SubscribeWS(opts SubscriptionOptions, config *RealtimeConfig) *RealtimeClient {
	return newRealtimeClient(r.client.baseURL, r.client.sessionToken, r.client.httpClient, opts, config, transportWS)
}
