// Package alta provides the HTTP client for the Alta/Avigilon cloud
// access-control API.
//
// The client wraps authenticated calls with bounded retry (exponential
// backoff on rate limits, linear backoff on server and connection failures)
// and maps HTTP failures onto typed APIError kinds. Access events and the
// current user are fetched once and cached for the lifetime of the client;
// the cache is invalidated only by process restart.
package alta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/common/retry"
	"github.com/3madMostafa/Alta-Video-Assistant/common/trace"
)

const (
	apiPrefix          = "/api/v1"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the organization base URL, e.g.
	// "https://acme.eu2.alta.avigilon.com". Trailing slashes are stripped.
	BaseURL string
	// APIToken is the bearer token for all requests.
	APIToken string
	// Timeout is the per-request timeout. Defaults to 30s when zero.
	Timeout time.Duration
	// MaxAttempts is the total attempt count per call. Defaults to 3 when zero.
	MaxAttempts int
}

// Client talks to the Alta cloud API.
type Client struct {
	baseURL     string
	token       string
	maxAttempts int
	httpClient  *http.Client

	mu           sync.Mutex
	cachedEvents []AccessEvent
	eventsCached bool
	cachedUser   *User
}

// New creates an Alta API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.APIToken,
		maxAttempts: maxAttempts,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// CurrentUser fetches the authenticated account from /me.
// The first successful result is cached for the client's lifetime.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	c.mu.Lock()
	if c.cachedUser != nil {
		u := *c.cachedUser
		c.mu.Unlock()
		return &u, nil
	}
	c.mu.Unlock()

	raw, err := c.request(ctx, http.MethodGet, "/me")
	if err != nil {
		return nil, err
	}
	var user User
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &user); err != nil {
			slog.Warn("alta: malformed /me response, treating as empty", "err", err)
		}
	}

	c.mu.Lock()
	c.cachedUser = &user
	c.mu.Unlock()
	return &user, nil
}

// AccessEvents fetches the access event log. The first successful result is
// cached for the client's lifetime; there is no refresh endpoint, so stale
// data persists until restart.
func (c *Client) AccessEvents(ctx context.Context) ([]AccessEvent, error) {
	c.mu.Lock()
	if c.eventsCached {
		events := c.cachedEvents
		c.mu.Unlock()
		slog.Debug("alta: returning cached access events", "count", len(events))
		return events, nil
	}
	c.mu.Unlock()

	raw, err := c.request(ctx, http.MethodGet, "/accessEvents")
	if err != nil {
		return nil, err
	}

	events, err := decodeList[AccessEvent](raw, "data", "events")
	if err != nil {
		slog.Warn("alta: malformed accessEvents response, treating as empty", "err", err)
		events = nil
	}

	c.mu.Lock()
	c.cachedEvents = events
	c.eventsCached = true
	c.mu.Unlock()

	slog.Info("alta: fetched and cached access events", "count", len(events))
	return events, nil
}

// AccessEventByGUID fetches a single access event. A missing event surfaces
// as an APIError with KindNotFound.
func (c *Client) AccessEventByGUID(ctx context.Context, guid string) (*AccessEvent, error) {
	raw, err := c.request(ctx, http.MethodGet, "/accessEvents/"+url.PathEscape(guid))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &APIError{Kind: KindNotFound, Message: fmt.Sprintf("access event %s not found", guid)}
	}
	var evt AccessEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, &APIError{Kind: KindNotFound, Message: fmt.Sprintf("access event %s not found", guid)}
	}
	return &evt, nil
}

// AccessPoints fetches all access control points (doors/readers).
// Not cached: door state changes server-side between calls.
func (c *Client) AccessPoints(ctx context.Context) ([]AccessPoint, error) {
	raw, err := c.request(ctx, http.MethodGet, "/accessControlPoints")
	if err != nil {
		return nil, err
	}
	points, err := decodeList[AccessPoint](raw, "data", "accessControlPoints")
	if err != nil {
		slog.Warn("alta: malformed accessControlPoints response, treating as empty", "err", err)
		return nil, nil
	}
	return points, nil
}

// AvailableAccessPoints fetches the access points currently available to the
// authenticated user.
func (c *Client) AvailableAccessPoints(ctx context.Context) ([]AccessPoint, error) {
	raw, err := c.request(ctx, http.MethodGet, "/availableAccessPoints")
	if err != nil {
		return nil, err
	}
	points, err := decodeList[AccessPoint](raw, "data", "availableAccessPoints")
	if err != nil {
		slog.Warn("alta: malformed availableAccessPoints response, treating as empty", "err", err)
		return nil, nil
	}
	return points, nil
}

// Unlock issues the unlock command for the given access point.
// Success is an empty 2xx response.
func (c *Client) Unlock(ctx context.Context, accessPointID string) error {
	_, err := c.request(ctx, http.MethodPost, "/accessControlPoints/"+url.PathEscape(accessPointID)+"/unlock")
	if err != nil {
		return err
	}
	slog.Info("alta: unlocked access point", "id", accessPointID)
	return nil
}

// request performs one authenticated API call with retry. The returned bytes
// are the raw JSON body; empty for 204 and non-JSON responses.
func (c *Client) request(ctx context.Context, method, endpoint string) (json.RawMessage, error) {
	var body json.RawMessage

	cfg := retry.Config{
		MaxAttempts: c.maxAttempts,
		BaseDelay:   time.Second,
		Classify: func(err error) retry.Class {
			switch KindOf(err) {
			case KindRateLimited:
				return retry.Exponential
			case KindServer, KindNetwork, KindTimeout:
				return retry.Linear
			default:
				return retry.Stop
			}
		},
	}

	err := retry.Do(ctx, cfg, func() error {
		b, err := c.attempt(ctx, method, endpoint)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, &APIError{Kind: KindUnknown, Message: err.Error()}
	}
	return body, nil
}

// attempt performs a single HTTP round trip and maps the outcome to an
// APIError when it failed.
func (c *Client) attempt(ctx context.Context, method, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+endpoint, nil)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, mapTransportError(method, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &APIError{Kind: KindAuth, Status: resp.StatusCode,
			Message: "authentication failed; check the API token"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &APIError{Kind: KindPermission, Status: resp.StatusCode,
			Message: "access forbidden; the token lacks permission for this resource"}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &APIError{Kind: KindNotFound, Status: resp.StatusCode,
			Message: "resource not found: " + endpoint}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{Kind: KindRateLimited, Status: resp.StatusCode,
			Message: "rate limit exceeded"}
	case resp.StatusCode >= 500:
		return nil, &APIError{Kind: KindServer, Status: resp.StatusCode,
			Message: fmt.Sprintf("server error: %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode >= 400:
		return nil, &APIError{Kind: KindUnknown, Status: resp.StatusCode,
			Message: fmt.Sprintf("unexpected status %d for %s %s", resp.StatusCode, method, endpoint)}
	}

	// Non-JSON bodies degrade to an empty result rather than an error: some
	// endpoints return HTML error pages or empty bodies on success.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		slog.Warn("alta: non-JSON response", "endpoint", endpoint, "content_type", contentType)
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "read response body: " + err.Error()}
	}
	if !json.Valid(data) {
		slog.Warn("alta: unparseable JSON response, treating as empty", "endpoint", endpoint)
		return nil, nil
	}
	return data, nil
}

// mapTransportError converts a net/http client error into an APIError,
// distinguishing timeouts from other connection failures.
func mapTransportError(method, endpoint string, err error) *APIError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &APIError{Kind: KindTimeout,
			Message: fmt.Sprintf("request timeout for %s %s", method, endpoint)}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout,
			Message: fmt.Sprintf("request timeout for %s %s", method, endpoint)}
	}
	return &APIError{Kind: KindNetwork,
		Message: fmt.Sprintf("connection failed for %s %s: %v", method, endpoint, err)}
}

// decodeList decodes either a bare JSON array or an object wrapping the array
// under one of the given keys (the backend uses both shapes).
func decodeList[T any](raw json.RawMessage, wrapperKeys ...string) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	for _, key := range wrapperKeys {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		var list []T
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, nil
}
