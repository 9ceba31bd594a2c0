// Package displaysync keeps a display's copy of its tenant content fresh:
// an HTTP client for the display endpoints, a poller with retry, a websocket
// watcher that forces early polls and a slide rotator.
package displaysync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"signage/internal/errors"
	"signage/internal/model"
)

const defaultHTTPTimeout = 10 * time.Second

// Client talks to a signage server on behalf of one display.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the server at baseURL. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SetToken sets the bearer token sent with every request. An empty token
// makes the client anonymous, which resolves to the server's default tenant.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for an access token and keeps it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(body), &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.SetToken(resp.AccessToken)
	return nil
}

// Snapshot fetches the current display snapshot.
func (c *Client) Snapshot(ctx context.Context) (*model.DisplaySnapshot, error) {
	var snap model.DisplaySnapshot
	if err := c.do(ctx, http.MethodGet, "/api/display", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Version fetches only the tenant's content version.
func (c *Client) Version(ctx context.Context) (int64, error) {
	var resp struct {
		Version int64 `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/display/version", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

// WatchURL is the websocket URL for invalidation messages.
func (c *Client) WatchURL() string {
	u := c.baseURL + "/ws/display"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if token := c.currentToken(); token != "" {
		u += "?access_token=" + url.QueryEscape(token)
	}
	return u
}

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// Is maps 401 and 403 onto ErrUnauthorized so callers can stop retrying.
func (e *StatusError) Is(target error) bool {
	return target == errors.ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
