// package client talks to a running marquee server over HTTP
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// DefaultBaseURL is the address of a server started with the default configuration.
const DefaultBaseURL = "http://localhost:3000"

// Client makes requests against the marquee API, sending a bearer token when one is set.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a [Client]. An empty baseURL uses [DefaultBaseURL] and a nil client uses [http.DefaultClient].
func New(baseURL, token string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: client,
	}
}

// SetToken replaces the bearer token sent with each request.
func (c *Client) SetToken(token string) { c.token = token }

// Response is a raw API response with its status and body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Do sends a request with an optional JSON body and returns the raw response.
// Non-2xx statuses are not errors here; see [Client.Call] for decoded results.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	r := &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		r.IsJSON = true
		r.JSONData = v
	}
	return r, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a raw JSON body.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, data)
}

type envelope struct {
	Status string              `json:"status"`
	Data   json.RawMessage     `json:"data"`
	Error  *httputil.ErrorBody `json:"error"`
}

// Call sends in as JSON (when non-nil) and decodes the envelope's data into out (when non-nil).
//
// Error envelopes come back wrapping both [shared.ErrAPIRequest] and the domain sentinel for their code,
// so callers can test for [shared.ErrNotFound] and friends with errors.Is.
func (c *Client) Call(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = b
	}

	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return fmt.Errorf("%w: %s %s returned %d with a non-envelope body", shared.ErrAPIRequest, method, path, resp.StatusCode)
	}
	if env.Status != "ok" {
		return responseError(resp.StatusCode, env.Error)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func responseError(status int, body *httputil.ErrorBody) error {
	if body == nil {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	if sentinel := httputil.Sentinel(body.Code); sentinel != nil {
		return fmt.Errorf("%w: %w: %s", shared.ErrAPIRequest, sentinel, body.Message)
	}
	if status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %s", shared.ErrAPIRequest, shared.ErrServiceUnavailable, body.Message)
	}
	return fmt.Errorf("%w: %s (%s)", shared.ErrAPIRequest, body.Message, body.Code)
}

// Health checks that the server and its database are reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.Call(ctx, http.MethodGet, "/health", nil, nil)
}

// Login exchanges credentials for a session and keeps its token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	var session auth.Session
	in := map[string]string{"email": email, "password": password}
	if err := c.Call(ctx, http.MethodPost, "/auth/login", in, &session); err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// Watchlists lists the caller's watchlists.
func (c *Client) Watchlists(ctx context.Context) ([]models.Watchlist, error) {
	var lists []models.Watchlist
	if err := c.Call(ctx, http.MethodGet, "/watchlists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Entries lists a watchlist's entries in the given order.
func (c *Client) Entries(ctx context.Context, watchlistID int64, sort models.SortKey) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	path := fmt.Sprintf("/watchlists/%d/entries?sort=%s", watchlistID, sort)
	if err := c.Call(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddMovie adds a movie to a watchlist, or to the default watchlist when watchlistID is nil.
func (c *Client) AddMovie(ctx context.Context, movieID int64, watchlistID *int64) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	in := map[string]any{"movieId": movieID}
	if watchlistID != nil {
		in["watchlistId"] = *watchlistID
	}
	if err := c.Call(ctx, http.MethodPost, "/watchlist-entries", in, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// IsStatus reports whether err came from an error envelope for sentinel.
func IsStatus(err, sentinel error) bool {
	return errors.Is(err, shared.ErrAPIRequest) && errors.Is(err, sentinel)
}
