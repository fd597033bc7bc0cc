package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := New("", "", nil)
		if c.baseURL != DefaultBaseURL {
			t.Errorf("expected default base URL, got %s", c.baseURL)
		}
		if c.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("Trims Trailing Slash", func(t *testing.T) {
		c := New("http://example.com/", "", nil)
		if c.baseURL != "http://example.com" {
			t.Errorf("expected trimmed base URL, got %s", c.baseURL)
		}
	})
}

func TestDo(t *testing.T) {
	t.Run("Sends Token And Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("expected JSON content type, got %q", got)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"name":"Favorites"}` {
				t.Errorf("unexpected body %s", body)
			}
			httputil.WriteJSON(w, http.StatusCreated, map[string]int{"id": 1})
		}))
		defer server.Close()

		resp, err := New(server.URL, "secret", nil).Post(context.Background(), "/watchlists", []byte(`{"name":"Favorites"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated || !resp.IsJSON {
			t.Errorf("expected JSON 201, got %d (json=%v)", resp.StatusCode, resp.IsJSON)
		}
	})

	t.Run("Non-JSON Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Error("expected no authorization header without a token")
			}
			w.Write([]byte("Rank,Title\n"))
		}))
		defer server.Close()

		resp, err := New(server.URL, "", nil).Get(context.Background(), "/watchlists/1/export?format=csv")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON || resp.JSONData != nil {
			t.Error("expected a non-JSON response")
		}
		if string(resp.Body) != "Rank,Title\n" {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})

	t.Run("Invalid URL", func(t *testing.T) {
		_, err := New("http://example.com", "", nil).Get(context.Background(), "/test\x00invalid")
		if err == nil || !strings.Contains(err.Error(), "failed to create request") {
			t.Errorf("expected request creation error, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		_, err := New("http://example.com", "", client).Get(context.Background(), "/health")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Body Read Failure", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(&http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}, nil)
		_, err := New("http://example.com", "", &http.Client{Transport: rt}).Get(context.Background(), "/health")
		if err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read error, got %v", err)
		}
		if rt.Last == nil || rt.Last.URL.Path != "/health" {
			t.Error("expected the request to reach the transport")
		}
	})
}

func TestCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watchlists":
			httputil.WriteJSON(w, http.StatusOK, []models.Watchlist{{ID: 7, Name: "Favorites"}})
		case "/missing":
			httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "watchlist 9 not found")
		case "/busy":
			httputil.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		case "/plain":
			w.Write([]byte("oops"))
		case "/auth/login":
			var in map[string]string
			json.NewDecoder(r.Body).Decode(&in)
			if in["password"] != "hunter22" {
				httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"token": "tok", "user": map[string]any{"id": 1}})
		case "/watchlists/7/entries":
			if r.Header.Get("Authorization") != "Bearer tok" {
				httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if r.URL.Query().Get("sort") != "rating" {
				t.Errorf("expected sort=rating, got %q", r.URL.Query().Get("sort"))
			}
			httputil.WriteJSON(w, http.StatusOK, []models.WatchlistEntry{{ID: 1, Rank: 1}})
		default:
			httputil.WriteJSON(w, http.StatusOK, nil)
		}
	}))
	defer server.Close()
	ctx := context.Background()

	t.Run("Decodes Data", func(t *testing.T) {
		lists, err := New(server.URL, "", nil).Watchlists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(lists) != 1 || lists[0].ID != 7 {
			t.Errorf("unexpected watchlists %+v", lists)
		}
	})

	t.Run("Maps Error Codes", func(t *testing.T) {
		err := New(server.URL, "", nil).Call(ctx, http.MethodGet, "/missing", nil, nil)
		if !IsStatus(err, shared.ErrNotFound) {
			t.Errorf("expected NotFound API error, got %v", err)
		}
		if !strings.Contains(err.Error(), "watchlist 9 not found") {
			t.Errorf("expected server message in %v", err)
		}
	})

	t.Run("Rate Limited", func(t *testing.T) {
		err := New(server.URL, "", nil).Call(ctx, http.MethodGet, "/busy", nil, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Non-Envelope Body", func(t *testing.T) {
		err := New(server.URL, "", nil).Call(ctx, http.MethodGet, "/plain", nil, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Login Keeps Token", func(t *testing.T) {
		c := New(server.URL, "", nil)
		if _, err := c.Login(ctx, "a@example.com", "wrong"); !IsStatus(err, shared.ErrUnauthorized) {
			t.Fatalf("expected Unauthorized, got %v", err)
		}
		if _, err := c.Login(ctx, "a@example.com", "hunter22"); err != nil {
			t.Fatalf("expected login to succeed, got %v", err)
		}
		entries, err := c.Entries(ctx, 7, models.SortRating)
		if err != nil {
			t.Fatalf("expected entries with the session token, got %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("unexpected entries %+v", entries)
		}
	})

	t.Run("Null Data", func(t *testing.T) {
		var out map[string]any
		if err := New(server.URL, "", nil).Call(ctx, http.MethodDelete, "/watchlist-entries/1", nil, &out); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
