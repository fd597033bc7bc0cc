package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/shared"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", fmt.Errorf("%w: name is required", shared.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", fmt.Errorf("wrapped: %w", shared.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", shared.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"transient", shared.ErrTransient, http.StatusServiceUnavailable, "TRANSIENT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Status(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("Status() = %d %s, want %d %s", status, code, tt.status, tt.code)
			}
			if tt.code != "INTERNAL" && !errors.Is(tt.err, Sentinel(code)) {
				t.Errorf("Sentinel(%s) does not match %v", code, tt.err)
			}
		})
	}

	if Sentinel("INTERNAL") != nil {
		t.Error("expected no sentinel for INTERNAL")
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return resp
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if body := rec.Body.String(); body != "{\"status\":\"ok\",\"data\":{\"id\":7}}\n" {
		t.Errorf("unexpected body %q", body)
	}

	rec = httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, nil)
	if body := rec.Body.String(); body != "{\"status\":\"ok\"}\n" {
		t.Errorf("expected data omitted, got %q", body)
	}
}

func TestWriteErr(t *testing.T) {
	t.Run("client errors keep their message", func(t *testing.T) {
		var logs bytes.Buffer
		rec := httptest.NewRecorder()
		WriteErr(rec, shared.NewLogger(&logs), fmt.Errorf("%w: watchlist 3", shared.ErrNotFound))

		resp := decode(t, rec)
		if rec.Code != http.StatusNotFound || resp.Status != "error" || resp.Error.Code != "NOT_FOUND" {
			t.Errorf("unexpected response %d %+v", rec.Code, resp)
		}
		if resp.Error.Message != "not found: watchlist 3" {
			t.Errorf("unexpected message %q", resp.Error.Message)
		}
	})

	t.Run("server errors are hidden and logged", func(t *testing.T) {
		var logs bytes.Buffer
		rec := httptest.NewRecorder()
		WriteErr(rec, shared.NewLogger(&logs), errors.New("no such table: movies"))

		resp := decode(t, rec)
		if rec.Code != http.StatusInternalServerError || resp.Error.Message != "internal server error" {
			t.Errorf("unexpected response %d %+v", rec.Code, resp)
		}
		if !strings.Contains(logs.String(), "no such table") {
			t.Errorf("expected the cause in the log, got %q", logs.String())
		}
	})

	t.Run("transient errors ask for a retry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteErr(rec, shared.NewLogger(&bytes.Buffer{}), fmt.Errorf("%w: database is locked", shared.ErrTransient))

		resp := decode(t, rec)
		if rec.Code != http.StatusServiceUnavailable || !strings.Contains(resp.Error.Message, "retry") {
			t.Errorf("unexpected response %d %+v", rec.Code, resp)
		}
	})
}

func TestReadJSON(t *testing.T) {
	type input struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"Heists"}`, want: "Heists"},
		{name: "empty body", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"name":`, wantErr: "malformed JSON"},
		{name: "unknown field", body: `{"name":"x","color":"red"}`, wantErr: "malformed JSON"},
		{name: "trailing value", body: `{"name":"x"} {}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var in input
			err := ReadJSON(req, &in)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if in.Name != tt.want {
					t.Errorf("expected %q, got %q", tt.want, in.Name)
				}
				return
			}
			if !errors.Is(err, shared.ErrInvalidInput) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected invalid input containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
