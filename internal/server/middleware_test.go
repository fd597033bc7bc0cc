package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("Generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" || w.Header().Get(RequestIDHeader) != seen {
			t.Errorf("expected generated id on context and response, got %q / %q", seen, w.Header().Get(RequestIDHeader))
		}
	})

	t.Run("Reused", func(t *testing.T) {
		id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, id)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if seen != id {
			t.Errorf("expected incoming id %q, got %q", id, seen)
		}
	})

	t.Run("MalformedReplaced", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "not an id\n")
		h.ServeHTTP(httptest.NewRecorder(), r)
		if seen == "not an id\n" || seen == "" {
			t.Errorf("expected replacement id, got %q", seen)
		}
	})
}

func TestRecover(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"INTERNAL"`) {
		t.Errorf("expected INTERNAL envelope, got %s", w.Body.String())
	}
}

func TestLogging(t *testing.T) {
	var out strings.Builder
	logger := shared.NewLogger(&out)
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	for _, want := range []string{"/brew", "418"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in log line %q", want, out.String())
		}
	}
}

func TestTimeout(t *testing.T) {
	t.Run("Deadline", func(t *testing.T) {
		var ok bool
		h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = r.Context().Deadline()
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !ok {
			t.Error("expected a deadline on the request context")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		var ok bool
		h := Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = r.Context().Deadline()
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if ok {
			t.Error("expected no deadline")
		}
	})
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	preflight := func(origin string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodOptions, "/watchlists", nil)
		r.Header.Set("Origin", origin)
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	if got := preflight("http://app.example").Header().Get("Access-Control-Allow-Origin"); got != "http://app.example" {
		t.Errorf("expected allowed origin to be echoed, got %q", got)
	}
	if got := preflight("http://evil.example").Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow header for a foreign origin, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 2)
	limiter.now = func() time.Time { return clock }

	t.Run("Burst", func(t *testing.T) {
		if !limiter.Allow("a") || !limiter.Allow("a") {
			t.Fatal("expected burst of two")
		}
		if limiter.Allow("a") {
			t.Error("expected third request to be limited")
		}
		if !limiter.Allow("b") {
			t.Error("expected other clients to keep their own bucket")
		}
	})

	t.Run("Refill", func(t *testing.T) {
		clock = clock.Add(time.Second)
		if !limiter.Allow("a") {
			t.Error("expected a token after one second")
		}
	})

	t.Run("Prune", func(t *testing.T) {
		clock = clock.Add(idleVisitor + time.Second)
		limiter.Allow("c")
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		if _, ok := limiter.visitors["a"]; ok {
			t.Error("expected idle visitor to be pruned")
		}
		if len(limiter.visitors) != 1 {
			t.Errorf("expected only the new visitor, got %d", len(limiter.visitors))
		}
	})

	t.Run("Middleware", func(t *testing.T) {
		l := NewRateLimiter(1, 1)
		h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		codes := make([]int, 2)
		for i := range codes {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			codes[i] = w.Code
			if i == 1 && w.Header().Get("Retry-After") != "1" {
				t.Errorf("expected Retry-After 1, got %q", w.Header().Get("Retry-After"))
			}
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
			t.Errorf("expected 200 then 429, got %v", codes)
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		h := NewRateLimiter(0, 1).Middleware(next)
		for range 5 {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected no limiting, got %d", w.Code)
			}
		}
	})
}
