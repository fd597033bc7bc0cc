package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/shared"
)

// SessionCookie is the cookie carrying a session token for browser clients.
const SessionCookie = "session"

// Refresher reloads the account behind a verified token. [Accounts] satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, caller Caller) (Caller, error)
}

// Middleware attaches the request's [Caller] and guards routes that need one.
type Middleware struct {
	tokens  *Tokens
	callers Refresher
	logger  *log.Logger
}

// NewMiddleware creates a [Middleware] verifying tokens with t. When callers is non-nil the admin flag comes
// from the stored account rather than the token, so promotions and demotions apply to live sessions.
func NewMiddleware(t *Tokens, callers Refresher, logger *log.Logger) *Middleware {
	return &Middleware{tokens: t, callers: callers, logger: shared.WithLogger(logger, "component", "auth")}
}

// Authenticate attaches the caller named by a valid token. Requests without a token pass through anonymously;
// requests with an invalid one are rejected.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := m.tokens.Parse(token)
		if err == nil && m.callers != nil {
			caller, err = m.callers.Refresh(r.Context(), caller)
		}
		if err != nil {
			httputil.WriteErr(w, m.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// RequireAuth rejects anonymous requests with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := CallerFrom(r.Context()).RequireUser(); err != nil {
			httputil.WriteErr(w, m.logger, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := CallerFrom(r.Context()).RequireAdmin(); err != nil {
			httputil.WriteErr(w, m.logger, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie stores the session token in an HTTP-only cookie for browser clients.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
