package auth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	stateCookie     = "oauth_state"
	googleUserInfo  = "https://openidconnect.googleapis.com/v1/userinfo"
	googleLoginPath = "/auth/google/login"
	googleCallback  = "/auth/google/callback"
)

// GoogleUser is the subset of the OpenID userinfo response used to sign in.
type GoogleUser struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleHandler runs the OAuth2 authorization code flow against Google and signs the user in.
//
// The login route stores a random state in a short-lived cookie and redirects to Google. The callback
// checks the state, exchanges the code, reads the userinfo endpoint and returns a session.
type GoogleHandler struct {
	config      *oauth2.Config
	accounts    *Accounts
	userInfoURL string
	logger      *log.Logger
}

// NewGoogleHandler creates a [GoogleHandler] for the configured client.
func NewGoogleHandler(cfg shared.GoogleConfig, accounts *Accounts, logger *log.Logger) *GoogleHandler {
	return &GoogleHandler{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		accounts:    accounts,
		userInfoURL: googleUserInfo,
		logger:      shared.WithLogger(logger, "component", "google"),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *GoogleHandler) Routes() []string {
	return []string{"GET " + googleLoginPath, "GET " + googleCallback}
}

func (h *GoogleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case googleLoginPath:
		h.login(w, r)
	case googleCallback:
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *GoogleHandler) login(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusFound)
}

func (h *GoogleHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		httputil.WriteErr(w, h.logger, fmt.Errorf("%w: invalid state parameter", shared.ErrUnauthorized))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})

	code := q.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: authorization failed: %s %s", shared.ErrUnauthorized, q.Get("error"), q.Get("error_description"))
		httputil.WriteErr(w, h.logger, err)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		httputil.WriteErr(w, h.logger, fmt.Errorf("%w: token exchange failed: %v", shared.ErrUnauthorized, err))
		return
	}

	profile, err := h.fetchUser(r, token)
	if err != nil {
		httputil.WriteErr(w, h.logger, err)
		return
	}

	session, err := h.accounts.SignInExternal(r.Context(), models.ProviderGoogle, profile.Name, profile.Email, profile.Picture)
	if err != nil {
		httputil.WriteErr(w, h.logger, err)
		return
	}

	SetSessionCookie(w, r, session)
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *GoogleHandler) fetchUser(r *http.Request, token *oauth2.Token) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := h.config.Client(r.Context(), token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned %d", shared.ErrUnauthorized, resp.StatusCode)
	}

	var u GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if u.Email == "" || !u.EmailVerified {
		return nil, fmt.Errorf("%w: google account has no verified email", shared.ErrUnauthorized)
	}
	return &u, nil
}
