// package server exposes marquee's HTTP API: routing, middleware and JSON handlers over the domain services
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/cache"
	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/ratings"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/watchlist"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the method-qualified patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the patterns this handler serves, e.g. "GET /auth/google/login"
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                                             // Use adds middleware to the global stack
	Handle(method, path string, handler http.Handler, middleware ...Middleware) // Handle registers a route
	Handler(handler Handler)                                                  // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request)                         // ServeHTTP implements http.Handler for the entire router
}

// Server wires the domain services to the HTTP API.
type Server struct {
	config *shared.Config
	router *BasicRouter
	http   *http.Server
	api    *API
	logger *log.Logger
}

// New builds the services on db and store and registers every route.
func New(cfg *shared.Config, db *sql.DB, store cache.Store, base *log.Logger) *Server {
	logger := shared.WithLogger(base, "component", "server")
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	accounts := auth.NewAccounts(db, tokens, base)
	guard := auth.NewMiddleware(tokens, accounts, base)

	s := &Server{
		config: cfg,
		router: NewBasicRouter(),
		logger: logger,
		api: &API{
			db:         db,
			accounts:   accounts,
			catalog:    catalog.NewService(db, store, base),
			watchlists: watchlist.New(db, base),
			ratings:    ratings.NewService(db, store, cfg.Cache.TTL, base),
			logger:     logger,
		},
	}

	s.router.Use(
		Recover(logger),
		RequestID,
		Logging(logger),
		CORS(cfg.Server.AllowedOrigins),
		NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).Middleware,
		Timeout(cfg.Server.RequestTimeout),
		guard.Authenticate,
	)
	s.routes(guard)

	if cfg.Auth.Google.Enabled() {
		s.router.Handler(auth.NewGoogleHandler(cfg.Auth.Google, accounts, base))
	} else {
		logger.Debug("google sign-in disabled, no client credentials")
	}

	s.http = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler returns the root handler with every middleware applied.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Start listens and serves until [Server.Shutdown] is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.http.Shutdown(ctx)
}
