package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/marquee/internal/cache"
	"github.com/desertthunder/marquee/internal/server"
	"github.com/urfave/cli/v3"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop signal.
const shutdownTimeout = 15 * time.Second

// Serve runs the HTTP API until SIGINT or SIGTERM, then drains in-flight requests.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := *config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Server.Port = int(port)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "change-me" {
		r.logger.Warn("auth.jwt_secret is the example value; set MARQUEE_JWT_SECRET before exposing the server")
	}

	db, err := r.openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	store := cache.Open(ctx, cfg.Cache, r.logger)
	defer store.Close()

	srv := server.New(&cfg, db, store, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() { errs <- srv.Start() }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errs
}
