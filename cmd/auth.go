package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
)

// AuthLogin signs in to a running server and prints the session token, optionally saving it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	c := r.apiClient(cmd)

	r.logger.Info("signing in", "email", cmd.String("email"))
	session, err := c.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}

	if path := cmd.String("save"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(session.Token), 0600); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		r.logger.Infof("token saved to %v", path)
	}

	r.writePlain("✓ Signed in as %s\n", session.User.Email)
	r.writePlain("Expires: %s\n", session.ExpiresAt.Format("2006-01-02 15:04"))
	r.writePlainln("export MARQUEE_TOKEN=%s", session.Token)
	return nil
}

// AuthStatus checks that the server and its database are reachable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking server health")
	if err := r.apiClient(cmd).Health(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Service is healthy\n")
}
