package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) accounts(ctx context.Context, cmd *cli.Command) (*auth.Accounts, func(), error) {
	db, err := r.openDatabase(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	tokens := auth.NewTokens(r.config.Auth.JWTSecret, r.config.Auth.TokenTTL)
	accounts := auth.NewAccounts(db, tokens, shared.WithLogger(r.logger, "component", "accounts"))
	return accounts, func() { db.Close() }, nil
}

// UsersCreate creates an email/password account, optionally as an admin.
func (r *Runner) UsersCreate(ctx context.Context, cmd *cli.Command) error {
	accounts, done, err := r.accounts(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	user, err := accounts.CreateUser(ctx, cmd.String("name"), cmd.String("email"), cmd.String("password"), cmd.Bool("admin"))
	if err != nil {
		return err
	}
	role := "user"
	if user.Admin {
		role = "admin"
	}
	return r.writePlain("✓ Created %s %s (id %d)\n", role, user.Email, user.ID)
}

// UsersPromote grants admin rights, or revokes them with --revoke.
func (r *Runner) UsersPromote(ctx context.Context, cmd *cli.Command) error {
	accounts, done, err := r.accounts(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	user, err := accounts.SetAdmin(ctx, cmd.String("email"), !cmd.Bool("revoke"))
	if err != nil {
		return err
	}
	if user.Admin {
		return r.writePlain("✓ %s is now an admin\n", user.Email)
	}
	return r.writePlain("✓ %s is no longer an admin\n", user.Email)
}

// UsersList prints every account.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	accounts, done, err := r.accounts(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	users, err := accounts.List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		admin := ""
		if u.Admin {
			admin = " [admin]"
		}
		r.writePlain("%4d  %-32s %-10s %s%s\n", u.ID, u.Email, u.Provider, u.Name, admin)
	}
	return nil
}
