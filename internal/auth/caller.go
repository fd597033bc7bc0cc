package auth

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

type contextKey string

const callerKey contextKey = "caller"

// Caller is the identity an operation runs as. The zero value is an anonymous caller.
type Caller struct {
	UserID   int64
	Admin    bool
	Provider models.Provider
}

// CallerOf returns the [Caller] for a stored user.
func CallerOf(u *models.User) Caller {
	return Caller{UserID: u.ID, Admin: u.Admin, Provider: u.Provider}
}

// Anonymous reports whether no user is signed in.
func (c Caller) Anonymous() bool { return c.UserID == 0 }

// RequireUser fails with [shared.ErrUnauthorized] for anonymous callers.
func (c Caller) RequireUser() error {
	if c.Anonymous() {
		return fmt.Errorf("%w: sign in required", shared.ErrUnauthorized)
	}
	return nil
}

// RequireAdmin fails with [shared.ErrUnauthorized] for anonymous callers and [shared.ErrForbidden] for non-admins.
func (c Caller) RequireAdmin() error {
	if err := c.RequireUser(); err != nil {
		return err
	}
	if !c.Admin {
		return fmt.Errorf("%w: admin access required", shared.ErrForbidden)
	}
	return nil
}

// Owns reports whether the caller is the given owner.
func (c Caller) Owns(ownerID int64) bool {
	return !c.Anonymous() && c.UserID == ownerID
}

// WithCaller attaches c to ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the caller attached to ctx, or the anonymous caller.
func CallerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey).(Caller)
	return c
}
