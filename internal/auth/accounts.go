package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// Session is a signed-in user with their token.
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// AccountPatch lists the profile fields to change. Nil fields are left alone.
type AccountPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Image *string `json:"image"`
}

// Accounts manages users, credentials and sessions.
type Accounts struct {
	db     *sql.DB
	users  *repositories.UserRepository
	tokens *Tokens
	logger *log.Logger
}

// NewAccounts creates an [Accounts] service.
func NewAccounts(db *sql.DB, tokens *Tokens, logger *log.Logger) *Accounts {
	return &Accounts{
		db:     db,
		users:  repositories.NewUserRepository(db),
		tokens: tokens,
		logger: shared.WithLogger(logger, "component", "accounts"),
	}
}

// Tokens returns the token issuer used for sessions.
func (a *Accounts) Tokens() *Tokens { return a.tokens }

// Signup creates a credentials user and signs them in.
func (a *Accounts) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	user, err := a.CreateUser(ctx, name, email, password, false)
	if err != nil {
		return nil, err
	}
	return a.session(user)
}

// CreateUser creates a credentials user without signing in. Used by signup and the CLI.
func (a *Accounts) CreateUser(ctx context.Context, name, email, password string, admin bool) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", shared.ErrInvalidInput)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(name, email, models.ProviderCredentials)
	user.PasswordHash = hash
	user.Admin = admin
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("%w: an account with this email already exists", shared.ErrConflict)
		}
		return nil, err
	}

	a.logger.Info("user created", "user_id", user.ID, "admin", admin)
	return user, nil
}

// Login verifies credentials and issues a session. Unknown emails and wrong passwords fail the same way.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := fmt.Errorf("%w: invalid email or password", shared.ErrUnauthorized)
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid
	}

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		a.logger.Debug("password mismatch", "user_id", user.ID)
		return nil, invalid
	}
	return a.session(user)
}

// Me returns the caller's account.
func (a *Accounts) Me(ctx context.Context, caller Caller) (*models.User, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	return a.users.Get(ctx, caller.UserID)
}

// Refresh reloads the caller's account and returns the caller with its current admin flag.
// A deleted account is [shared.ErrUnauthorized].
func (a *Accounts) Refresh(ctx context.Context, caller Caller) (Caller, error) {
	user, err := a.users.Get(ctx, caller.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return Caller{}, fmt.Errorf("%w: account no longer exists", shared.ErrUnauthorized)
	}
	if err != nil {
		return Caller{}, err
	}
	caller.Admin = user.Admin
	return caller, nil
}

// UpdateAccount changes the caller's profile. At least one field must be given.
func (a *Accounts) UpdateAccount(ctx context.Context, caller Caller, patch AccountPatch) (*models.User, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	if patch.Name == nil && patch.Email == nil && patch.Image == nil {
		return nil, fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}

	user, err := a.users.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		user.Email = shared.NormalizeEmail(*patch.Email)
	}
	if patch.Image != nil {
		user.Image = strings.TrimSpace(*patch.Image)
	}

	if err := a.users.Update(ctx, user); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("%w: email is already in use", shared.ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (a *Accounts) ChangePassword(ctx context.Context, caller Caller, current, next string) error {
	if err := caller.RequireUser(); err != nil {
		return err
	}
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", shared.ErrInvalidInput)
	}

	user, err := a.users.Get(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return fmt.Errorf("%w: account signs in with %s and has no password", shared.ErrInvalidInput, user.Provider)
	}
	if !CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("%w: current password is incorrect", shared.ErrInvalidInput)
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return a.users.SetPassword(ctx, user.ID, hash)
}

// SetAdmin grants or revokes admin rights on the account with email. Requests authenticated through
// [Middleware] see the change immediately; the adm claim of issued tokens is not rewritten.
func (a *Accounts) SetAdmin(ctx context.Context, email string, admin bool) (*models.User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user.Admin = admin
	if err := a.users.Update(ctx, user); err != nil {
		return nil, err
	}
	a.logger.Info("admin flag changed", "user_id", user.ID, "admin", admin)
	return user, nil
}

// List returns every account.
func (a *Accounts) List(ctx context.Context) ([]*models.User, error) {
	return a.users.List(ctx, nil)
}

// ByEmail returns the account with email.
func (a *Accounts) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return a.users.GetByEmail(ctx, email)
}

// SignInExternal finds the user with the provider-verified email or creates one, then signs them in.
//
// An existing credentials account with the same email is reused so one person has one account.
func (a *Accounts) SignInExternal(ctx context.Context, provider models.Provider, name, email, image string) (*Session, error) {
	var user *models.User
	err := repositories.WithTx(ctx, a.db, func(tx *sql.Tx) error {
		users := repositories.NewUserRepository(tx)

		existing, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			user = existing
			if user.Image == "" && image != "" {
				user.Image = image
				return users.Update(ctx, user)
			}
			return nil
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		if strings.TrimSpace(name) == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = models.NewUser(name, email, provider)
		user.Image = image
		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("external sign-in", "user_id", user.ID, "provider", provider)
	return a.session(user)
}

func (a *Accounts) session(user *models.User) (*Session, error) {
	token, exp, err := a.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
