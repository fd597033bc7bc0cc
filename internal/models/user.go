package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// Provider identifies how a user signs in.
type Provider string

const (
	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"
)

// User is an account. PasswordHash is empty for users created through an external provider.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     Provider  `json:"provider"`
	Admin        bool      `json:"admin"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser creates a [User] with normalized email and timestamps set to now.
func NewUser(name, email string, provider Provider) *User {
	now := shared.Now()
	return &User{
		Name:      strings.TrimSpace(name),
		Email:     shared.NormalizeEmail(email),
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) Key() int64 { return u.ID }

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", shared.ErrInvalidInput)
	}
	switch u.Provider {
	case ProviderCredentials, ProviderGoogle:
	default:
		return fmt.Errorf("%w: unknown provider %q", shared.ErrInvalidInput, u.Provider)
	}
	return nil
}
