package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "marquee"

// Claims are the JWT claims of a session token.
type Claims struct {
	Admin    bool            `json:"adm"`
	Provider models.Provider `json:"prv"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a [Tokens] signing with secret. Tokens expire after ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: shared.Now}
}

// Issue signs a token for u and returns it with its expiry.
func (t *Tokens) Issue(u *models.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)

	claims := Claims{
		Admin:    u.Admin,
		Provider: u.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        shared.GenerateID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns the caller it names. Any failure is [shared.ErrUnauthorized].
func (t *Tokens) Parse(token string) (Caller, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Caller{}, fmt.Errorf("%w: session expired", shared.ErrUnauthorized)
		}
		return Caller{}, fmt.Errorf("%w: invalid session token: %v", shared.ErrUnauthorized, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Caller{}, fmt.Errorf("%w: invalid token subject", shared.ErrUnauthorized)
	}
	return Caller{UserID: id, Admin: claims.Admin, Provider: claims.Provider}, nil
}
