// Package auth resolves bearer session tokens to users.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrSessionNotFound is returned when no live session matches a token hash.
var ErrSessionNotFound = errors.New("session not found")

// User is an authenticated shopper.
type User struct {
	ID    string
	Email string
}

// Session binds a hashed bearer token to a user.
type Session struct {
	TokenHash string
	User      User
	ExpiresAt time.Time
}

// Expired reports whether s is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Repository provides lookup of sessions by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*Session, error)
}

type userKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}
