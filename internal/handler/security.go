package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

var errUnauthorized = errors.New("unauthorized")

// SecurityHandler authenticates bearer session tokens via their HMAC-SHA256
// hash.
type SecurityHandler struct {
	sessions auth.Repository
	pepper   []byte
	now      func() time.Time
}

// NewSecurityHandler creates a SecurityHandler with the given session
// repository and HMAC pepper.
func NewSecurityHandler(sessions auth.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		sessions: sessions,
		pepper:   pepper,
		now:      time.Now,
	}
}

// HashToken returns the hex HMAC-SHA256 of token under pepper. Session rows
// store this value.
func HashToken(pepper []byte, token string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate resolves token to its user.
func (s *SecurityHandler) Authenticate(ctx context.Context, token string) (auth.User, error) {
	if token == "" {
		return auth.User{}, errUnauthorized
	}
	hash := HashToken(s.pepper, token)

	session, err := s.sessions.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return auth.User{}, errUnauthorized
		}
		return auth.User{}, errors.Wrap(err, "find session")
	}

	// The row is trusted only if it carries the hash we computed.
	if subtle.ConstantTimeCompare([]byte(hash), []byte(session.TokenHash)) != 1 {
		return auth.User{}, errUnauthorized
	}
	if session.Expired(s.now()) {
		return auth.User{}, errUnauthorized
	}
	return session.User, nil
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// token and stores the user in the context of the rest.
func (s *SecurityHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpmiddleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := s.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, errUnauthorized) {
				httpmiddleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			zctx.From(r.Context()).Error("Authenticate session", zap.Error(err))
			httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := zctx.With(auth.WithUser(r.Context(), user), zap.String("user_id", user.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalSession stores the user in the context when the request carries a
// valid bearer token. Requests without one, or with an unknown or expired
// token, continue signed out.
func (s *SecurityHandler) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.Authenticate(r.Context(), token)
		switch {
		case errors.Is(err, errUnauthorized):
			next.ServeHTTP(w, r)
		case err != nil:
			zctx.From(r.Context()).Error("Authenticate session", zap.Error(err))
			httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
		default:
			ctx := zctx.With(auth.WithUser(r.Context(), user), zap.String("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
