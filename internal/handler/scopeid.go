package handler

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

const scopeMACSize = 16

// ScopeSigner issues and verifies cart scope cookie values. A value is a
// random scope id followed by a truncated HMAC-SHA256 of that id, so only
// ids issued by a server holding the key are accepted.
type ScopeSigner struct {
	key []byte
}

// NewScopeSigner creates a ScopeSigner keyed by key.
func NewScopeSigner(key []byte) *ScopeSigner {
	return &ScopeSigner{key: key}
}

// NewRandomScopeSigner creates a ScopeSigner with a fresh random key. Its
// cookies are only valid for the lifetime of the process.
func NewRandomScopeSigner() (*ScopeSigner, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Wrap(err, "generate scope key")
	}
	return NewScopeSigner(key), nil
}

// Issue returns a new scope id and the cookie value carrying it.
func (s *ScopeSigner) Issue() (scopeID, value string) {
	id := uuid.NewString()
	return id, id + "." + s.sign(id)
}

// Verify returns the scope id carried by value if its signature is valid.
func (s *ScopeSigner) Verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}
	if parsed, err := uuid.Parse(id); err != nil || parsed.String() != id {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(id))) {
		return "", false
	}
	return id, true
}

// Valid reports whether value is a scope cookie issued with this key.
func (s *ScopeSigner) Valid(value string) bool {
	_, ok := s.Verify(value)
	return ok
}

func (s *ScopeSigner) sign(id string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte("cart-scope:"))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:scopeMACSize])
}
