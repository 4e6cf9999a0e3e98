package cart

import (
	"sync"
	"time"

	"github.com/go-faster/errors"
)

// Seeder supplies the initial state for a new scope. It reports false when it
// has nothing for scopeID, in which case the scope starts empty and closed.
type Seeder func(scopeID string) (State, bool)

type scope struct {
	store    *Store
	lastSeen time.Time
}

// Registry owns one store per scope id. A store is created the first time
// its scope is acquired and reused until the scope is released or swept.
type Registry struct {
	mu     sync.Mutex
	scopes map[string]*scope
	seed   Seeder
	now    func() time.Time
	limit  int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSeeder sets the hydration hook used for new scopes.
func WithSeeder(seed Seeder) RegistryOption {
	return func(r *Registry) { r.seed = seed }
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithMaxScopes caps the number of live scopes. Zero or less means no cap.
func WithMaxScopes(n int) RegistryOption {
	return func(r *Registry) { r.limit = n }
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		scopes: make(map[string]*scope),
		now:    time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Acquire returns the store of scopeID, creating it on first use. Creating a
// scope beyond the cap fails with ErrScopeLimit; existing scopes are always
// returned.
func (r *Registry) Acquire(scopeID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if sc, ok := r.scopes[scopeID]; ok {
		sc.lastSeen = now
		return sc.store, nil
	}

	if r.limit > 0 && len(r.scopes) >= r.limit {
		return nil, errors.Wrapf(ErrScopeLimit, "%d live scopes", len(r.scopes))
	}

	store := New()
	if r.seed != nil {
		if snapshot, ok := r.seed(scopeID); ok {
			seeded, err := FromSnapshot(snapshot)
			if err != nil {
				return nil, errors.Wrapf(err, "seed scope %s", scopeID)
			}
			store = seeded
		}
	}
	r.scopes[scopeID] = &scope{store: store, lastSeen: now}
	return store, nil
}

// Lookup returns the store of scopeID if the scope is live. It never creates
// a scope.
func (r *Registry) Lookup(scopeID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc, ok := r.scopes[scopeID]
	if !ok {
		return nil, false
	}
	sc.lastSeen = r.now()
	return sc.store, true
}

// Release tears down the scope. It reports whether the scope existed.
func (r *Registry) Release(scopeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[scopeID]; !ok {
		return false
	}
	delete(r.scopes, scopeID)
	return true
}

// Sweep tears down every scope not acquired since the given time and returns
// how many were removed.
func (r *Registry) Sweep(idleSince time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sc := range r.scopes {
		if sc.lastSeen.Before(idleSince) {
			delete(r.scopes, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live scopes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes)
}
