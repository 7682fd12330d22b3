package service

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// AuthStoreOptions groups dependencies for AuthStore.
type AuthStoreOptions struct {
	Provider ports.IdentityProvider
	Roles    ports.RoleMapper

	// IdleTTL bounds how long the registry keeps a store no request has
	// touched. Zero selects the default.
	IdleTTL time.Duration
}

// AuthStore is the observable authentication state holder for one browser
// session. It owns the phase machine: Initializing until the first
// resolution completes, then Authenticated or Unauthenticated. The role is
// recomputed from group claims on every resolution, never carried over.
type AuthStore struct {
	provider ports.IdentityProvider
	roles    ports.RoleMapper

	mu      sync.RWMutex
	state   domainauth.State
	subs    map[int]chan domainauth.State
	nextSub int
}

// NewAuthStore constructs an AuthStore in the Initializing phase.
func NewAuthStore(opts AuthStoreOptions) *AuthStore {
	return &AuthStore{
		provider: opts.Provider,
		roles:    opts.Roles,
		state:    domainauth.Initializing(),
		subs:     make(map[int]chan domainauth.State),
	}
}

// State returns the current snapshot.
func (s *AuthStore) State() domainauth.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers an observer of state transitions. The returned
// channel carries the latest snapshot (latest wins, never blocks the
// store); cancel releases it.
func (s *AuthStore) Subscribe() (<-chan domainauth.State, func()) {
	ch := make(chan domainauth.State, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// Resolve determines the current state against the provider. Both the
// principal lookup and the session fetch must succeed to reach
// Authenticated; any failure, benign or not, lands in Unauthenticated.
func (s *AuthStore) Resolve(ctx context.Context) domainauth.State {
	principal, err := s.provider.CurrentPrincipal(ctx)
	if err != nil {
		return s.setState(domainauth.Unauthenticated())
	}
	session, err := s.provider.CurrentSession(ctx)
	if err != nil {
		return s.setState(domainauth.Unauthenticated())
	}

	role := s.roles.Map(session.GroupClaims)
	return s.setState(domainauth.AuthenticatedState(principal, role))
}

// Refresh re-resolves from scratch: the store passes through Initializing
// so observers render pending rather than stale content.
func (s *AuthStore) Refresh(ctx context.Context) domainauth.State {
	s.setState(domainauth.Initializing())
	return s.Resolve(ctx)
}

// SignIn establishes a session from credentials and resolves the new
// state. On failure the taxonomy error is returned and the store lands in
// Unauthenticated.
func (s *AuthStore) SignIn(ctx context.Context, username, password string) (domainauth.State, error) {
	s.setState(domainauth.Initializing())
	if _, err := s.provider.SignIn(ctx, username, password); err != nil {
		return s.setState(domainauth.Unauthenticated()), err
	}
	return s.Resolve(ctx), nil
}

// SignOut drops the session. It always lands in Unauthenticated, even if
// the provider's revocation fails; such failures are not surfaced.
func (s *AuthStore) SignOut(ctx context.Context) domainauth.State {
	_ = s.provider.SignOut(ctx)
	return s.setState(domainauth.Unauthenticated())
}

func (s *AuthStore) setState(next domainauth.State) domainauth.State {
	s.mu.Lock()
	s.state = next
	for _, ch := range s.subs {
		// Latest wins: drop the stale snapshot if the observer is behind.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
	s.mu.Unlock()
	return next
}

// defaultIdleTTL is how long an untouched store survives in the registry.
const defaultIdleTTL = 30 * time.Minute

type storeEntry struct {
	store    *AuthStore
	lastSeen time.Time
}

// StoreRegistry hands out one AuthStore per browser session handle. Stores
// idle past the TTL are swept; credentials live in the token store, so an
// authenticated session swept here is rebuilt on its next request.
type StoreRegistry struct {
	opts AuthStoreOptions
	ttl  time.Duration
	now  func() time.Time

	mu     sync.Mutex
	stores map[string]*storeEntry
}

// NewStoreRegistry constructs a registry producing stores with opts.
func NewStoreRegistry(opts AuthStoreOptions) (*StoreRegistry, error) {
	if opts.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("role mapper is required")
	}
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	return &StoreRegistry{
		opts:   opts,
		ttl:    ttl,
		now:    time.Now,
		stores: make(map[string]*storeEntry),
	}, nil
}

// Get returns the store for a handle, creating it on first use. Each new
// handle triggers a sweep of idle entries, so cookie-less traffic cannot
// grow the map beyond one TTL window of distinct visitors.
func (r *StoreRegistry) Get(handle string) *AuthStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if e, ok := r.stores[handle]; ok {
		e.lastSeen = now
		return e.store
	}

	for h, e := range r.stores {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.stores, h)
		}
	}
	e := &storeEntry{store: NewAuthStore(r.opts), lastSeen: now}
	r.stores[handle] = e
	return e.store
}

// Evict drops the store for a handle, typically after sign-out.
func (r *StoreRegistry) Evict(handle string) {
	r.mu.Lock()
	delete(r.stores, handle)
	r.mu.Unlock()
}
