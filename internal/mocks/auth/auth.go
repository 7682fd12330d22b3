package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.TokenStore       = (*MemoryTokenStore)(nil)
	_ ports.RoleMapper       = (*StaticRoleMapper)(nil)
	_ ports.Notifier         = (*RecordingNotifier)(nil)
)

// MockIdentityProvider simulates an identity provider for tests.
// Each operation may be overridden with a func field; otherwise a
// deterministic default applies, driven by the SignedIn flag.
type MockIdentityProvider struct {
	CurrentPrincipalFunc func(ctx context.Context) (domainauth.Principal, error)
	CurrentSessionFunc   func(ctx context.Context) (domainauth.Session, error)
	SignInFunc           func(ctx context.Context, username, password string) (domainauth.Principal, error)
	SignOutFunc          func(ctx context.Context) error

	// Deterministic defaults for predictable testing
	SignedIn         bool
	DefaultPrincipal domainauth.Principal
	DefaultGroups    []string
	Credential       string

	// Call counters for assertions
	SessionCalls int
	SignOutCalls int
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultPrincipal: domainauth.Principal{
			Username:    "mock-user-1",
			Email:       "mock.user@example.com",
			DisplayName: "Mock User",
		},
		DefaultGroups: []string{"users"},
		Credential:    "mock-credential",
	}
}

func (m *MockIdentityProvider) CurrentPrincipal(ctx context.Context) (domainauth.Principal, error) {
	if m.CurrentPrincipalFunc != nil {
		return m.CurrentPrincipalFunc(ctx)
	}
	if !m.SignedIn {
		return domainauth.Principal{}, domainauth.ErrNoSession
	}
	return m.DefaultPrincipal, nil
}

func (m *MockIdentityProvider) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	m.SessionCalls++
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	if !m.SignedIn {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	return domainauth.Session{
		AccessCredential: m.Credential,
		GroupClaims:      append([]string(nil), m.DefaultGroups...),
		ExpiresAt:        time.Now().Add(time.Hour),
	}, nil
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, username, password string) (domainauth.Principal, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, username, password)
	}
	if password == "wrong" {
		return domainauth.Principal{}, domainauth.ErrInvalidCredentials
	}
	m.SignedIn = true
	p := m.DefaultPrincipal
	if username != "" {
		p.Username = username
	}
	return p, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	m.SignOutCalls++
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	m.SignedIn = false
	return nil
}

// MemoryTokenStore is an in-memory token store for unit tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]ports.TokenSet
}

// NewMemoryTokenStore creates a new in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]ports.TokenSet),
	}
}

func (m *MemoryTokenStore) Save(_ context.Context, handle string, ts ports.TokenSet) error {
	if handle == "" {
		return errors.New("token handle cannot be empty")
	}
	m.mu.Lock()
	m.tokens[handle] = ts
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) Get(_ context.Context, handle string) (ports.TokenSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.tokens[handle]
	if !ok {
		return ports.TokenSet{}, ErrNotFound
	}
	return ts, nil
}

func (m *MemoryTokenStore) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	delete(m.tokens, handle)
	m.mu.Unlock()
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by exact membership in AdminGroup.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdministrator
		}
	}
	return domainauth.RoleRegularUser
}

// RecordingNotifier captures notices for assertions.
type RecordingNotifier struct {
	Successes []string
	Errors    []string
}

func (n *RecordingNotifier) Success(_ context.Context, message string) {
	n.Successes = append(n.Successes, message)
}

func (n *RecordingNotifier) Error(_ context.Context, message string) {
	n.Errors = append(n.Errors, message)
}
