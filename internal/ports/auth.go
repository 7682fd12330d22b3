package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
)

// IdentityProvider adapts an external identity service. All operations are
// scoped to the browser session handle carried in ctx; adapters resolve it
// through their TokenStore.
//
// Error taxonomy: CurrentPrincipal and CurrentSession return
// auth.ErrNoSession when no usable session exists; SignIn returns
// auth.ErrInvalidCredentials, auth.ErrUserNotConfirmed or
// auth.ErrUserNotFound for the respective provider rejections; any
// operation may return auth.ErrTransportFailure (wrapped) when the
// provider is unreachable.
type IdentityProvider interface {
	// CurrentPrincipal returns the signed-in user's identity attributes.
	CurrentPrincipal(ctx context.Context) (domainauth.Principal, error)

	// CurrentSession returns fresh session material, silently renewing
	// expired credentials when the provider allows it. Callers must fetch
	// it anew before every credentialed use; the result is never cached.
	CurrentSession(ctx context.Context) (domainauth.Session, error)

	// SignIn establishes a session from a username/password pair.
	SignIn(ctx context.Context, username, password string) (domainauth.Principal, error)

	// SignOut drops the session. Idempotent: signing out without a
	// session is not an error, and provider-side revocation failures are
	// swallowed after local state is cleared.
	SignOut(ctx context.Context) error
}

// TokenSet is the provider-owned session material persisted between
// requests, keyed by browser session handle.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenStore persists provider token material per browser session.
// Get returns an error satisfying IsNotFound for unknown handles.
type TokenStore interface {
	Save(ctx context.Context, handle string, ts TokenSet) error
	Get(ctx context.Context, handle string) (TokenSet, error)
	Delete(ctx context.Context, handle string) error
}

// RoleMapper derives the application role from provider group claims.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// Notifier surfaces transient user-visible notices (toasts) alongside a
// request's response.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}
