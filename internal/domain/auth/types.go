package auth

// Package auth contains domain-level types for authentication state and
// route gating. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleRegularUser   Role = "user"
)

// Phase is the lifecycle phase of an auth state holder.
type Phase string

const (
	PhaseInitializing    Phase = "initializing"
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseAuthenticated   Phase = "authenticated"
)

// Principal represents the authenticated user returned by the identity
// provider. Adapters map provider-specific claims into this shape.
// Immutable for the duration of an authenticated interval.
type Principal struct {
	Username    string `json:"username"` // stable identifier (e.g., sub or username)
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Session carries the material needed to act on the principal's behalf.
// Derived on demand from the provider; never persisted by the auth core.
type Session struct {
	AccessCredential string    `json:"-"` // bearer token for downstream calls
	GroupClaims      []string  `json:"group_claims"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Expired reports whether the session's credential is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// State is an immutable snapshot of the auth lifecycle. Phase is
// PhaseAuthenticated exactly when Principal and Role are both set.
type State struct {
	Phase     Phase      `json:"phase"`
	Principal *Principal `json:"principal,omitempty"`
	Role      Role       `json:"role,omitempty"`
}

// Authenticated reports whether the state carries a resolved principal.
func (s State) Authenticated() bool {
	return s.Phase == PhaseAuthenticated && s.Principal != nil && s.Role != ""
}

// Unauthenticated returns the canonical signed-out state.
func Unauthenticated() State { return State{Phase: PhaseUnauthenticated} }

// Initializing returns the canonical pre-resolution state.
func Initializing() State { return State{Phase: PhaseInitializing} }

// Authenticated constructs a resolved state for the given principal and role.
func AuthenticatedState(p Principal, role Role) State {
	return State{Phase: PhaseAuthenticated, Principal: &p, Role: role}
}

// DefaultLanding is where a signed-in user goes when no explicit
// destination was preserved. Administrators land on the dashboard root;
// everyone else on their task list.
func DefaultLanding(role Role) string {
	if role == RoleAdministrator {
		return "/"
	}
	return "/tasks"
}
