package auth

// Constraint is the access requirement a route declares.
type Constraint string

const (
	// ConstraintAnyAuthenticated admits any signed-in principal.
	ConstraintAnyAuthenticated Constraint = "any_authenticated"
	// ConstraintAdministrator admits administrators only.
	ConstraintAdministrator Constraint = "administrator"
	// ConstraintRegularUser admits regular users only.
	ConstraintRegularUser Constraint = "regular_user"
	// ConstraintPublicOnly admits signed-out visitors only (login page).
	ConstraintPublicOnly Constraint = "public_only"
)

// GuardDecision is the outcome of evaluating a constraint against a state.
type GuardDecision string

const (
	// RenderChild lets the request through to the guarded handler.
	RenderChild GuardDecision = "render_child"
	// RenderPending defers: state is still resolving, show nothing final.
	RenderPending GuardDecision = "render_pending"
	// RedirectToLogin sends the visitor to the login route, preserving the
	// originally requested location.
	RedirectToLogin GuardDecision = "redirect_to_login"
	// RedirectToDefault sends the principal to their role's landing page.
	RedirectToDefault GuardDecision = "redirect_to_default"
)

// Decide evaluates a route constraint against an auth state snapshot.
// The mapping is total: every (constraint, phase) pair has exactly one
// outcome, and unknown roles are treated as regular users.
func Decide(s State, c Constraint) GuardDecision {
	if s.Phase == PhaseInitializing {
		return RenderPending
	}

	switch c {
	case ConstraintPublicOnly:
		if s.Authenticated() {
			return RedirectToDefault
		}
		return RenderChild
	case ConstraintAnyAuthenticated:
		if s.Authenticated() {
			return RenderChild
		}
		return RedirectToLogin
	case ConstraintAdministrator:
		if !s.Authenticated() {
			return RedirectToLogin
		}
		if s.Role == RoleAdministrator {
			return RenderChild
		}
		return RedirectToDefault
	case ConstraintRegularUser:
		if !s.Authenticated() {
			return RedirectToLogin
		}
		if s.Role == RoleAdministrator {
			return RedirectToDefault
		}
		return RenderChild
	default:
		// Unknown constraints fail closed.
		if s.Authenticated() {
			return RedirectToDefault
		}
		return RedirectToLogin
	}
}
