package auth

import "errors"

// Sentinel errors forming the identity provider's error taxonomy. Adapters
// translate provider-specific failures into these; callers branch with
// errors.Is.
var (
	// ErrNoSession means no usable session exists. The benign signed-out
	// signal, not a failure.
	ErrNoSession = errors.New("auth: no session")

	// ErrInvalidCredentials means the supplied username/password pair was
	// rejected by the provider.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrUserNotConfirmed means the account exists but has not completed
	// its confirmation step.
	ErrUserNotConfirmed = errors.New("auth: user not confirmed")

	// ErrUserNotFound means the provider has no account for the username.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrTransportFailure means the provider or backend could not be
	// reached at all.
	ErrTransportFailure = errors.New("auth: transport failure")

	// ErrUnauthenticated is returned by credentialed operations attempted
	// without an authenticated session.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
)
