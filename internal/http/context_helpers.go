package httpx

import (
	"context"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// Unexported context key types to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same keys.
type (
	authStateKey struct{}
	authStoreKey struct{}
)

func withAuthState(ctx context.Context, state domainauth.State) context.Context {
	return context.WithValue(ctx, authStateKey{}, state)
}

func withAuthStore(ctx context.Context, store *service.AuthStore) context.Context {
	return context.WithValue(ctx, authStoreKey{}, store)
}

// AuthStateFromContext returns the resolved auth state for the request.
// Requests that bypassed the session middleware read as Initializing,
// which every guard treats as pending rather than authenticated.
func AuthStateFromContext(ctx context.Context) domainauth.State {
	if state, ok := ctx.Value(authStateKey{}).(domainauth.State); ok {
		return state
	}
	return domainauth.Initializing()
}

// AuthStoreFromContext returns the request's auth store, if the session
// middleware ran.
func AuthStoreFromContext(ctx context.Context) (*service.AuthStore, bool) {
	store, ok := ctx.Value(authStoreKey{}).(*service.AuthStore)
	return store, ok && store != nil
}
