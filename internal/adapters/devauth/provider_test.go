package devauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		Username: "dev-user",
		Email:    "dev@example.com",
		Password: "hunter2",
		Groups:   []string{"admin"},
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresFields(t *testing.T) {
	_, err := NewProvider(Config{Email: "e@x", Password: "p"})
	assert.Error(t, err)
	_, err = NewProvider(Config{Username: "u", Password: "p"})
	assert.Error(t, err)
	_, err = NewProvider(Config{Username: "u", Email: "e@x"})
	assert.Error(t, err)
}

func TestProvider_SignInAndResolve(t *testing.T) {
	p := newTestProvider(t)
	ctx := ports.WithSessionHandle(context.Background(), "handle-1")

	principal, err := p.SignIn(ctx, "dev-user", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", principal.Username)

	got, err := p.CurrentPrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, principal, got)

	sess, err := p.CurrentSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessCredential)
	assert.Equal(t, []string{"admin"}, sess.GroupClaims)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
}

func TestProvider_SignInErrors(t *testing.T) {
	p := newTestProvider(t)
	ctx := ports.WithSessionHandle(context.Background(), "handle-1")

	_, err := p.SignIn(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, domainauth.ErrUserNotFound)

	_, err = p.SignIn(ctx, "dev-user", "wrong")
	assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
}

func TestProvider_NoSession(t *testing.T) {
	p := newTestProvider(t)

	// No handle in context at all.
	_, err := p.CurrentSession(context.Background())
	assert.ErrorIs(t, err, domainauth.ErrNoSession)

	// Handle present but never signed in.
	ctx := ports.WithSessionHandle(context.Background(), "unknown")
	_, err = p.CurrentPrincipal(ctx)
	assert.ErrorIs(t, err, domainauth.ErrNoSession)
}

func TestProvider_SignOutIdempotent(t *testing.T) {
	p := newTestProvider(t)
	ctx := ports.WithSessionHandle(context.Background(), "handle-1")

	_, err := p.SignIn(ctx, "dev-user", "hunter2")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx))
	_, err = p.CurrentSession(ctx)
	assert.ErrorIs(t, err, domainauth.ErrNoSession)

	// Second sign-out and sign-out without any handle are both fine.
	require.NoError(t, p.SignOut(ctx))
	require.NoError(t, p.SignOut(context.Background()))
}

func TestProvider_FreshCredentialPerCall(t *testing.T) {
	p := newTestProvider(t)
	ctx := ports.WithSessionHandle(context.Background(), "handle-1")

	_, err := p.SignIn(ctx, "dev-user", "hunter2")
	require.NoError(t, err)

	a, err := p.CurrentSession(ctx)
	require.NoError(t, err)
	b, err := p.CurrentSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.AccessCredential, b.AccessCredential)
}
