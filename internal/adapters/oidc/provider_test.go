package oidc

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	mockauth "github.com/OnTrak-Tech/TaskBuddy/internal/mocks/auth"
)

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var issuer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/auth",
			"token_endpoint":         issuer + "/token",
			"userinfo_endpoint":      issuer + "/userinfo",
			"jwks_uri":               issuer + "/jwks",
		})
	}))
	t.Cleanup(server.Close)
	issuer = server.URL
	return server
}

func TestNewProvider_Success(t *testing.T) {
	discovery := newDiscoveryServer(t)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scope:        "openid profile email groups",
		DiscoveryURL: discovery.URL,
		Tokens:       mockauth.NewMemoryTokenStore(),
	})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Equal(t, discovery.URL+"/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email", "groups"}, provider.config.Scopes)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
	}{
		{"missing client ID", ProviderConfig{DiscoveryURL: "http://example.com", Tokens: mockauth.NewMemoryTokenStore()}},
		{"missing discovery URL", ProviderConfig{ClientID: "c", Tokens: mockauth.NewMemoryTokenStore()}},
		{"missing token store", ProviderConfig{ClientID: "c", DiscoveryURL: "http://example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestMapTokenError(t *testing.T) {
	invalidGrant := &oauth2.RetrieveError{ErrorCode: "invalid_grant"}
	assert.ErrorIs(t, mapTokenError(invalidGrant), domainauth.ErrInvalidCredentials)

	otherCode := &oauth2.RetrieveError{ErrorCode: "unauthorized_client"}
	err := mapTokenError(otherCode)
	assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "unauthorized_client")

	network := errors.New("dial tcp: connection refused")
	assert.ErrorIs(t, mapTokenError(network), domainauth.ErrTransportFailure)
}

func TestTokenSetFromOAuth(t *testing.T) {
	expiry := time.Now().Add(15 * time.Minute)
	tok := (&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}).WithExtra(map[string]any{"id_token": "the-id-token"})

	ts := tokenSetFromOAuth(tok)
	assert.Equal(t, "access", ts.AccessToken)
	assert.Equal(t, "refresh", ts.RefreshToken)
	assert.Equal(t, "the-id-token", ts.IDToken)
	assert.Equal(t, expiry, ts.ExpiresAt)
}

func TestTokenSetFromOAuth_DefaultsExpiry(t *testing.T) {
	ts := tokenSetFromOAuth(&oauth2.Token{AccessToken: "access"})
	assert.False(t, ts.ExpiresAt.IsZero())
	assert.True(t, ts.ExpiresAt.After(time.Now()))
}

func TestIDClaims_Principal(t *testing.T) {
	c := idClaims{Sub: "sub-1", Email: "a@example.com", Name: "Alice", PreferredUsername: "alice"}
	p := c.principal()
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, "Alice", p.DisplayName)

	bare := idClaims{Sub: "sub-2"}
	p = bare.principal()
	assert.Equal(t, "sub-2", p.Username)
}
