package oidc

// Package oidc provides a generic OIDC identity adapter using the
// resource-owner password grant. Used when the deployment fronts a
// standards-compliant provider instead of Cognito.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// Provider implements ports.IdentityProvider against a generic OIDC
// provider. Token material is persisted per browser session handle in the
// injected TokenStore; credentials themselves are never cached in memory.
type Provider struct {
	config     *oauth2.Config
	tokens     ports.TokenStore
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	// staleVerifier accepts expired tokens; used to re-read claims from
	// stored material whose signature was already verified at issuance.
	staleVerifier *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	Tokens       ports.TokenStore
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if config.Tokens == nil {
		return nil, errors.New("token store is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		tokens:     config.Tokens,
		httpClient: httpClient,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})
	p.staleVerifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID, SkipExpiryCheck: true})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

func (p *Provider) SignIn(ctx context.Context, username, password string) (domainauth.Principal, error) {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return domainauth.Principal{}, errors.New("oidc: no session handle in context")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return domainauth.Principal{}, mapTokenError(err)
	}

	claims, err := p.verifyClaims(ctx, tok, p.verifier)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("verify id_token: %w", err)
	}

	if saveErr := p.tokens.Save(ctx, handle, tokenSetFromOAuth(tok)); saveErr != nil {
		return domainauth.Principal{}, fmt.Errorf("save token set: %w", saveErr)
	}

	return claims.principal(), nil
}

func (p *Provider) CurrentPrincipal(ctx context.Context) (domainauth.Principal, error) {
	ts, err := p.currentTokens(ctx)
	if err != nil {
		return domainauth.Principal{}, err
	}
	claims, err := p.claimsFromStored(ctx, ts)
	if err != nil {
		return domainauth.Principal{}, err
	}
	return claims.principal(), nil
}

func (p *Provider) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	ts, err := p.currentTokens(ctx)
	if err != nil {
		return domainauth.Session{}, err
	}
	claims, err := p.claimsFromStored(ctx, ts)
	if err != nil {
		return domainauth.Session{}, err
	}
	return domainauth.Session{
		AccessCredential: ts.AccessToken,
		GroupClaims:      claims.Groups,
		ExpiresAt:        ts.ExpiresAt,
	}, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return nil
	}
	return p.tokens.Delete(ctx, handle)
}

// currentTokens loads the handle's token set, refreshing through the
// provider's token endpoint when the access token has expired.
func (p *Provider) currentTokens(ctx context.Context) (ports.TokenSet, error) {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return ports.TokenSet{}, domainauth.ErrNoSession
	}

	ts, err := p.tokens.Get(ctx, handle)
	if err != nil {
		return ports.TokenSet{}, domainauth.ErrNoSession
	}

	if time.Now().Before(ts.ExpiresAt) {
		return ts, nil
	}
	if ts.RefreshToken == "" {
		_ = p.tokens.Delete(ctx, handle)
		return ports.TokenSet{}, domainauth.ErrNoSession
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: ts.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		if errors.Is(mapTokenError(err), domainauth.ErrTransportFailure) {
			return ports.TokenSet{}, fmt.Errorf("refresh token: %w", domainauth.ErrTransportFailure)
		}
		// Refresh grant rejected: treat as signed out.
		_ = p.tokens.Delete(ctx, handle)
		return ports.TokenSet{}, domainauth.ErrNoSession
	}

	fresh := tokenSetFromOAuth(tok)
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = ts.RefreshToken
	}
	if fresh.IDToken == "" {
		fresh.IDToken = ts.IDToken
	}
	if saveErr := p.tokens.Save(ctx, handle, fresh); saveErr != nil {
		return ports.TokenSet{}, fmt.Errorf("save refreshed token set: %w", saveErr)
	}
	return fresh, nil
}

type idClaims struct {
	Sub               string   `json:"sub"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	Groups            []string `json:"groups"`
}

func (c idClaims) principal() domainauth.Principal {
	username := c.PreferredUsername
	if username == "" {
		username = c.Sub
	}
	return domainauth.Principal{
		Username:    username,
		Email:       c.Email,
		DisplayName: firstNonEmpty(c.Name, username),
	}
}

func (p *Provider) verifyClaims(ctx context.Context, tok *oauth2.Token, v *gooidc.IDTokenVerifier) (idClaims, error) {
	var claims idClaims
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return claims, errors.New("missing id_token in token response")
	}
	idTok, err := v.Verify(ctx, raw)
	if err != nil {
		return claims, err
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return claims, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	return claims, nil
}

func (p *Provider) claimsFromStored(ctx context.Context, ts ports.TokenSet) (idClaims, error) {
	var claims idClaims
	if ts.IDToken == "" {
		return claims, domainauth.ErrNoSession
	}
	idTok, err := p.staleVerifier.Verify(ctx, ts.IDToken)
	if err != nil {
		return claims, fmt.Errorf("verify stored id_token: %w", err)
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return claims, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	return claims, nil
}

// mapTokenError translates oauth2 failures into the domain taxonomy.
func mapTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode == "invalid_grant" {
			return domainauth.ErrInvalidCredentials
		}
		return fmt.Errorf("token endpoint: %s: %w", re.ErrorCode, domainauth.ErrInvalidCredentials)
	}
	return fmt.Errorf("token endpoint unreachable: %w", domainauth.ErrTransportFailure)
}

func tokenSetFromOAuth(tok *oauth2.Token) ports.TokenSet {
	idToken, _ := tok.Extra("id_token").(string)
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	return ports.TokenSet{
		AccessToken:  tok.AccessToken,
		IDToken:      idToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ ports.IdentityProvider = (*Provider)(nil)
