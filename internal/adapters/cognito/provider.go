package cognito

// Package cognito adapts an AWS Cognito user pool to the IdentityProvider
// port. Sign-in uses the USER_PASSWORD_AUTH flow; expired credentials are
// renewed silently through REFRESH_TOKEN_AUTH. ID tokens are verified
// against the pool's JWKS before any claim is trusted.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// Provider implements ports.IdentityProvider against a Cognito user pool.
type Provider struct {
	client   *cip.Client
	clientID string
	issuer   string
	tokens   ports.TokenStore
	jwks     keyfunc.Keyfunc
	logger   *slog.Logger
}

// ProviderConfig holds configuration for the Cognito provider.
type ProviderConfig struct {
	UserPoolID string
	ClientID   string
	Region     string
	Tokens     ports.TokenStore
	Logger     *slog.Logger

	// JWKSRefreshInterval controls background key refresh; default 1h.
	JWKSRefreshInterval time.Duration
}

// NewProvider creates a Cognito provider. The pool's JWKS endpoint is
// polled in the background; startup does not require it to be reachable.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.UserPoolID == "" {
		return nil, errors.New("user pool ID is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("region is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	refresh := cfg.JWKSRefreshInterval
	if refresh <= 0 {
		refresh = time.Hour
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.UserPoolID)
	storage, err := jwkset.NewStorageFromHTTP(issuer+"/.well-known/jwks.json", jwkset.HTTPClientStorageOptions{
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refresh,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Warn("jwks refresh failed", "error", err, "issuer", issuer)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create jwks storage: %w", err)
	}
	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("create keyfunc: %w", err)
	}

	return &Provider{
		client:   cip.NewFromConfig(awsCfg),
		clientID: cfg.ClientID,
		issuer:   issuer,
		tokens:   cfg.Tokens,
		jwks:     k,
		logger:   logger,
	}, nil
}

func (p *Provider) SignIn(ctx context.Context, username, password string) (domainauth.Principal, error) {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return domainauth.Principal{}, errors.New("cognito: no session handle in context")
	}

	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return domainauth.Principal{}, mapCognitoError(err)
	}
	res := out.AuthenticationResult
	if res == nil {
		// Pool demands a challenge (MFA, forced password change) this
		// surface does not carry.
		return domainauth.Principal{}, fmt.Errorf("auth challenge %q not supported: %w",
			out.ChallengeName, domainauth.ErrUserNotConfirmed)
	}

	claims, err := p.verifyIDToken(ctx, aws.ToString(res.IdToken), false)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("verify id token: %w", err)
	}

	ts := ports.TokenSet{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresAt:    time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}
	if saveErr := p.tokens.Save(ctx, handle, ts); saveErr != nil {
		return domainauth.Principal{}, fmt.Errorf("save token set: %w", saveErr)
	}

	return claims.principal(), nil
}

func (p *Provider) CurrentPrincipal(ctx context.Context) (domainauth.Principal, error) {
	ts, err := p.currentTokens(ctx)
	if err != nil {
		return domainauth.Principal{}, err
	}
	claims, err := p.verifyIDToken(ctx, ts.IDToken, true)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("verify stored id token: %w", err)
	}
	return claims.principal(), nil
}

func (p *Provider) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	ts, err := p.currentTokens(ctx)
	if err != nil {
		return domainauth.Session{}, err
	}
	claims, err := p.verifyIDToken(ctx, ts.IDToken, true)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("verify stored id token: %w", err)
	}
	return domainauth.Session{
		// Downstream API authorizes against the ID token, matching the
		// JWT authorizer on the backend.
		AccessCredential: ts.IDToken,
		GroupClaims:      claims.Groups,
		ExpiresAt:        ts.ExpiresAt,
	}, nil
}

// SignOut drops local token material and revokes the session pool-side on
// a best-effort basis. It never fails: revocation errors are logged and
// swallowed once local state is gone.
func (p *Provider) SignOut(ctx context.Context) error {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return nil
	}

	ts, err := p.tokens.Get(ctx, handle)
	if err == nil && ts.AccessToken != "" {
		if _, revokeErr := p.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
			AccessToken: aws.String(ts.AccessToken),
		}); revokeErr != nil {
			p.logger.WarnContext(ctx, "cognito global sign-out failed", "error", revokeErr)
		}
	}

	if deleteErr := p.tokens.Delete(ctx, handle); deleteErr != nil {
		p.logger.WarnContext(ctx, "token set delete failed", "error", deleteErr)
	}
	return nil
}

// currentTokens loads the handle's token set, renewing expired access
// credentials through the refresh grant.
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

	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": ts.RefreshToken,
		},
	})
	if err != nil {
		mapped := mapCognitoError(err)
		if errors.Is(mapped, domainauth.ErrTransportFailure) {
			return ports.TokenSet{}, fmt.Errorf("refresh session: %w", mapped)
		}
		// Refresh grant revoked or expired: treat as signed out.
		_ = p.tokens.Delete(ctx, handle)
		return ports.TokenSet{}, domainauth.ErrNoSession
	}
	res := out.AuthenticationResult
	if res == nil {
		_ = p.tokens.Delete(ctx, handle)
		return ports.TokenSet{}, domainauth.ErrNoSession
	}

	fresh := ports.TokenSet{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: ts.RefreshToken, // refresh grant does not rotate it
		ExpiresAt:    time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}
	if saveErr := p.tokens.Save(ctx, handle, fresh); saveErr != nil {
		return ports.TokenSet{}, fmt.Errorf("save refreshed token set: %w", saveErr)
	}
	return fresh, nil
}

// idTokenClaims is the subset of Cognito ID token claims we consume.
// cognito:groups is absent for users in no groups; keep that shape rather
// than erroring.
type idTokenClaims struct {
	jwt.RegisteredClaims
	CognitoUsername string   `json:"cognito:username"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Groups          []string `json:"cognito:groups"`
}

func (c idTokenClaims) principal() domainauth.Principal {
	username := c.CognitoUsername
	if username == "" {
		username = c.Subject
	}
	display := c.Name
	if display == "" {
		display = username
	}
	return domainauth.Principal{
		Username:    username,
		Email:       c.Email,
		DisplayName: display,
	}
}

// verifyIDToken checks signature and issuer against the pool JWKS.
// allowExpired re-reads claims from stored material whose signature was
// verified at issuance; expiry there is governed by the token set.
func (p *Provider) verifyIDToken(ctx context.Context, raw string, allowExpired bool) (idTokenClaims, error) {
	var claims idTokenClaims
	if raw == "" {
		return claims, domainauth.ErrNoSession
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(p.issuer),
	}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	tok, err := jwt.ParseWithClaims(raw, &claims, p.jwks.KeyfuncCtx(ctx), opts...)
	if err != nil {
		return claims, err
	}
	if !tok.Valid {
		return claims, errors.New("invalid id token")
	}
	return claims, nil
}

// mapCognitoError translates pool failures into the domain taxonomy.
func mapCognitoError(err error) error {
	var (
		notAuthorized *types.NotAuthorizedException
		notConfirmed  *types.UserNotConfirmedException
		notFound      *types.UserNotFoundException
	)
	switch {
	case errors.As(err, &notAuthorized):
		return domainauth.ErrInvalidCredentials
	case errors.As(err, &notConfirmed):
		return domainauth.ErrUserNotConfirmed
	case errors.As(err, &notFound):
		return domainauth.ErrUserNotFound
	}

	// Any other pool rejection (throttling, internal errors, disabled
	// clients) says nothing about the credentials; surface it as a
	// transport failure so it does not read as a wrong password.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), domainauth.ErrTransportFailure)
	}
	return fmt.Errorf("cognito unreachable: %w", domainauth.ErrTransportFailure)
}

var _ ports.IdentityProvider = (*Provider)(nil)
