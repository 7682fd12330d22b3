package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the identity provider mode for the application.
type AuthMode string

const (
	// AuthModeCognito authenticates against an AWS Cognito user pool.
	AuthModeCognito AuthMode = "cognito"
	// AuthModeOIDC authenticates against a generic OIDC provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "cognito", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: cognito, oidc, mock)", v)
	}
}

// CognitoConfig identifies the AWS Cognito user pool.
type CognitoConfig struct {
	UserPoolID string `env:"USER_POOL_ID"`
	ClientID   string `env:"CLIENT_ID"`
	Region     string `env:"REGION"`
}

// IssuerURL is the pool's token issuer, also the base of its JWKS endpoint.
func (c CognitoConfig) IssuerURL() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Region, c.UserPoolID)
}

// JWKSURL is where the pool publishes its signing keys.
func (c CognitoConfig) JWKSURL() string {
	return c.IssuerURL() + "/.well-known/jwks.json"
}

// OIDCConfig contains generic OIDC provider configuration
// (used when Mode=oidc).
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Username string   `env:"USERNAME" envDefault:"dev-user"`
	Email    string   `env:"EMAIL"    envDefault:"dev@example.com"`
	Password string   `env:"PASSWORD" envDefault:"dev-password"`
	Groups   []string `env:"GROUPS"   envDefault:"admin"           envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"cognito"`

	// Cognito configuration (used when Mode=cognito).
	Cognito CognitoConfig `envPrefix:"COGNITO_"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the group claim granting administrator access.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admin"`
}
