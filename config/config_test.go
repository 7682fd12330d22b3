package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "cognito")
	t.Setenv("ADMIN_GROUP", "taskbuddy-admins")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_aB12cD34e")
	t.Setenv("COGNITO_CLIENT_ID", "7h3cl13n71d")
	t.Setenv("COGNITO_REGION", "us-east-1")
	t.Setenv("DEV_AUTH_USERNAME", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_GROUPS", "admin;devs")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeCognito,
		Cognito: CognitoConfig{
			UserPoolID: "us-east-1_aB12cD34e",
			ClientID:   "7h3cl13n71d",
			Region:     "us-east-1",
		},
		OIDC: OIDCConfig{
			Scope: "openid profile email groups",
		},
		DevAuth: DevAuthConfig{
			Username: "dev-user",
			Email:    "dev@example.com",
			Password: "dev-password",
			Groups:   []string{"admin", "devs"},
		},
		AdminGroup: "taskbuddy-admins",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_AdminGroupDefault(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Auth.AdminGroup != "admin" {
		t.Fatalf("expected default admin group %q, got %q", "admin", cfg.Auth.AdminGroup)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{"cognito", AuthModeCognito, false},
		{"OIDC", AuthModeOIDC, false},
		{"Mock", AuthModeMock, false},
		{"oauth", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		var m AuthMode
		err := m.UnmarshalText([]byte(tt.input))
		if tt.expectError {
			if err == nil {
				t.Errorf("input %q: expected error, got mode %q", tt.input, m)
			}
			continue
		}
		if err != nil {
			t.Errorf("input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if m != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, m)
		}
	}
}

func TestCognitoConfig_URLs(t *testing.T) {
	c := CognitoConfig{UserPoolID: "us-east-1_aB12cD34e", Region: "us-east-1"}
	wantIssuer := "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_aB12cD34e"
	if got := c.IssuerURL(); got != wantIssuer {
		t.Errorf("issuer: expected %q, got %q", wantIssuer, got)
	}
	if got := c.JWKSURL(); got != wantIssuer+"/.well-known/jwks.json" {
		t.Errorf("unexpected jwks url: %q", got)
	}
}

func TestAPIConfig_Sanitize(t *testing.T) {
	a := APIConfig{BaseEndpoint: "https://api.example.com/", Timeout: -1}
	a.Sanitize()
	if a.BaseEndpoint != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", a.BaseEndpoint)
	}
	if a.Timeout != 30*time.Second {
		t.Errorf("expected timeout guardrail, got %v", a.Timeout)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatal("expected NODE_ENV=development to enable dev mode")
	}
}
