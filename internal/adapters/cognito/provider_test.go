package cognito

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
)

func TestMapCognitoError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"not authorized", &types.NotAuthorizedException{}, domainauth.ErrInvalidCredentials},
		{"not confirmed", &types.UserNotConfirmedException{}, domainauth.ErrUserNotConfirmed},
		{"not found", &types.UserNotFoundException{}, domainauth.ErrUserNotFound},
		{"wrapped not authorized", fmt.Errorf("op: %w", &types.NotAuthorizedException{}), domainauth.ErrInvalidCredentials},
		// Pool rejections outside the credential taxonomy must not read
		// as a wrong password.
		{"too many requests", &types.TooManyRequestsException{}, domainauth.ErrTransportFailure},
		{"internal pool error", &types.InternalErrorException{}, domainauth.ErrTransportFailure},
		// Anything that is not an API error means we never reached the pool.
		{"network", errors.New("dial tcp: connection refused"), domainauth.ErrTransportFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapCognitoError(tc.err), tc.want)
		})
	}
}

func TestIDTokenClaims_Principal(t *testing.T) {
	c := idTokenClaims{
		CognitoUsername: "ada",
		Email:           "ada@example.com",
		Name:            "Ada Lovelace",
	}
	p := c.principal()
	assert.Equal(t, "ada", p.Username)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
}

func TestIDTokenClaims_PrincipalFallbacks(t *testing.T) {
	c := idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-123"},
		Email:            "x@example.com",
	}
	p := c.principal()
	assert.Equal(t, "sub-123", p.Username)
	assert.Equal(t, "sub-123", p.DisplayName)
}

func TestNewProvider_Validation(t *testing.T) {
	ctx := t.Context()
	_, err := NewProvider(ctx, ProviderConfig{ClientID: "c", Region: "us-east-1"})
	assert.Error(t, err)
	_, err = NewProvider(ctx, ProviderConfig{UserPoolID: "p", Region: "us-east-1"})
	assert.Error(t, err)
	_, err = NewProvider(ctx, ProviderConfig{UserPoolID: "p", ClientID: "c"})
	assert.Error(t, err)
	_, err = NewProvider(ctx, ProviderConfig{UserPoolID: "p", ClientID: "c", Region: "us-east-1"})
	assert.Error(t, err) // token store missing
}
