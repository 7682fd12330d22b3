package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLanding(t *testing.T) {
	assert.Equal(t, "/", DefaultLanding(RoleAdministrator))
	assert.Equal(t, "/tasks", DefaultLanding(RoleRegularUser))
	assert.Equal(t, "/tasks", DefaultLanding(Role("")))
}

func TestState_Authenticated(t *testing.T) {
	assert.False(t, Initializing().Authenticated())
	assert.False(t, Unauthenticated().Authenticated())

	// A phase claim without a principal does not count.
	assert.False(t, State{Phase: PhaseAuthenticated}.Authenticated())
	assert.False(t, State{Phase: PhaseAuthenticated, Principal: &Principal{Username: "x"}}.Authenticated())

	s := AuthenticatedState(Principal{Username: "ada"}, RoleAdministrator)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "ada", s.Principal.Username)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{}.Expired(now))
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
