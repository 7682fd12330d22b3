package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "admin"}

	cases := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin member", []string{"admin"}, domainauth.RoleAdministrator},
		{"admin among others", []string{"staff", "admin", "beta"}, domainauth.RoleAdministrator},
		{"no admin", []string{"staff", "beta"}, domainauth.RoleRegularUser},
		{"nil groups", nil, domainauth.RoleRegularUser},
		{"empty groups", []string{}, domainauth.RoleRegularUser},
		// Exact membership only: no prefix or substring matching.
		{"near miss", []string{"admins", "administrator", "ADMIN"}, domainauth.RoleRegularUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Map(tc.groups))
		})
	}
}

func TestStaticRoleMapper_CustomGroupName(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "taskbuddy-admins"}
	assert.Equal(t, domainauth.RoleAdministrator, m.Map([]string{"taskbuddy-admins"}))
	assert.Equal(t, domainauth.RoleRegularUser, m.Map([]string{"admin"}))
}

func TestStaticRoleMapper_UnconfiguredNeverGrantsAdmin(t *testing.T) {
	m := StaticRoleMapper{}
	assert.Equal(t, domainauth.RoleRegularUser, m.Map([]string{"admin"}))
}
