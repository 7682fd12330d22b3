package authroles

import (
	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
)

// StaticRoleMapper classifies by exact group-claim membership. Only the
// configured admin group grants administrator; every other shape of claim
// set (nil, empty, unrelated groups) yields a regular user. Matching is
// never done on email addresses or substrings.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup == "" {
		return domainauth.RoleRegularUser
	}
	for _, g := range groups {
		if g == m.AdminGroup {
			return domainauth.RoleAdministrator
		}
	}
	return domainauth.RoleRegularUser
}
