package enums

import (
	"fmt"
	"strings"
)

// Role is the platform-level authorization role carried on a profile.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleOrgAdmin   Role = "org_admin"
	RoleSuperAdmin Role = "super_admin"
)

var validRoles = []Role{
	RoleEmployee,
	RoleOrgAdmin,
	RoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return r.Rank() > 0
}

// Rank orders roles by privilege; unknown roles rank 0 and satisfy nothing.
func (r Role) Rank() int {
	switch r {
	case RoleEmployee:
		return 1
	case RoleOrgAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && min.IsValid() && r.Rank() >= min.Rank()
}

// ParseRole converts raw input into a Role. Upper-case spellings are accepted.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
