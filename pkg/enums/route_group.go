package enums

import (
	"fmt"
	"strings"
)

// RouteGroup names a partition of the navigable screen tree sharing one access policy.
type RouteGroup string

const (
	RouteGroupIndex          RouteGroup = "index"
	RouteGroupAuth           RouteGroup = "auth"
	RouteGroupSignup         RouteGroup = "signup"
	RouteGroupForgotPassword RouteGroup = "forgot-password"
	RouteGroupInvite         RouteGroup = "invite"
	RouteGroupEmployee       RouteGroup = "employee"
	RouteGroupCourse         RouteGroup = "course"
	RouteGroupOrgAdmin       RouteGroup = "org-admin"
	RouteGroupSuperAdmin     RouteGroup = "super-admin"
)

var validRouteGroups = []RouteGroup{
	RouteGroupIndex,
	RouteGroupAuth,
	RouteGroupSignup,
	RouteGroupForgotPassword,
	RouteGroupInvite,
	RouteGroupEmployee,
	RouteGroupCourse,
	RouteGroupOrgAdmin,
	RouteGroupSuperAdmin,
}

// String implements fmt.Stringer.
func (g RouteGroup) String() string {
	return string(g)
}

// IsValid reports whether the value is a known RouteGroup.
func (g RouteGroup) IsValid() bool {
	for _, candidate := range validRouteGroups {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsPublicEntry reports whether the group is one of the signed-out entry screens.
func (g RouteGroup) IsPublicEntry() bool {
	switch g {
	case RouteGroupAuth, RouteGroupSignup, RouteGroupForgotPassword, RouteGroupInvite:
		return true
	}
	return false
}

// RouteGroups returns every known group in declaration order.
func RouteGroups() []RouteGroup {
	out := make([]RouteGroup, len(validRouteGroups))
	copy(out, validRouteGroups)
	return out
}

// ParseRouteGroup converts a route segment into a RouteGroup. Segment syntax such as
// "(org-admin)" or "/super-admin/" is tolerated.
func ParseRouteGroup(value string) (RouteGroup, error) {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(value), "/()"))
	for _, candidate := range validRouteGroups {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid route group %q", value)
}
