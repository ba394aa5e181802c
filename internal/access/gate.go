package access

import "github.com/angelmondragon/finpilot-backend/pkg/enums"

const (
	// HomeRoute is the default protected screen for a signed-in user.
	HomeRoute = "/home"
	// LandingRoute is the public landing screen.
	LandingRoute = "/"
)

// Kind enumerates gate outcomes.
type Kind string

const (
	KindAllow    Kind = "allow"
	KindRedirect Kind = "redirect"
	KindSuspend  Kind = "suspend"
)

// Verdict is the gate decision for one evaluation. Target is set only for redirects.
type Verdict struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
}

func Allow() Verdict { return Verdict{Kind: KindAllow} }

func Suspend() Verdict { return Verdict{Kind: KindSuspend} }

func Redirect(target string) Verdict { return Verdict{Kind: KindRedirect, Target: target} }

// Inputs is everything the gate looks at. Role is nil when no profile is resolved.
type Inputs struct {
	Loading      bool
	Role         *enums.Role
	HasSession   bool
	CanAccessApp bool
	Group        enums.RouteGroup
}

// Evaluate maps inputs to a verdict. It is total: every combination yields
// Allow, Redirect or Suspend, and Suspend only while loading.
func Evaluate(in Inputs) Verdict {
	if in.Loading {
		return Suspend()
	}

	switch {
	case in.Group == enums.RouteGroupIndex:
		return Allow()
	case in.Group.IsPublicEntry():
		if !in.HasSession || !in.CanAccessApp {
			return Allow()
		}
		return Redirect(HomeRoute)
	case in.Group == enums.RouteGroupOrgAdmin:
		if roleOf(in).AtLeast(enums.RoleOrgAdmin) {
			return Allow()
		}
		return Redirect(HomeRoute)
	case in.Group == enums.RouteGroupSuperAdmin:
		if roleOf(in) == enums.RoleSuperAdmin {
			return Allow()
		}
		return Redirect(HomeRoute)
	case in.Group == enums.RouteGroupEmployee, in.Group == enums.RouteGroupCourse:
		if in.HasSession {
			return Allow()
		}
		return Redirect(LandingRoute)
	}

	// Unknown group.
	if in.HasSession {
		return Redirect(HomeRoute)
	}
	return Redirect(LandingRoute)
}

func roleOf(in Inputs) enums.Role {
	if in.Role == nil {
		return ""
	}
	return *in.Role
}
