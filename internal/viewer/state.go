package viewer

import (
	"time"

	"github.com/angelmondragon/finpilot-backend/internal/access"
	"github.com/angelmondragon/finpilot-backend/internal/points"
	"github.com/angelmondragon/finpilot-backend/internal/profiles"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/google/uuid"
)

// Session is the verified access token behind a request.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// State is the auth state consumed by the gate and the points badge.
// Profile is nil when it is unknown: still loading, signed out, or never created.
type State struct {
	Session      *Session             `json:"session"`
	Profile      *profiles.ProfileDTO `json:"profile"`
	Loading      bool                 `json:"loading"`
	CanAccessApp bool                 `json:"can_access_app"`
	EvaluatedAt  time.Time            `json:"evaluated_at"`
}

// Loading is the state shown before the provider has resolved anything.
func Loading() State {
	return State{Loading: true}
}

// Role returns the profile role, or nil when no profile is known.
func (s State) Role() *enums.Role {
	if s.Profile == nil {
		return nil
	}
	role := s.Profile.Role
	return &role
}

// GateInputs projects the state onto the gate for group.
func (s State) GateInputs(group enums.RouteGroup) access.Inputs {
	return access.Inputs{
		Loading:      s.Loading,
		Role:         s.Role(),
		HasSession:   s.Session != nil,
		CanAccessApp: s.CanAccessApp,
		Group:        group,
	}
}

// PointsIdentity returns the keys for the points aggregator. Missing keys stay zero.
func (s State) PointsIdentity() points.Identity {
	var id points.Identity
	if s.Profile == nil {
		return id
	}
	id.UserID = s.Profile.ID
	if s.Profile.OrgID != nil {
		id.OrgID = *s.Profile.OrgID
	}
	return id
}
