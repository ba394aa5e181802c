package viewer

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/finpilot-backend/internal/profiles"
	"github.com/angelmondragon/finpilot-backend/internal/subscriptions"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type profileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, bool, error)
}

type subscriptionReader interface {
	FindByOrgID(ctx context.Context, orgID uuid.UUID) (*models.OrgSubscription, error)
}

// Resolver builds the auth state of a verified session.
type Resolver struct {
	profiles      profileReader
	subscriptions subscriptionReader
	now           func() time.Time
	logg          *logger.Logger
}

// NewResolver wires the resolver. now defaults to time.Now.
func NewResolver(profiles profileReader, subs subscriptionReader, now func() time.Time, logg *logger.Logger) (*Resolver, error) {
	if profiles == nil {
		return nil, errors.New("profile reader required")
	}
	if subs == nil {
		return nil, errors.New("subscription reader required")
	}
	if now == nil {
		now = time.Now
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Resolver{profiles: profiles, subscriptions: subs, now: now, logg: logg}, nil
}

// Resolve returns the state for sess. A nil session is the signed-out state.
// The clock is read once and shared by every check in the evaluation.
func (r *Resolver) Resolve(ctx context.Context, sess *Session) (State, error) {
	now := r.now()
	state := State{Session: sess, EvaluatedAt: now}
	if sess == nil {
		return state, nil
	}

	profile, found, err := r.profiles.FindByID(ctx, sess.UserID)
	if err != nil {
		return state, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if !found {
		r.logg.Warn(r.logg.WithUserID(ctx, sess.UserID.String()), "session without profile")
		return state, nil
	}
	state.Profile = profiles.FromModel(profile)

	canAccess, err := r.canAccessApp(ctx, profile, now)
	if err != nil {
		return state, err
	}
	state.CanAccessApp = canAccess
	return state, nil
}

// canAccessApp: super admins always pass; everyone else needs a valid
// subscription on their organization.
func (r *Resolver) canAccessApp(ctx context.Context, profile *models.Profile, now time.Time) (bool, error) {
	if profile.Role == enums.RoleSuperAdmin {
		return true, nil
	}
	if profile.OrgID == nil {
		return false, nil
	}
	sub, err := r.subscriptions.FindByOrgID(ctx, *profile.OrgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return subscriptions.IsValidSubscription(sub, now), nil
}
