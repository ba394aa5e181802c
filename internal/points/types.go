package points

import (
	"context"

	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/google/uuid"
)

// Identity scopes a points total. A zero id means the key is not known yet.
type Identity struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
}

// Complete reports whether both keys are present.
func (i Identity) Complete() bool {
	return i.OrgID != uuid.Nil && i.UserID != uuid.Nil
}

// AwardInput is the payload of the scoring function.
type AwardInput struct {
	OrgID    uuid.UUID         `json:"org_id" validate:"required"`
	UserID   uuid.UUID         `json:"user_id" validate:"required"`
	EventKey enums.PointsEvent `json:"event_key" validate:"required,points_event"`
	RefTable *string           `json:"ref_table,omitempty" validate:"omitempty,max=64"`
	RefID    *string           `json:"ref_id,omitempty" validate:"omitempty,max=128"`
}

// TotalView is the wire shape of a totals read.
type TotalView struct {
	OrgID       uuid.UUID `json:"org_id"`
	UserID      uuid.UUID `json:"user_id"`
	TotalPoints int64     `json:"total_points"`
	Found       bool      `json:"found"`
}

// TotalReader reads one row of the points totals view.
type TotalReader interface {
	FindTotal(ctx context.Context, orgID, userID uuid.UUID) (total int64, found bool, err error)
}

// Scorer invokes the remote scoring function and returns the awarded delta.
type Scorer interface {
	AwardPoints(ctx context.Context, in AwardInput) (int, error)
}
