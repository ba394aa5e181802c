package profiles

import (
	"context"
	"errors"

	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/google/uuid"
)

type profileLister interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Profile, error)
}

type totalsLister interface {
	OrgTotals(ctx context.Context, orgID uuid.UUID) ([]models.PointsTotal, error)
}

// Service backs the org admin member listing.
type Service struct {
	profiles profileLister
	totals   totalsLister
}

// NewService wires the member listing.
func NewService(profiles profileLister, totals totalsLister) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile repository required")
	}
	if totals == nil {
		return nil, errors.New("points totals source required")
	}
	return &Service{profiles: profiles, totals: totals}, nil
}

// Members lists the organization's profiles with their points totals. Members
// without any points report 0.
func (s *Service) Members(ctx context.Context, orgID uuid.UUID) ([]MemberDTO, error) {
	list, err := s.profiles.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	totals, err := s.totals.OrgTotals(ctx, orgID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]int64, len(totals))
	for _, t := range totals {
		byUser[t.UserID] = t.TotalPoints
	}

	out := make([]MemberDTO, 0, len(list))
	for i := range list {
		out = append(out, MemberDTO{
			ProfileDTO:  *FromModel(&list[i]),
			TotalPoints: byUser[list[i].ID],
		})
	}
	return out, nil
}
