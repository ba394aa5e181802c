package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/db"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository interface {
	FindByOrgID(ctx context.Context, orgID uuid.UUID) (*models.OrgSubscription, error)
	Upsert(ctx context.Context, sub *models.OrgSubscription) error
	ListOrganizations(ctx context.Context) ([]OrganizationRow, error)
}

// StatusChange is a super-admin write of an organization's billing state.
type StatusChange struct {
	Status    string     `json:"status" validate:"required"`
	PeriodEnd *time.Time `json:"period_end"`
}

// Summary is the evaluated subscription state of one organization.
type Summary struct {
	OrgID     uuid.UUID                `json:"org_id"`
	Name      string                   `json:"name,omitempty"`
	Status    enums.SubscriptionStatus `json:"status,omitempty"`
	PeriodEnd *time.Time               `json:"period_end,omitempty"`
	Valid     bool                     `json:"valid"`
}

// Service evaluates stored subscriptions against a caller-supplied clock.
type Service struct {
	repo repository
}

// NewService builds the subscription service.
func NewService(repo repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("subscription repository required")
	}
	return &Service{repo: repo}, nil
}

// ForOrg evaluates one organization. A missing subscription row yields an
// invalid summary, not an error.
func (s *Service) ForOrg(ctx context.Context, orgID uuid.UUID, now time.Time) (Summary, error) {
	summary := Summary{OrgID: orgID}
	sub, err := s.repo.FindByOrgID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, nil
		}
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	summary.Status = sub.Status
	summary.PeriodEnd = sub.PeriodEnd
	summary.Valid = IsValidSubscription(sub, now)
	return summary, nil
}

// Overview evaluates every organization with the same now.
func (s *Service) Overview(ctx context.Context, now time.Time) ([]Summary, error) {
	rows, err := s.repo.ListOrganizations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list organizations")
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		summary := Summary{OrgID: row.OrgID, Name: row.Name, PeriodEnd: row.PeriodEnd}
		if row.Status != nil {
			summary.Status = enums.SubscriptionStatus(*row.Status)
		}
		summary.Valid = IsValid(summary.Status, summary.PeriodEnd, now)
		out = append(out, summary)
	}
	return out, nil
}

// SetStatus stores a new billing state and returns it evaluated at now. Trials
// need a period end; other statuses drop it.
func (s *Service) SetStatus(ctx context.Context, orgID uuid.UUID, change StatusChange, now time.Time) (Summary, error) {
	if orgID == uuid.Nil {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "org_id is required")
	}
	status, err := enums.ParseSubscriptionStatus(change.Status)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown subscription status").
			WithDetails(map[string]string{"status": change.Status})
	}
	periodEnd := change.PeriodEnd
	if !status.RequiresPeriodEnd() {
		periodEnd = nil
	} else if periodEnd == nil {
		return Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "period_end is required for trials").
			WithDetails(map[string]string{"period_end": "is required"})
	}

	sub := &models.OrgSubscription{OrgID: orgID, Status: status, PeriodEnd: periodEnd}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		if db.IsForeignKeyViolation(err) {
			return Summary{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "organization not found")
		}
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store subscription")
	}
	return Summary{
		OrgID:     orgID,
		Status:    status,
		PeriodEnd: periodEnd,
		Valid:     IsValidSubscription(sub, now),
	}, nil
}
