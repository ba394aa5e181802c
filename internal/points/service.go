package points

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/db"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
	"github.com/google/uuid"
)

// award_points raises invalid_parameter_value for event keys without a rule.
const sqlStateUnknownEvent = "22023"

type repository interface {
	FindTotal(ctx context.Context, orgID, userID uuid.UUID) (int64, bool, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.PointsTotal, error)
	AwardPoints(ctx context.Context, in AwardInput) (int, error)
}

// ServiceParams groups dependencies for the points service.
type ServiceParams struct {
	Repo    repository
	Metrics *metrics.PointsMetrics
	Logger  *logger.Logger
}

// Service is the server side of the points feature: it backs the totals read
// and the scoring RPC exposed over HTTP.
type Service struct {
	repo    repository
	metrics *metrics.PointsMetrics
	logg    *logger.Logger
}

// NewService builds the points service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("points repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: params.Repo, metrics: params.Metrics, logg: logg}, nil
}

// Total reads one row of the totals view. A missing row is a zero total.
func (s *Service) Total(ctx context.Context, orgID, userID uuid.UUID) (TotalView, error) {
	view := TotalView{OrgID: orgID, UserID: userID}
	started := time.Now()
	total, found, err := s.repo.FindTotal(ctx, orgID, userID)
	if err != nil {
		s.metrics.ObserveFetch(metrics.OutcomeError, time.Since(started))
		return view, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read points total")
	}
	outcome := metrics.OutcomeOK
	if !found {
		outcome = metrics.OutcomeNotFound
	}
	s.metrics.ObserveFetch(outcome, time.Since(started))
	view.TotalPoints = total
	view.Found = found
	return view, nil
}

// OrgTotals lists member totals for an organization.
func (s *Service) OrgTotals(ctx context.Context, orgID uuid.UUID) ([]models.PointsTotal, error) {
	rows, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list points totals")
	}
	return rows, nil
}

// Award runs the scoring function. Duplicate events return 0 points without
// error; unknown events and dangling references are validation errors.
func (s *Service) Award(ctx context.Context, in AwardInput) (int, error) {
	if !in.EventKey.IsValid() {
		s.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeSkipped, 0)
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown event key").
			WithDetails(map[string]string{"event_key": string(in.EventKey)})
	}
	if in.OrgID == uuid.Nil || in.UserID == uuid.Nil {
		s.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeSkipped, 0)
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "org_id and user_id are required")
	}

	awarded, err := s.repo.AwardPoints(ctx, in)
	if err != nil {
		s.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeError, 0)
		return 0, mapAwardError(err)
	}

	outcome := metrics.OutcomeOK
	if awarded == 0 {
		outcome = metrics.OutcomeZero
	}
	s.metrics.ObserveAward(string(in.EventKey), outcome, awarded)

	ctx = s.logg.WithFields(ctx, map[string]any{"event_key": string(in.EventKey), "points": awarded})
	s.logg.Info(ctx, "points awarded")
	return awarded, nil
}

func mapAwardError(err error) error {
	switch {
	case db.SQLState(err) == sqlStateUnknownEvent:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown event key")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "organization or user does not exist")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "award points")
}
