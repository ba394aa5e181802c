package points

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
)

// Awarder is the fire-and-forget award helper. It never returns an error:
// every failure is logged and reported as zero points. It does not touch any
// Aggregator; callers refresh it themselves when they want the new total.
type Awarder struct {
	scorer  Scorer
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.PointsMetrics
}

// NewAwarder builds an award helper around scorer. logg and m may be nil.
func NewAwarder(scorer Scorer, timeout time.Duration, logg *logger.Logger, m *metrics.PointsMetrics) (*Awarder, error) {
	if scorer == nil {
		return nil, errors.New("scorer required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Awarder{scorer: scorer, timeout: timeout, logg: logg, metrics: m}, nil
}

// Award returns the points granted for in, or 0 on any failure.
func (a *Awarder) Award(ctx context.Context, in AwardInput) (awarded int) {
	ctx = a.logg.WithIdentity(ctx, in.OrgID.String(), in.UserID.String())
	ctx = a.logg.WithComponent(ctx, "points.awarder")
	ctx = a.logg.WithField(ctx, "event_key", string(in.EventKey))

	defer func() {
		if r := recover(); r != nil {
			a.logg.Error(ctx, "award points panicked", fmt.Errorf("%v", r))
			a.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeError, 0)
			awarded = 0
		}
	}()

	if !in.EventKey.IsValid() || !(Identity{OrgID: in.OrgID, UserID: in.UserID}).Complete() {
		a.logg.Warn(ctx, "award points skipped: incomplete input")
		a.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeSkipped, 0)
		return 0
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	points, err := a.scorer.AwardPoints(ctx, in)
	if err != nil {
		a.logg.Error(ctx, "award points failed", err)
		a.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeError, 0)
		return 0
	}
	if points < 0 {
		a.logg.Warn(a.logg.WithField(ctx, "points", points), "award points returned a negative delta")
		a.metrics.ObserveAward(string(in.EventKey), metrics.OutcomeError, 0)
		return 0
	}

	outcome := metrics.OutcomeOK
	if points == 0 {
		outcome = metrics.OutcomeZero
	}
	a.metrics.ObserveAward(string(in.EventKey), outcome, points)
	return points
}
