package points

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubScorer struct {
	points int
	err    error
	panic  bool
	calls  int
	last   AwardInput
}

func (s *stubScorer) AwardPoints(ctx context.Context, in AwardInput) (int, error) {
	s.calls++
	s.last = in
	if s.panic {
		panic("scorer exploded")
	}
	return s.points, s.err
}

func validAward() AwardInput {
	ref := "day-3"
	return AwardInput{
		OrgID:    uuid.New(),
		UserID:   uuid.New(),
		EventKey: enums.PointsEventDayCompleted,
		RefTable: nil,
		RefID:    &ref,
	}
}

func TestNewAwarderRequiresScorer(t *testing.T) {
	if _, err := NewAwarder(nil, 0, nil, nil); err == nil {
		t.Fatal("expected error without scorer")
	}
}

func TestAwarderReturnsDelta(t *testing.T) {
	scorer := &stubScorer{points: 10}
	awarder, _ := NewAwarder(scorer, time.Second, nil, nil)

	in := validAward()
	if got := awarder.Award(context.Background(), in); got != 10 {
		t.Fatalf("expected 10 points, got %d", got)
	}
	if scorer.last.RefID == nil || *scorer.last.RefID != "day-3" {
		t.Fatalf("input not forwarded: %+v", scorer.last)
	}
}

func TestAwarderFailuresReturnZero(t *testing.T) {
	cases := []struct {
		name   string
		scorer *stubScorer
	}{
		{"transport error", &stubScorer{err: errors.New("connection refused")}},
		{"backend rejection", &stubScorer{err: errors.New("duplicate award for ref")}},
		{"negative delta", &stubScorer{points: -5}},
		{"panic", &stubScorer{panic: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			awarder, _ := NewAwarder(tc.scorer, 0, nil, nil)
			if got := awarder.Award(context.Background(), validAward()); got != 0 {
				t.Fatalf("expected 0, got %d", got)
			}
		})
	}
}

func TestAwarderSkipsIncompleteInput(t *testing.T) {
	scorer := &stubScorer{points: 10}
	awarder, _ := NewAwarder(scorer, 0, nil, nil)

	missingOrg := validAward()
	missingOrg.OrgID = uuid.Nil
	unknownEvent := validAward()
	unknownEvent.EventKey = "streak_bonus"

	for _, in := range []AwardInput{missingOrg, unknownEvent} {
		if got := awarder.Award(context.Background(), in); got != 0 {
			t.Fatalf("expected 0 for %+v, got %d", in, got)
		}
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer should not be called, got %d calls", scorer.calls)
	}
}

func TestAwarderDoesNotTouchAggregator(t *testing.T) {
	reader := fixedReader(50, true, nil)
	agg, _ := NewAggregator(reader)
	id := newIdentity()
	agg.SetIdentity(context.Background(), id)

	awarder, _ := NewAwarder(&stubScorer{err: errors.New("rejected")}, 0, nil, nil)
	in := validAward()
	in.OrgID, in.UserID = id.OrgID, id.UserID
	if got := awarder.Award(context.Background(), in); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}

	if reader.callCount() != 1 {
		t.Fatalf("award must not trigger a read, got %d reads", reader.callCount())
	}
	if s := agg.Refresh(context.Background()); s.TotalPoints != 50 {
		t.Fatalf("total should be unchanged after failed award, got %d", s.TotalPoints)
	}
}

func TestAwarderRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPointsMetrics(reg)

	ok, _ := NewAwarder(&stubScorer{points: 15}, 0, nil, m)
	dup, _ := NewAwarder(&stubScorer{points: 0}, 0, nil, m)
	failed, _ := NewAwarder(&stubScorer{err: errors.New("boom")}, 0, nil, m)
	ok.Award(context.Background(), validAward())
	dup.Award(context.Background(), validAward())
	failed.Award(context.Background(), validAward())

	got, err := testutil.GatherAndCount(reg, "points_awards_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected ok, zero and error series, got %d", got)
	}
}
