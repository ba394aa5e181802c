package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type stubRepo struct {
	sub       *models.OrgSubscription
	findErr   error
	rows      []OrganizationRow
	listErr   error
	upsertErr error
	upserted  *[]models.OrgSubscription
}

func (s stubRepo) Upsert(_ context.Context, sub *models.OrgSubscription) error {
	if s.upserted != nil {
		*s.upserted = append(*s.upserted, *sub)
	}
	return s.upsertErr
}

func (s stubRepo) FindByOrgID(context.Context, uuid.UUID) (*models.OrgSubscription, error) {
	return s.sub, s.findErr
}

func (s stubRepo) ListOrganizations(context.Context) ([]OrganizationRow, error) {
	return s.rows, s.listErr
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestServiceForOrg(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := now.Add(24 * time.Hour)
	orgID := uuid.New()

	svc, _ := NewService(stubRepo{sub: &models.OrgSubscription{OrgID: orgID, Status: enums.SubscriptionStatusTrial, PeriodEnd: &end}})
	summary, err := svc.ForOrg(context.Background(), orgID, now)
	if err != nil {
		t.Fatalf("for org: %v", err)
	}
	if !summary.Valid || summary.Status != enums.SubscriptionStatusTrial {
		t.Fatalf("unexpected summary %+v", summary)
	}

	summary, err = svc.ForOrg(context.Background(), orgID, end.Add(time.Second))
	if err != nil || summary.Valid {
		t.Fatalf("expected lapsed trial, got %+v err=%v", summary, err)
	}
}

func TestServiceForOrgMissingRow(t *testing.T) {
	svc, _ := NewService(stubRepo{findErr: gorm.ErrRecordNotFound})
	summary, err := svc.ForOrg(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("missing row should not error: %v", err)
	}
	if summary.Valid {
		t.Fatal("missing subscription must be invalid")
	}
}

func TestServiceForOrgReadFailure(t *testing.T) {
	svc, _ := NewService(stubRepo{findErr: errors.New("conn reset")})
	_, err := svc.ForOrg(context.Background(), uuid.New(), time.Now())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestServiceOverview(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	active := "active"
	trial := "trial"

	svc, _ := NewService(stubRepo{rows: []OrganizationRow{
		{OrgID: uuid.New(), Name: "Acme", Status: &active},
		{OrgID: uuid.New(), Name: "Beta", Status: &trial, PeriodEnd: &past},
		{OrgID: uuid.New(), Name: "Gamma"},
	}})

	out, err := svc.Overview(context.Background(), now)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	want := []bool{true, false, false}
	for i, summary := range out {
		if summary.Valid != want[i] {
			t.Fatalf("row %d (%s): valid=%v want %v", i, summary.Name, summary.Valid, want[i])
		}
	}
	if out[2].Status != "" {
		t.Fatalf("org without subscription should have empty status, got %q", out[2].Status)
	}
}

func TestServiceOverviewFailure(t *testing.T) {
	svc, _ := NewService(stubRepo{listErr: errors.New("boom")})
	if _, err := svc.Overview(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestServiceSetStatusTrialNeedsPeriodEnd(t *testing.T) {
	var stored []models.OrgSubscription
	svc, _ := NewService(stubRepo{upserted: &stored})
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.SetStatus(context.Background(), uuid.New(), StatusChange{Status: "trial"}, now)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("nothing should be stored on validation failure, got %+v", stored)
	}

	end := now.Add(72 * time.Hour)
	summary, err := svc.SetStatus(context.Background(), uuid.New(), StatusChange{Status: " Trial ", PeriodEnd: &end}, now)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !summary.Valid || summary.Status != enums.SubscriptionStatusTrial {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(stored) != 1 || stored[0].PeriodEnd == nil {
		t.Fatalf("expected trial stored with period end, got %+v", stored)
	}
}

func TestServiceSetStatusDropsPeriodEndForActive(t *testing.T) {
	var stored []models.OrgSubscription
	svc, _ := NewService(stubRepo{upserted: &stored})
	end := time.Now().Add(-time.Hour)

	summary, err := svc.SetStatus(context.Background(), uuid.New(), StatusChange{Status: "active", PeriodEnd: &end}, time.Now())
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !summary.Valid || summary.PeriodEnd != nil || stored[0].PeriodEnd != nil {
		t.Fatalf("active should ignore period end, summary=%+v stored=%+v", summary, stored)
	}
}

func TestServiceSetStatusErrors(t *testing.T) {
	svc, _ := NewService(stubRepo{})
	if _, err := svc.SetStatus(context.Background(), uuid.New(), StatusChange{Status: "paused"}, time.Now()); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), uuid.Nil, StatusChange{Status: "active"}, time.Now()); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil org, got %v", err)
	}

	svc, _ = NewService(stubRepo{upsertErr: &pgconn.PgError{Code: "23503"}})
	if _, err := svc.SetStatus(context.Background(), uuid.New(), StatusChange{Status: "active"}, time.Now()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown org, got %v", err)
	}

	svc, _ = NewService(stubRepo{upsertErr: errors.New("conn reset")})
	if _, err := svc.SetStatus(context.Background(), uuid.New(), StatusChange{Status: "active"}, time.Now()); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
