package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "points_events_ref_key"}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), "") {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(pgErr, "points_events_ref_key") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pgErr, "other_key") {
		t.Fatal("unexpected constraint match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not unique violation")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: points_events.ref_id"), "") {
		t.Fatal("expected sqlite message match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected not found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("unexpected not found")
	}
}

func TestSQLState(t *testing.T) {
	if got := SQLState(fmt.Errorf("call: %w", &pgconn.PgError{Code: "22023"})); got != "22023" {
		t.Fatalf("expected 22023, got %q", got)
	}
	if got := SQLState(errors.New("plain")); got != "" {
		t.Fatalf("expected empty state, got %q", got)
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected foreign key violation")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not a foreign key violation")
	}
}
