package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateSQLMigrationIsExclusive(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "  Add Streaks! ", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20260302083000_add_streaks.sql" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "-- rollback add_streaks") {
		t.Fatalf("template not rendered: %s", body)
	}

	if _, err := createSQLMigration(dir, "add streaks", now); err == nil {
		t.Fatal("expected an error for an existing migration")
	}
	if _, err := createSQLMigration(dir, "!!!", now); err == nil {
		t.Fatal("expected an error for an empty sanitized name")
	}
}

func TestCheckSections(t *testing.T) {
	cases := map[string]bool{
		"-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n":                                                   true,
		"-- +goose Up\nSELECT 1;\n":                                                                              false,
		"-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n":                                                   false,
		"-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n":                                    false,
		"-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\nSELECT 1;\n": true,
	}
	for sql, ok := range cases {
		if err := checkSections(sql); (err == nil) != ok {
			t.Fatalf("checkSections(%q) = %v, want ok=%v", sql, err, ok)
		}
	}
}

func TestEmbeddedSourceValidates(t *testing.T) {
	source, err := Source("")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if err := ValidateFS(source); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	if _, err := Source(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing dir")
	}
}
