package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/db"
	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"gorm.io/gorm"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite dev databases are built from the GORM models since
// the goose migrations are Postgres-only.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver}
	ctx = logg.WithFields(ctx, meta)

	if strings.EqualFold(cfg.DB.Driver, "sqlite") {
		logg.Info(ctx, "building sqlite schema from models (dev auto-run)")
		return AutoMigrateModels(client.DB())
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	source, err := Source("")
	if err != nil {
		return err
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")

	applied, err := Up(ctx, sqlDB, source)
	if err != nil {
		return err
	}

	logg.Info(logg.WithField(ctx, "applied", len(applied)), "goose migrations completed")
	return nil
}

// AutoMigrateModels creates the tables and the points_totals view on a non-Postgres
// connection. It has no award_points function; only reads work against it.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Organization{},
		&models.OrgSubscription{},
		&models.Profile{},
		&models.PointsEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if conn.Migrator().HasTable("points_totals") {
		return nil
	}
	if err := conn.Exec(models.PointsTotalsViewSQL).Error; err != nil {
		return fmt.Errorf("create points_totals view: %w", err)
	}
	return nil
}
