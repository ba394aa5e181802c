package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/db"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "migrations directory (defaults to the embedded set; create writes to "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate work on files only and need no config.
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		source, err := migrate.Source(*dir)
		if err != nil {
			fail("%v", err)
		}
		if err := migrate.ValidateFS(source); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	source, err := migrate.Source(*dir)
	requireResource(ctx, logg, "migrations", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	var applied []migrate.AppliedMigration
	switch *cmd {
	case "up":
		applied, err = migrate.Up(ctx, sqlDB, source)
	case "down":
		applied, err = migrate.Down(ctx, sqlDB, source)
	case "version":
		if *version == "" {
			fail("missing -version for version command")
		}
		applied, err = migrate.MigrateToVersion(ctx, sqlDB, source, *version)
	case "status":
		statuses, statusErr := migrate.Status(ctx, sqlDB, source)
		if statusErr != nil {
			fail("%v", statusErr)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied " + s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%d  %-40s %s\n", s.Version, s.Path, state)
		}
		return
	default:
		fail("unknown -cmd value: %s", *cmd)
	}

	for _, m := range applied {
		fmt.Printf("%s %d %s (%s)\n", *cmd, m.Version, m.Path, m.Duration)
	}
	if err != nil {
		fail("%v", err)
	}
	logg.Info(logg.WithField(ctx, "count", len(applied)), "migrations finished")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
