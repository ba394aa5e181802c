package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/finpilot-backend/api/routes"
	"github.com/angelmondragon/finpilot-backend/internal/points"
	"github.com/angelmondragon/finpilot-backend/internal/profiles"
	"github.com/angelmondragon/finpilot-backend/internal/subscriptions"
	"github.com/angelmondragon/finpilot-backend/internal/viewer"
	"github.com/angelmondragon/finpilot-backend/pkg/auth/session"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/db"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
	"github.com/angelmondragon/finpilot-backend/pkg/migrate"
	"github.com/angelmondragon/finpilot-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	revoker, err := session.NewRevoker(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session revoker", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	profileRepo := profiles.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())
	pointsRepo := points.NewRepository(dbClient.DB())

	resolver, err := viewer.NewResolver(profileRepo, subscriptionRepo, time.Now, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create viewer resolver", err)
		os.Exit(1)
	}

	pointsService, err := points.NewService(points.ServiceParams{
		Repo:    pointsRepo,
		Metrics: metrics.NewPointsMetrics(reg),
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create points service", err)
		os.Exit(1)
	}

	memberService, err := profiles.NewService(profileRepo, pointsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create member service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptionRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:            dbClient,
			Redis:         redisClient,
			RateLimiter:   redisClient,
			Sessions:      revoker,
			Viewer:        resolver,
			Points:        pointsService,
			Members:       memberService,
			Subscriptions: subscriptionService,
			Gatherer:      reg,
			HTTPMetrics:   metrics.NewHTTPMetrics(reg),
			AccessMetrics: metrics.NewAccessMetrics(reg),
			Now:           time.Now,
		}),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
