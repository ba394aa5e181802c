package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/finpilot-backend/api/controllers"
	"github.com/angelmondragon/finpilot-backend/api/middleware"
	"github.com/angelmondragon/finpilot-backend/internal/points"
	"github.com/angelmondragon/finpilot-backend/internal/profiles"
	"github.com/angelmondragon/finpilot-backend/internal/subscriptions"
	"github.com/angelmondragon/finpilot-backend/internal/viewer"
	"github.com/angelmondragon/finpilot-backend/pkg/auth/session"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
	"github.com/angelmondragon/finpilot-backend/pkg/redis"
)

type sessionStore interface {
	session.RevocationChecker
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type stateResolver interface {
	Resolve(ctx context.Context, sess *viewer.Session) (viewer.State, error)
}

type pointsService interface {
	Total(ctx context.Context, orgID, userID uuid.UUID) (points.TotalView, error)
	Award(ctx context.Context, in points.AwardInput) (int, error)
}

type memberService interface {
	Members(ctx context.Context, orgID uuid.UUID) ([]profiles.MemberDTO, error)
}

type subscriptionService interface {
	ForOrg(ctx context.Context, orgID uuid.UUID, now time.Time) (subscriptions.Summary, error)
	Overview(ctx context.Context, now time.Time) ([]subscriptions.Summary, error)
	SetStatus(ctx context.Context, orgID uuid.UUID, change subscriptions.StatusChange, now time.Time) (subscriptions.Summary, error)
}

// Dependencies is everything the router hands to controllers and middleware.
type Dependencies struct {
	DB            controllers.Pinger
	Redis         controllers.Pinger
	RateLimiter   redis.RateLimiter
	Sessions      sessionStore
	Viewer        stateResolver
	Points        pointsService
	Members       memberService
	Subscriptions subscriptionService

	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer      prometheus.Gatherer
	HTTPMetrics   *metrics.HTTPMetrics
	AccessMetrics *metrics.AccessMetrics
	Now           func() time.Time
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}, logg))
	})

	if deps.Gatherer != nil && cfg.FeatureFlags.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	var revocations session.RevocationChecker
	if deps.Sessions != nil {
		revocations = deps.Sessions
	}

	ipLimit := middleware.RateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, logg)
	awardPolicy := middleware.UserRateLimitPolicy{
		Name:   "award",
		Limit:  int64(cfg.RateLimit.AwardLimit),
		Window: cfg.RateLimit.AwardWindow,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ipLimit)
		r.Use(middleware.Auth(cfg.JWT, revocations, logg))

		r.Get("/me", controllers.Me(deps.Viewer, logg))
		r.Get("/access/{group}", controllers.Access(deps.Viewer, deps.AccessMetrics, logg))
		r.Post("/auth/logout", controllers.AuthLogout(deps.Sessions, logg))

		r.Route("/points", func(r chi.Router) {
			r.Get("/total", controllers.PointsTotal(deps.Points, logg))
			r.With(middleware.UserRateLimit(awardPolicy, deps.RateLimiter, logg)).
				Post("/award", controllers.PointsAward(deps.Points, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(ipLimit)
		r.Use(middleware.Auth(cfg.JWT, revocations, logg))

		r.Route("/org", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleOrgAdmin, logg))
			r.Get("/members", controllers.AdminOrgMembers(deps.Members, logg))
			r.Get("/subscription", controllers.AdminOrgSubscription(deps.Subscriptions, deps.Now, logg))
		})
		r.Route("/super", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleSuperAdmin, logg))
			r.Get("/organizations", controllers.SuperOrganizations(deps.Subscriptions, deps.Now, logg))
			r.Put("/organizations/{orgID}/subscription", controllers.SuperSetSubscription(deps.Subscriptions, deps.Now, logg))
		})
	})

	return r
}
