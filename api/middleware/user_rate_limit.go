package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/finpilot-backend/api/responses"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/redis"
)

// UserRateLimitPolicy caps requests per authenticated user in a fixed window.
type UserRateLimitPolicy struct {
	Name   string
	Limit  int64
	Window time.Duration
}

// UserRateLimit must run after Auth. Requests without a caller pass through.
func UserRateLimit(policy UserRateLimitPolicy, limiter redis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || policy.Limit <= 0 || policy.Window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := limiter.FixedWindowAllow(r.Context(), policy.Name+":"+userID, policy.Limit, policy.Window)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check failed"))
				return
			}
			if !allowed {
				respondRateLimited(w, r, logg, policy.Name, map[string]any{"count": count, "limit": policy.Limit})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
