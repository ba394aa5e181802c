package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/finpilot-backend/api/middleware"
	"github.com/angelmondragon/finpilot-backend/api/responses"
	"github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
)

type sessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthLogout revokes the presented access token until it expires.
func AuthLogout(revoker sessionRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if revoker == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "session revoker unavailable"))
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil || principal.TokenID == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := revoker.Revoke(r.Context(), principal.TokenID, principal.ExpiresAt); err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeDependency, err, "revoke session"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
