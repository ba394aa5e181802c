package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/finpilot-backend/api/responses"
	pkgAuth "github.com/angelmondragon/finpilot-backend/pkg/auth"
	"github.com/angelmondragon/finpilot-backend/pkg/auth/session"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
)

// Auth validates a bearer token, rejects signed-out tokens and seeds the
// request context with the caller.
func Auth(cfg config.JWTConfig, revocations session.RevocationChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if revoked {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session signed out"))
					return
				}
			}

			userID, _ := claims.UserID()
			principal := &Principal{
				UserID:  userID,
				Role:    claims.Role,
				OrgID:   claims.OrgID,
				TokenID: claims.ID,
			}
			if claims.ExpiresAt != nil {
				principal.ExpiresAt = claims.ExpiresAt.Time
			}
			ctx := WithPrincipal(r.Context(), principal)

			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
				ctx = logg.WithActorRole(ctx, string(claims.Role))
				if claims.OrgID != nil {
					ctx = logg.WithOrgID(ctx, claims.OrgID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
