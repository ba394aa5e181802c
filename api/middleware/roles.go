package middleware

import (
	"net/http"

	"github.com/angelmondragon/finpilot-backend/api/responses"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
)

// RequireRole admits callers whose role carries at least min's privilege.
func RequireRole(min enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RoleFromContext(r.Context()).AtLeast(min) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required").
					WithDetails(map[string]string{"required_role": string(min)}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
