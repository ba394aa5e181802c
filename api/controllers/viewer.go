package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/finpilot-backend/api/middleware"
	"github.com/angelmondragon/finpilot-backend/api/responses"
	"github.com/angelmondragon/finpilot-backend/internal/access"
	"github.com/angelmondragon/finpilot-backend/internal/viewer"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
)

type stateResolver interface {
	Resolve(ctx context.Context, sess *viewer.Session) (viewer.State, error)
}

type accessResponse struct {
	Group   enums.RouteGroup `json:"group"`
	Verdict access.Verdict   `json:"verdict"`
}

func sessionFromRequest(r *http.Request) *viewer.Session {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return nil
	}
	return &viewer.Session{UserID: p.UserID, TokenID: p.TokenID, ExpiresAt: p.ExpiresAt}
}

// Me returns the caller's auth state: session, profile and app access.
func Me(resolver stateResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "viewer resolver unavailable"))
			return
		}
		sess := sessionFromRequest(r)
		if sess == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		state, err := resolver.Resolve(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// Access evaluates the gate for the {group} URL parameter against the
// caller's resolved state. Unrecognized groups are evaluated as-is and
// redirect like any unknown route.
func Access(resolver stateResolver, m *metrics.AccessMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "viewer resolver unavailable"))
			return
		}

		raw := chi.URLParam(r, "group")
		group, err := enums.ParseRouteGroup(raw)
		if err != nil {
			group = enums.RouteGroup(strings.ToLower(strings.TrimSpace(raw)))
		}

		state, err := resolver.Resolve(r.Context(), sessionFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verdict := access.Evaluate(state.GateInputs(group))
		m.IncVerdict(string(group), string(verdict.Kind))
		responses.WriteSuccess(w, accessResponse{Group: group, Verdict: verdict})
	}
}
