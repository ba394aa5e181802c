package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/finpilot-backend/api/middleware"
	"github.com/angelmondragon/finpilot-backend/api/responses"
	"github.com/angelmondragon/finpilot-backend/api/validators"
	"github.com/angelmondragon/finpilot-backend/internal/profiles"
	"github.com/angelmondragon/finpilot-backend/internal/subscriptions"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
)

type memberLister interface {
	Members(ctx context.Context, orgID uuid.UUID) ([]profiles.MemberDTO, error)
}

type subscriptionOverview interface {
	Overview(ctx context.Context, now time.Time) ([]subscriptions.Summary, error)
}

type orgSubscriptionReader interface {
	ForOrg(ctx context.Context, orgID uuid.UUID, now time.Time) (subscriptions.Summary, error)
}

type subscriptionWriter interface {
	SetStatus(ctx context.Context, orgID uuid.UUID, change subscriptions.StatusChange, now time.Time) (subscriptions.Summary, error)
}

// adminOrgID resolves the organization an admin request targets. Super admins
// may pick one with ?org_id; everyone else is pinned to their own.
func adminOrgID(r *http.Request) (uuid.UUID, error) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	orgID, ok, err := validators.ParseQueryUUID(r, "org_id")
	if err != nil {
		return uuid.Nil, err
	}
	switch {
	case principal.Role == enums.RoleSuperAdmin && ok:
		return orgID, nil
	case principal.OrgID == nil:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	case ok && orgID != *principal.OrgID:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot access another organization")
	}
	return *principal.OrgID, nil
}

// AdminOrgMembers lists an organization's members with their points.
func AdminOrgMembers(svc memberLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}
		orgID, err := adminOrgID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		members, err := svc.Members(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

// AdminOrgSubscription reports an organization's subscription and whether it
// currently grants access.
func AdminOrgSubscription(svc orgSubscriptionReader, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		orgID, err := adminOrgID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.ForOrg(r.Context(), orgID, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// SuperOrganizations lists every organization with its evaluated subscription.
func SuperOrganizations(svc subscriptionOverview, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		list, err := svc.Overview(r.Context(), now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SuperSetSubscription overwrites an organization's billing state.
func SuperSetSubscription(svc subscriptionWriter, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid organization id").
				WithDetails(map[string]string{"org_id": "must be a uuid"}))
			return
		}

		var change subscriptions.StatusChange
		if err := validators.DecodeJSONBody(r, &change); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.SetStatus(r.Context(), orgID, change, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"org_id": orgID.String(), "status": string(summary.Status)})
			logg.Info(ctx, "subscription updated")
		}
		responses.WriteSuccess(w, summary)
	}
}
