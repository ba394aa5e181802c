package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/finpilot-backend/api/middleware"
	"github.com/angelmondragon/finpilot-backend/api/responses"
	"github.com/angelmondragon/finpilot-backend/api/validators"
	"github.com/angelmondragon/finpilot-backend/internal/points"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
)

type pointsService interface {
	Total(ctx context.Context, orgID, userID uuid.UUID) (points.TotalView, error)
	Award(ctx context.Context, in points.AwardInput) (int, error)
}

type awardResponse struct {
	Points int `json:"points"`
}

// canActFor: users act for themselves, org admins for their org, super admins for anyone.
func canActFor(p *middleware.Principal, orgID, userID uuid.UUID) bool {
	if p == nil {
		return false
	}
	switch {
	case p.Role == enums.RoleSuperAdmin:
		return true
	case p.UserID == userID && p.OrgID != nil && *p.OrgID == orgID:
		return true
	case p.Role == enums.RoleOrgAdmin && p.OrgID != nil && *p.OrgID == orgID:
		return true
	}
	return false
}

// PointsTotal reads one row of the totals view. org_id and user_id default
// to the caller's own keys.
func PointsTotal(svc pointsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "points service unavailable"))
			return
		}
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		orgID, ok, err := validators.ParseQueryUUID(r, "org_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			if principal.OrgID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "org_id is required"))
				return
			}
			orgID = *principal.OrgID
		}

		userID, ok, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			userID = principal.UserID
		}

		if !canActFor(principal, orgID, userID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another member's points"))
			return
		}

		view, err := svc.Total(r.Context(), orgID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// PointsAward runs the scoring function for a gamification event.
func PointsAward(svc pointsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "points service unavailable"))
			return
		}
		principal := middleware.PrincipalFromContext(r.Context())
		if principal == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}

		var in points.AwardInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in.RefTable = validators.SanitizeOptional(in.RefTable, 64)
		in.RefID = validators.SanitizeOptional(in.RefID, 128)

		if !canActFor(principal, in.OrgID, in.UserID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot award points to another member"))
			return
		}

		awarded, err := svc.Award(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, awardResponse{Points: awarded})
	}
}
