package middleware

import (
	"context"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// Principal is the verified caller of a request.
type Principal struct {
	UserID    uuid.UUID
	Role      enums.Role
	OrgID     *uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// WithPrincipal injects the caller into the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFromContext returns the caller, or nil on unauthenticated routes.
func PrincipalFromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(ctxPrincipal).(*Principal); ok {
		return p
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.Role
	}
	return ""
}
