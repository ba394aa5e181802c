package auth

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	OrgID  *uuid.UUID
	Role   enums.Role
	Email  string
	JTI    string
}

// AccessTokenClaims mirrors the hosted auth provider's access token. The user
// id travels in the standard subject claim.
type AccessTokenClaims struct {
	Role  enums.Role `json:"app_role"`
	OrgID *uuid.UUID `json:"org_id,omitempty"`
	Email string     `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *AccessTokenClaims) UserID() (uuid.UUID, error) {
	sub := strings.TrimSpace(c.Subject)
	if sub == "" {
		return uuid.Nil, fmt.Errorf("token subject is empty")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a uuid: %w", err)
	}
	return id, nil
}
