package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "https://auth.finpilot.test/auth/v1",
		Audience:          "authenticated",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()
	orgID := uuid.New()

	payload := AccessTokenPayload{
		UserID: userID,
		OrgID:  &orgID,
		Role:   enums.RoleOrgAdmin,
		Email:  "ana@acme.test",
		JTI:    "token-1",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	gotUser, err := claims.UserID()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if gotUser != userID {
		t.Fatalf("expected subject %s, got %s", userID, gotUser)
	}
	if claims.OrgID == nil || *claims.OrgID != orgID {
		t.Fatalf("org id not preserved")
	}
	if claims.Role != enums.RoleOrgAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "token-1" {
		t.Fatalf("expected jti token-1, got %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp, claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleEmployee})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected generated uuid jti, got %q", claims.ID)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleEmployee})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 15
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleEmployee})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseAccessTokenWrongAudience(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleEmployee})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Audience = "service_role"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected audience mismatch error")
	}
}

func TestParseAccessTokenRejectsNonUUIDSubject(t *testing.T) {
	cfg := testJWTConfig()
	claims := AccessTokenClaims{
		Role: enums.RoleEmployee,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected subject error")
	}
}

func TestMintAccessTokenInvalidRole(t *testing.T) {
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   "owner",
	}

	if _, err := MintAccessToken(testJWTConfig(), time.Now(), payload); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestMintAccessTokenRequiresUser(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{Role: enums.RoleEmployee}); err == nil {
		t.Fatal("expected missing user error")
	}
}
