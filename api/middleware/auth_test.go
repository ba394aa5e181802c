package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/finpilot-backend/pkg/auth"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/google/uuid"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
	calls   int
}

func (s *stubRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[tokenID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "https://auth.finpilot.test/auth/v1",
		Audience:          "authenticated",
		ExpirationMinutes: 15,
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, payload pkgAuth.AccessTokenPayload) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsPrincipal(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	orgID := uuid.New()
	token := mintTestToken(t, cfg, pkgAuth.AccessTokenPayload{
		UserID: userID,
		OrgID:  &orgID,
		Role:   enums.RoleOrgAdmin,
		JTI:    "jti-1",
	})

	revocations := &stubRevocations{}
	var got *Principal
	handler := Auth(cfg, revocations, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d: %s", rec.Code, rec.Body.String())
	}
	if got == nil {
		t.Fatal("expected principal in context")
	}
	if got.UserID != userID || got.Role != enums.RoleOrgAdmin || got.TokenID != "jti-1" {
		t.Fatalf("unexpected principal %+v", got)
	}
	if got.OrgID == nil || *got.OrgID != orgID {
		t.Fatalf("expected org id %s got %v", orgID, got.OrgID)
	}
	if got.ExpiresAt.IsZero() {
		t.Fatal("expected expiry to be carried")
	}
	if revocations.calls != 1 {
		t.Fatalf("expected one revocation lookup, got %d", revocations.calls)
	}
}

func TestAuthRejectsRequests(t *testing.T) {
	cfg := testJWTConfig()
	valid := mintTestToken(t, cfg, pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleEmployee, JTI: "revoked"})

	other := cfg
	other.Secret = "other"
	forged := mintTestToken(t, other, pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleEmployee})

	cases := []struct {
		name        string
		header      string
		revocations *stubRevocations
		want        int
	}{
		{name: "missing header", header: "", revocations: &stubRevocations{}, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", revocations: &stubRevocations{}, want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + forged, revocations: &stubRevocations{}, want: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer " + valid, revocations: &stubRevocations{revoked: map[string]bool{"revoked": true}}, want: http.StatusUnauthorized},
		{name: "store down", header: "Bearer " + valid, revocations: &stubRevocations{err: errors.New("redis down")}, want: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := Auth(cfg, tc.revocations, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, rec.Code)
			}
			if called {
				t.Fatal("next handler should not run")
			}
		})
	}
}

func TestBearerTokenCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer   abc ")
	if got := bearerToken(req); got != "abc" {
		t.Fatalf("expected abc got %q", got)
	}
}
