package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	redisclient "github.com/angelmondragon/finpilot-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

func newTestRevoker(t *testing.T) (*Revoker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisclient.NewFromClient(redislib.NewClient(&redislib.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	revoker, err := NewRevoker(client, config.JWTConfig{ExpirationMinutes: 60})
	if err != nil {
		t.Fatalf("new revoker: %v", err)
	}
	return revoker, mr
}

func TestRevokeMarksToken(t *testing.T) {
	revoker, mr := newTestRevoker(t)
	ctx := context.Background()

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh token should not be revoked")
	}

	if err := revoker.Revoke(ctx, "jti-1", time.Time{}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}

	if ttl := mr.TTL("fp:revoked:jti-1"); ttl != time.Hour {
		t.Fatalf("expected default ttl of one hour, got %v", ttl)
	}
}

func TestRevokeUsesTokenExpiry(t *testing.T) {
	revoker, mr := newTestRevoker(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoker.now = func() time.Time { return now }

	if err := revoker.Revoke(context.Background(), "jti-2", now.Add(10*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ttl := mr.TTL("fp:revoked:jti-2"); ttl != 10*time.Minute {
		t.Fatalf("expected ttl to match token expiry, got %v", ttl)
	}

	mr.FastForward(11 * time.Minute)
	if revoked, _ := revoker.IsRevoked(context.Background(), "jti-2"); revoked {
		t.Fatal("marker should expire with the token")
	}
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	revoker, mr := newTestRevoker(t)
	if err := revoker.Revoke(context.Background(), "jti-3", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mr.Exists("fp:revoked:jti-3") {
		t.Fatal("expired token should not be stored")
	}
}

func TestRevokeRequiresTokenID(t *testing.T) {
	revoker, _ := newTestRevoker(t)
	if err := revoker.Revoke(context.Background(), " ", time.Time{}); err == nil {
		t.Fatal("expected error for blank token id")
	}
	if _, err := revoker.IsRevoked(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank token id")
	}
}

func TestNewRevokerRequiresClient(t *testing.T) {
	if _, err := NewRevoker(nil, config.JWTConfig{}); err == nil {
		t.Fatal("expected error without redis client")
	}
}
