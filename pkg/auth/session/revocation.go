package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/config"
	redisclient "github.com/angelmondragon/finpilot-backend/pkg/redis"
)

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type revocationKeyer interface {
	RevokedTokenKey(tokenID string) string
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Revoker marks signed-out access tokens until they would have expired anyway.
type Revoker struct {
	store      revocationStore
	keyer      revocationKeyer
	defaultTTL time.Duration
	now        func() time.Time
}

// NewRevoker constructs a revocation store backed by Redis.
func NewRevoker(client *redisclient.Client, cfg config.JWTConfig) (*Revoker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Revoker{
		store:      client,
		keyer:      client,
		defaultTTL: cfg.AccessTTL(),
		now:        time.Now,
	}, nil
}

// Revoke records the token id. The marker lives until expiresAt; a zero
// expiresAt falls back to the configured access token lifetime.
func (r *Revoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return fmt.Errorf("token id is required")
	}
	ttl := r.defaultTTL
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(r.now())
	}
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, r.keyer.RevokedTokenKey(tokenID), "1", ttl)
}

// IsRevoked reports whether the token id was signed out.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return false, fmt.Errorf("token id is required")
	}
	return r.store.Exists(ctx, r.keyer.RevokedTokenKey(tokenID))
}
