package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/finpilot-backend/api/responses"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/logger"
)

const ipBucketIdle = 10 * time.Minute

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(perSecond, burst int) *ipLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = perSecond
	}
	return &ipLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > ipBucketIdle {
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > ipBucketIdle {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// RateLimit throttles every request with a token bucket per client IP.
func RateLimit(perSecond, burst int, logg *logger.Logger) func(http.Handler) http.Handler {
	limiter := newIPLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.allow(ip) {
				respondRateLimited(w, r, logg, "ip", map[string]any{"ip": ip})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(w http.ResponseWriter, r *http.Request, logg *logger.Logger, scope string, fields map[string]any) {
	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithFields(ctx, fields)
		ctx = logg.WithField(ctx, "limit_scope", scope)
		logg.Warn(ctx, "rate_limit.exceeded")
	}
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
