package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"vbank-adapter/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Gateway notifications (Strict)
	limitStrict = rate.Limit(5)
	burstStrict = 20

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	cleanupEvery = time.Minute
	visitorTTL   = 3 * time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type LimiterConfig struct {
	// StrictPaths get the strict tier, e.g. the notification endpoint.
	StrictPaths []string
	// InternalSecret, when set, lets callers presenting it in X-Service-Auth
	// use the internal tier.
	InternalSecret string
}

// Limiter is a per-client token bucket keyed by remote IP and tier.
type Limiter struct {
	cfg    LimiterConfig
	strict map[string]bool

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewLimiter(cfg LimiterConfig) *Limiter {
	strict := make(map[string]bool, len(cfg.StrictPaths))
	for _, p := range cfg.StrictPaths {
		strict[p] = true
	}
	return &Limiter{
		cfg:      cfg,
		strict:   strict,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Run removes idle visitors until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (l *Limiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware rejects requests over the caller's quota with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := l.resolveTier(r)
		key := "ip:" + clientIP(r) + ":" + tier

		if !l.getVisitor(key, limit, burst).Allow() {
			logger.FromCtx(r.Context()).Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
			)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolveTier determines which rate limit policy applies to the request.
func (l *Limiter) resolveTier(r *http.Request) (rate.Limit, int, string) {
	if l.cfg.InternalSecret != "" && r.Header.Get("X-Service-Auth") == l.cfg.InternalSecret {
		return limitInternal, burstInternal, "internal"
	}
	if l.strict[r.URL.Path] {
		return limitStrict, burstStrict, "strict"
	}
	return limitGeneral, burstGeneral, "general"
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
