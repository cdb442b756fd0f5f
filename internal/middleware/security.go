package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/theratreat/therabook-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost (e.g. api.theratreat.in).
// allowedHost should be the bare hostname without scheme or port.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- In-process per-IP limiters (production chain, in front of the
// Redis-backed limiter so obvious floods never reach Redis) ---

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

type limiterTable struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	newLimiter func() *rate.Limiter
	cleanupRun bool
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

func (t *limiterTable) get(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startCleanupOnce()
	e, ok := t.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: t.newLimiter(), lastUse: time.Now()}
		t.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (t *limiterTable) startCleanupOnce() {
	if t.cleanupRun {
		return
	}
	t.cleanupRun = true
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			t.mu.Lock()
			now := time.Now()
			for ip, e := range t.entries {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(t.entries, ip)
				}
			}
			t.mu.Unlock()
		}
	}()
}

var globalLimiters = &limiterTable{
	entries:    make(map[string]*limiterEntry),
	newLimiter: func() *rate.Limiter { return rate.NewLimiter(rate.Limit(2), 20) },
}

var loginLimiters = &limiterTable{
	entries:    make(map[string]*limiterEntry),
	newLimiter: func() *rate.Limiter { return rate.NewLimiter(rate.Every(5*time.Second), 2) },
}

var loginPaths = map[string]bool{
	"/api/auth/signin": true,
}

// GlobalRateLimit limits each IP to 2 req/s, burst 20. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !globalLimiters.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRateLimit applies a stricter limit to sign-in only. Use after GlobalRateLimit.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loginPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)
		if !loginLimiters.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many login attempts. Please try again later."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		GlobalRateLimit,
		LoginRateLimit,
	}
}
