package middleware

import (
	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/handler"
	"computer-inventory-api/pkg/errors"
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type contextKey string

// ClientIPKey holds the resolved client address on the request context.
const ClientIPKey contextKey = "client_ip"

// ClientIPFromContext returns the address set by TrustedProxy.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}

// SecurityMiddleware holds security-related middleware
type SecurityMiddleware struct {
	config  *config.SecurityConfig
	errors  *handler.ErrorHandler
	mu      sync.Mutex
	clients *expirable.LRU[string, *rate.Limiter]
}

// NewSecurityMiddleware creates a new security middleware with the given config.
// Limiters of idle clients expire after RateLimitClientTTL.
func NewSecurityMiddleware(cfg *config.SecurityConfig, logger *log.Logger) *SecurityMiddleware {
	size := cfg.RateLimitClients
	if size <= 0 {
		size = 10000
	}
	return &SecurityMiddleware{
		config:  cfg,
		errors:  handler.NewErrorHandler(logger),
		clients: expirable.NewLRU[string, *rate.Limiter](size, nil, cfg.RateLimitClientTTL),
	}
}

// RateLimit applies rate limiting per client IP
func (sm *SecurityMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.limiter(sm.getClientIP(r)).Allow() {
			sm.errors.SendErrorResponse(w, r, http.StatusTooManyRequests, "Rate limit exceeded", errors.ErrorCodeRateLimit, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (sm *SecurityMiddleware) limiter(clientIP string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	limiter, ok := sm.clients.Get(clientIP)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(sm.config.RateLimitRPS), sm.config.RateLimitBurst)
		sm.clients.Add(clientIP, limiter)
	}
	return limiter
}

// CORS handles Cross-Origin Resource Sharing
func (sm *SecurityMiddleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.config.EnableCORS {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if sm.isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestTimeout cancels the request context after the configured timeout
// and answers 503 if the handler has not written a response by then.
func (sm *SecurityMiddleware) RequestTimeout(next http.Handler) http.Handler {
	body := errors.NewAppError(errors.ErrorCodeTimeout, "Request timeout").ToJSON()
	return http.TimeoutHandler(next, sm.config.RequestTimeout, string(body))
}

// TrustedProxy handles trusted proxy headers for real IP detection
func (sm *SecurityMiddleware) TrustedProxy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ClientIPKey, sm.getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders adds common security headers
func (sm *SecurityMiddleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the real client IP from the request. Forwarded
// headers are honoured only when the peer is a trusted proxy.
func (sm *SecurityMiddleware) getClientIP(r *http.Request) string {
	if ip := ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}

	remoteAddr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}

	if sm.isTrustedProxy(remoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			if first := strings.TrimSpace(ips[0]); first != "" {
				return first
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	return remoteAddr
}

func (sm *SecurityMiddleware) isTrustedProxy(ip string) bool {
	for _, trustedIP := range sm.config.TrustedProxies {
		if ip == trustedIP {
			return true
		}
	}
	return false
}

func (sm *SecurityMiddleware) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowedOrigin := range sm.config.AllowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}
