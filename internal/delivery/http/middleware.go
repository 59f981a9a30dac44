package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/compareit/backend/config"
	"github.com/compareit/backend/internal/domain"
)

// CORSMiddleware handles CORS for the web front end
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if strings.HasSuffix(allowed, "*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// limiterIdleTTL is how long an IP's limiter is kept after its last request
// before pruning may drop it. A dropped limiter only resets that IP's burst
// allowance, so pruning is safe.
const limiterIdleTTL = 10 * time.Minute

// ipLimiters tracks one token-bucket limiter per client IP and drops entries
// idle longer than the TTL, keeping the map bounded over long uptimes.
type ipLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastPrune time.Time
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(r rate.Limit, burst int, ttl time.Duration) *ipLimiters {
	return &ipLimiters{
		limiters:  make(map[string]*ipLimiterEntry),
		rate:      r,
		burst:     burst,
		ttl:       ttl,
		lastPrune: time.Now(),
	}
}

func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) >= l.ttl {
		l.pruneLocked(now)
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (l *ipLimiters) pruneLocked(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.ttl {
			delete(l.limiters, ip)
		}
	}
	l.lastPrune = now
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimitMiddleware bounds search traffic per client IP. Admission control
// at the boundary only; the aggregation core never rate limits callers.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	perIP := cfg.PerIP
	if perIP <= 0 {
		perIP = 7
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}

	limiters := newIPLimiters(rate.Limit(float64(perIP)/60.0), burst, limiterIdleTTL)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   domain.ErrRateLimited.Error(),
			})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs requests
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
