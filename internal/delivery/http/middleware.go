package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// requestIDHeader is echoed on every response so dashboard polls can be
// correlated with server logs.
const requestIDHeader = "X-Request-Id"

// CORSMiddleware handles CORS for the dashboard frontend
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-Id")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
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
		// Support wildcard matching for http://localhost:*
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

// RequestIDMiddleware attaches a request ID to each request, reusing the
// caller's X-Request-Id header when present
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}

// ipLimiterEntry pairs a token bucket with the time it was last used
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiterRegistry tracks one token bucket per client IP
type ipLimiterRegistry struct {
	limiters map[string]*ipLimiterEntry
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
}

func newIPLimiterRegistry(perMinute int) *ipLimiterRegistry {
	registry := &ipLimiterRegistry{
		limiters: make(map[string]*ipLimiterEntry),
		// rate.Limit is requests per second
		rate:  rate.Limit(float64(perMinute) / 60.0),
		burst: 10, // burst of 10 requests
	}

	// Start cleanup goroutine to drop idle client entries every 5 minutes
	go registry.cleanupIdle()

	return registry
}

// allow reports whether the given client IP may make another request
func (r *ipLimiterRegistry) allow(ip string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.limiters[ip]
	if !exists {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(r.rate, r.burst)}
		r.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// cleanupIdle removes limiter entries for clients not seen recently
func (r *ipLimiterRegistry) cleanupIdle() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.mutex.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, entry := range r.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(r.limiters, ip)
			}
		}
		r.mutex.Unlock()
	}
}

// RateLimitMiddleware limits each client IP to perMinute requests
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	registry := newIPLimiterRegistry(perMinute)

	return func(c *gin.Context) {
		if !registry.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// LoggerMiddleware logs requests (simple version for now)
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
