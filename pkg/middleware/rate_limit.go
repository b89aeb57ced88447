package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillbridge/skillbridge/backend/api/pkg/metrics"
	"golang.org/x/time/rate"
)

// limitSubjectKey holds the subject of a verified bearer token on routes
// where AuthMiddleware has not run yet.
const limitSubjectKey = "rateLimitSubject"

// limiterKey prefers the authenticated user id, falling back to client IP.
func limiterKey(c *gin.Context) string {
	if sub := c.GetString(UserIDKey); sub != "" {
		return "sub:" + sub
	}
	if sub := c.GetString(limitSubjectKey); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// LimiterSubject verifies a bearer token when one is sent and records its
// subject so a limiter installed ahead of AuthMiddleware can key by user.
// It never rejects a request; missing or bad tokens fall back to the IP key.
func LimiterSubject(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := BearerToken(c.GetHeader("Authorization")); ok {
			if tok, err := ver.Verify(c.Request.Context(), raw); err == nil {
				var claims map[string]interface{}
				if tok.Claims(&claims) == nil {
					if sub, _ := claims["sub"].(string); sub != "" {
						c.Set(limitSubjectKey, sub)
					}
				}
			}
		}
		c.Next()
	}
}

const minLimiterIdle = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one token bucket per key and drops buckets that have been
// idle longer than idle. A bucket idle that long has refilled, so dropping it
// does not change what the next request sees.
type limiterSet struct {
	mu        sync.Mutex
	rps       float64
	burst     int
	idle      time.Duration
	lastSweep time.Time
	entries   map[string]*limiterEntry
	now       func() time.Time
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	idle := minLimiterIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterSet{
		rps:     rps,
		burst:   burst,
		idle:    idle,
		entries: map[string]*limiterEntry{},
		now:     time.Now,
	}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
	}
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

// sweep must be called with mu held.
func (s *limiterSet) sweep(now time.Time) {
	for k, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idle {
			delete(s.entries, k)
		}
	}
	s.lastSweep = now
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
// Each middleware instance keeps its own limiter set.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return rateLimit(newLimiterSet(rps, burst))
}

func rateLimit(set *limiterSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !set.allow(limiterKey(c)) {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
