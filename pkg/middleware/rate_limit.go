package middleware

import (
	"net/http"
	"sync"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterStore holds one token bucket per client key.
type limiterStore struct {
	rps     float64
	burst   int
	buckets sync.Map // map[string]*rate.Limiter
}

// get returns (and lazily creates) the token-bucket limiter for key
func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.buckets.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.buckets.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

// clientKey identifies the caller by IP.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware returns a Gin middleware enforcing a per-client-IP token bucket.
// rps = allowed events per second, burst = maximum tokens in bucket. Each call
// gets its own set of buckets.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := &limiterStore{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(clientKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
