package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type visitor struct {
	windowStart time.Time
	count       int
}

// RateLimiter allows a fixed number of requests per client IP per minute
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	now      func() time.Time
}

// NewRateLimiter creates a limiter; limit <= 0 lets everything through
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    requestsPerMinute,
		now:      time.Now,
	}
}

func (l *RateLimiter) allow(ip string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok || now.Sub(v.windowStart) > time.Minute {
		l.visitors[ip] = &visitor{windowStart: now, count: 1}
		return true
	}
	if v.count >= l.limit {
		return false
	}
	v.count++
	return true
}

// Middleware rejects clients over the limit with 429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Cleanup drops idle visitors every interval until ctx is done
func (l *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(interval)
		}
	}
}

func (l *RateLimiter) sweep(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, v := range l.visitors {
		if now.Sub(v.windowStart) > idle {
			delete(l.visitors, ip)
		}
	}
}
