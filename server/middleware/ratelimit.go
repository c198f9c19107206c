package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/resilience"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	resilience.LimiterConfig `mapstructure:",squash"`
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string `mapstructure:"-"`
	// OnLimit is called for each rejected request.
	OnLimit func(*gin.Context) `mapstructure:"-"`
}

// RateLimit applies a per-key token bucket and raises RateLimit failures
// once a client's bucket is empty.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	limiter := resilience.NewLimiter(cfg.LimiterConfig)

	return func(c *gin.Context) {
		if !limiter.Allow(cfg.KeyFunc(c)) {
			if cfg.OnLimit != nil {
				cfg.OnLimit(c)
			}
			abortWith(c, errors.RateLimit(""))
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}
