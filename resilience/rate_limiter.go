package resilience

import (
	"sync"
	"time"
)

// LimiterConfig configures a keyed token-bucket limiter.
type LimiterConfig struct {
	// Rate is the number of requests allowed per second per key.
	Rate float64 `mapstructure:"rate"`
	// Burst is the maximum burst size per key.
	Burst int `mapstructure:"burst"`
	// IdleTTL evicts buckets not touched for this long (default: 10m).
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// ApplyDefaults fills zero-valued fields.
func (c *LimiterConfig) ApplyDefaults() {
	if c.Rate <= 0 {
		c.Rate = 10
	}
	if c.Burst <= 0 {
		c.Burst = int(c.Rate * 2)
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 10 * time.Minute
	}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter keeps one token bucket per key (client IP, user id, ...).
type Limiter struct {
	cfg LimiterConfig
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewLimiter creates a keyed limiter.
func NewLimiter(cfg LimiterConfig) *Limiter {
	cfg.ApplyDefaults()
	return &Limiter{
		cfg:       cfg,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow consumes one token from key's bucket, reporting whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Burst), lastRefill: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.cfg.Rate
	if b.tokens > float64(l.cfg.Burst) {
		b.tokens = float64(l.cfg.Burst)
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops idle buckets; callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) >= l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
