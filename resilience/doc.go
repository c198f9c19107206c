// Package resilience holds the small fault-tolerance helpers the service
// relies on:
//
//   - Limiter: per-key token buckets for inbound request rate limiting
//
//   - Retry:   bounded exponential backoff for startup dependencies
//
//     limiter := resilience.NewLimiter(resilience.LimiterConfig{Rate: 10, Burst: 20})
//     if !limiter.Allow(clientIP) { ... }
//
//     err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), db.Ping)
package resilience
