package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiter(LimiterConfig{Rate: 1, Burst: 2})
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("keys must not share buckets")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Error("bucket should refill over time")
	}
}

func TestLimiter_EvictsIdleKeys(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiter(LimiterConfig{Rate: 1, Burst: 1, IdleTTL: time.Minute})
	l.now = func() time.Time { return now }
	l.lastSweep = now

	l.Allow("a")
	l.Allow("b")
	if l.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", l.Len())
	}

	now = now.Add(2 * time.Minute)
	l.Allow("c")
	if l.Len() != 1 {
		t.Errorf("idle keys should be evicted, got %d", l.Len())
	}
}

func TestLimiterConfig_Defaults(t *testing.T) {
	var cfg LimiterConfig
	cfg.ApplyDefaults()
	if cfg.Rate != 10 || cfg.Burst != 20 || cfg.IdleTTL != 10*time.Minute {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestRetryFunc(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	t.Run("eventual success", func(t *testing.T) {
		calls := 0
		err := RetryFunc(context.Background(), cfg, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		retries := 0
		c := cfg
		c.OnRetry = func(int, error, time.Duration) { retries++ }
		err := RetryFunc(context.Background(), c, func(context.Context) error {
			calls++
			return errors.New("down")
		})
		if err == nil || err.Error() != "down" || calls != 3 || retries != 2 {
			t.Errorf("err=%v calls=%d retries=%d", err, calls, retries)
		}
	})

	t.Run("context errors are final", func(t *testing.T) {
		calls := 0
		err := RetryFunc(context.Background(), cfg, func(context.Context) error {
			calls++
			return context.DeadlineExceeded
		})
		if !errors.Is(err, context.DeadlineExceeded) || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("canceled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryFunc(ctx, cfg, func(context.Context) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected canceled, got %v", err)
		}
	})
}
