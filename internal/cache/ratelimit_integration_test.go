//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/inkwell/inkwell/internal/testutil"
)

func TestIntegrationIPRateLimiter_Burst(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	limiter, err := NewIPRateLimiter(c, 1, 3)
	if err != nil {
		t.Fatalf("NewIPRateLimiter: %v", err)
	}

	ip := "203.0.113." + testutil.RandomSuffix()
	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, ip)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	result, err := limiter.Allow(ctx, ip)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if result.Allowed {
		t.Error("request beyond burst should be rejected")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", result.RetryAfter)
	}
}
