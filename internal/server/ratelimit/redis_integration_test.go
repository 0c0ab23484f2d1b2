//go:build integration

package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRedisLimiter_FixedWindow(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := DialRedis(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	limiter := NewRedisLimiter(client, &Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Minute})
	defer limiter.Stop()

	clientID := "it-" + uuid.NewString()
	for i := 0; i < 3; i++ {
		allowed, info := limiter.Allow(ctx, clientID, "/jobs", "GET")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Remaining != 2-i {
			t.Errorf("Expected remaining %d, got %d", 2-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow(ctx, clientID, "/jobs", "GET")
	if allowed {
		t.Fatal("Expected fourth request in the window to be denied")
	}
	if info.RetryAfter <= 0 || info.RetryAfter > time.Minute {
		t.Errorf("Unexpected retry after %v", info.RetryAfter)
	}
}
