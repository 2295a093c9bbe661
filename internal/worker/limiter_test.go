package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "qdrant"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// A different collaborator has its own bucket
	if err := limiter.Wait(ctx, "embeddings"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 10 rps, burst 1: the second request on the same key must wait
	limiter := NewLimiter(10, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "qdrant"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "qdrant"); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected second request to be throttled, waited only %v", elapsed)
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetRate("qdrant", 1000, 100)

	for i := 0; i < 50; i++ {
		if !limiter.Allow("qdrant") {
			t.Fatalf("request %d unexpectedly throttled after SetRate", i)
		}
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	limiter := NewLimiter(0.1, 1) // very slow refill
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_ = limiter.Wait(ctx, "slow")
	if err := limiter.Wait(ctx, "slow"); err == nil {
		t.Error("expected context deadline error on throttled wait")
	}
}
