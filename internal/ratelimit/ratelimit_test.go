package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})

	cleanup := func() {
		redisClient.Close()
		mr.Close()
	}

	return redisClient, cleanup
}

func TestTokenBucket_Allow(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 5, 5)

	ctx := context.Background()
	session := "test_session"
	action := "submit"

	for i := 0; i < 5; i++ {
		allowed, err := bucket.Allow(ctx, session, action)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}

	allowed, err := bucket.Allow(ctx, session, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("Expected request to be denied after limit reached")
	}

	remaining, err := bucket.GetRemaining(ctx, session, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("Expected 0 remaining tokens, got %d", remaining)
	}
}

func TestTokenBucket_SubjectsAreIndependent(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	bucket := NewTokenBucket(redisClient, 1, 1)
	ctx := context.Background()

	if allowed, _ := bucket.Allow(ctx, "session_a", "submit"); !allowed {
		t.Fatal("Expected first request for session_a to be allowed")
	}
	if allowed, _ := bucket.Allow(ctx, "session_a", "submit"); allowed {
		t.Fatal("Expected second request for session_a to be denied")
	}
	if allowed, _ := bucket.Allow(ctx, "session_b", "submit"); !allowed {
		t.Fatal("Expected session_b to have its own bucket")
	}
}
