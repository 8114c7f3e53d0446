package staging

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/mirocommunity/submit-service/internal/types"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
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

	return redisClient, mr, cleanup
}

func TestStore_RoundTrip(t *testing.T) {
	redisClient, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStore(redisClient, 0)
	ctx := context.Background()

	staged := &types.StagedSubmission{
		URL: "http://google.com",
		Video: &types.ResolvedVideo{
			URL:       "http://google.com",
			Title:     "Title",
			EmbedCode: "blink",
			Tags:      []string{"hello", "goodbye"},
			Files:     []types.VideoFile{{URL: "http://google.com/file.mp4", MimeType: "video/mp4"}},
		},
	}

	if err := store.Put(ctx, "session1", "/submit/scraped/", staged); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "session1", "/submit/scraped/")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, staged) {
		t.Fatalf("Staged submission mutated in transit: got %+v, want %+v", got, staged)
	}
}

func TestStore_NilVideoRoundTrip(t *testing.T) {
	redisClient, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStore(redisClient, 0)
	ctx := context.Background()

	staged := &types.StagedSubmission{URL: "http://google.com/file.mov", Video: nil}
	if err := store.Put(ctx, "session1", "/submit/directlink/", staged); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "session1", "/submit/directlink/")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Video != nil {
		t.Fatalf("Expected nil video, got %+v", got.Video)
	}
	if got.URL != staged.URL {
		t.Fatalf("Expected url %q, got %q", staged.URL, got.URL)
	}
}

func TestStore_MissingEntry(t *testing.T) {
	redisClient, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStore(redisClient, 0)

	_, err := store.Get(context.Background(), "session1", "/submit/embed/")
	if !errors.Is(err, ErrNotStaged) {
		t.Fatalf("Expected ErrNotStaged, got %v", err)
	}
}

func TestStore_DestinationsDoNotCollide(t *testing.T) {
	redisClient, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStore(redisClient, 0)
	ctx := context.Background()

	scraped := &types.StagedSubmission{URL: "http://google.com/a"}
	direct := &types.StagedSubmission{URL: "http://google.com/b.mov"}

	if err := store.Put(ctx, "session1", "/submit/scraped/", scraped); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := store.Put(ctx, "session1", "/submit/directlink/", direct); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "session1", "/submit/scraped/")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.URL != scraped.URL {
		t.Fatalf("Scraped entry clobbered: got %q", got.URL)
	}
}

func TestStore_OverwriteIsLastWriteWins(t *testing.T) {
	redisClient, _, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStore(redisClient, 0)
	ctx := context.Background()

	if err := store.Put(ctx, "session1", "/submit/embed/", &types.StagedSubmission{URL: "http://first.com"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := store.Put(ctx, "session1", "/submit/embed/", &types.StagedSubmission{URL: "http://second.com"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "session1", "/submit/embed/")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.URL != "http://second.com" {
		t.Fatalf("Expected last write to win, got %q", got.URL)
	}
}

func TestStore_DeleteAndExpiry(t *testing.T) {
	redisClient, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStore(redisClient, time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "session1", "/submit/scraped/", &types.StagedSubmission{URL: "http://google.com"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := store.Delete(ctx, "session1", "/submit/scraped/"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "session1", "/submit/scraped/"); !errors.Is(err, ErrNotStaged) {
		t.Fatalf("Expected ErrNotStaged after delete, got %v", err)
	}

	// Abandoned entries just expire.
	if err := store.Put(ctx, "session1", "/submit/scraped/", &types.StagedSubmission{URL: "http://google.com"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "session1", "/submit/scraped/"); !errors.Is(err, ErrNotStaged) {
		t.Fatalf("Expected ErrNotStaged after TTL, got %v", err)
	}
}
