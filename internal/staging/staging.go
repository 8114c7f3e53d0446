package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mirocommunity/submit-service/internal/types"
)

// ErrNotStaged is returned when no staged submission exists for a key.
var ErrNotStaged = errors.New("no staged submission")

// Key pattern: one staged entry per (session, destination page), so tabs
// pursuing different submission types don't clobber each other.
const stagedKeyPattern = "submit:staged:%s:%s"

// DefaultTTL bounds how long an abandoned submission survives.
const DefaultTTL = 2 * time.Hour

// Store keeps in-flight submissions in Redis between the URL-submission
// request and the finalization request. Entries expire rather than being
// swept; re-staging the same key overwrites (last write wins).
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a staging store. A non-positive ttl falls back to DefaultTTL.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		redis: redisClient,
		ttl:   ttl,
	}
}

func key(sessionID, destination string) string {
	return fmt.Sprintf(stagedKeyPattern, sessionID, destination)
}

// Put stages a submission under the session's key for the destination page.
func (s *Store) Put(ctx context.Context, sessionID, destination string, staged *types.StagedSubmission) error {
	data, err := json.Marshal(staged)
	if err != nil {
		return fmt.Errorf("failed to marshal staged submission: %w", err)
	}

	if err := s.redis.Set(ctx, key(sessionID, destination), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage submission: %w", err)
	}
	return nil
}

// Get reads a staged submission back. Returns ErrNotStaged when the entry
// is absent or has expired.
func (s *Store) Get(ctx context.Context, sessionID, destination string) (*types.StagedSubmission, error) {
	data, err := s.redis.Get(ctx, key(sessionID, destination)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotStaged
	} else if err != nil {
		return nil, fmt.Errorf("failed to read staged submission: %w", err)
	}

	var staged types.StagedSubmission
	if err := json.Unmarshal([]byte(data), &staged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staged submission: %w", err)
	}
	return &staged, nil
}

// Delete removes a staged submission after finalization.
func (s *Store) Delete(ctx context.Context, sessionID, destination string) error {
	return s.redis.Del(ctx, key(sessionID, destination)).Err()
}
