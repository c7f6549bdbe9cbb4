// Package ban provides fingerprint-based posting suspensions backed by
// Redis. A suspension is a simple key-value pair with TTL-based expiry:
//
//	Key:   suspend:<fingerprint>
//	Value: <reason>
//	TTL:   suspension duration
//
// Strikes (rejected submissions, reported events) accumulate in a separate
// counter and escalate the suspension duration.
package ban

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SuspendPrefix is the Redis key prefix for suspension records.
	SuspendPrefix = "suspend:"

	// StrikesPrefix is the Redis key prefix for strike counters.
	StrikesPrefix = "strikes:"

	// Escalating suspension durations.
	Suspend15Min  = 15 * time.Minute // 1st strike past the threshold
	Suspend1Hour  = 1 * time.Hour    // 2nd
	Suspend24Hour = 24 * time.Hour   // 3rd and beyond

	// StrikesTTL is how long the strike counter lives. After 24h without a
	// new strike the counter resets to zero.
	StrikesTTL = 24 * time.Hour

	// SuspendThreshold is the number of strikes within StrikesTTL that
	// triggers a suspension.
	SuspendThreshold = 3
)

// Store manages suspensions and strike counters in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a new suspension store using the provided Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// IsSuspended checks whether a creator fingerprint is currently suspended
// from posting. Returns (suspended, remainingSeconds, reason, error). Redis
// errors are returned so callers can decide how to handle them; the
// recommended policy is fail-open.
func (s *Store) IsSuspended(ctx context.Context, fingerprint string) (bool, int, string, error) {
	key := SuspendPrefix + fingerprint

	reason, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, "", nil
	}
	if err != nil {
		return false, 0, "", err
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		// The suspension exists but the TTL read failed. Report suspended
		// with 0 remaining rather than swallowing the suspension.
		return true, 0, reason, nil
	}

	remaining := 0
	if ttl > 0 {
		remaining = int(ttl.Seconds())
	}
	return true, remaining, reason, nil
}

// Suspend blocks a fingerprint from posting for the given duration.
// The suspension expires automatically.
func (s *Store) Suspend(ctx context.Context, fingerprint string, duration time.Duration, reason string) error {
	return s.client.Set(ctx, SuspendPrefix+fingerprint, reason, duration).Err()
}

// Lift removes a suspension immediately.
func (s *Store) Lift(ctx context.Context, fingerprint string) error {
	return s.client.Del(ctx, SuspendPrefix+fingerprint).Err()
}

// StrikeCount returns the current strike counter for a fingerprint.
// Returns 0 if the key does not exist (no strikes, or the counter expired).
func (s *Store) StrikeCount(ctx context.Context, fingerprint string) (int, error) {
	val, err := s.client.Get(ctx, StrikesPrefix+fingerprint).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// escalationDuration returns the suspension duration for a strike count at
// or past the threshold.
func escalationDuration(strikes int) time.Duration {
	switch {
	case strikes <= SuspendThreshold:
		return Suspend15Min
	case strikes == SuspendThreshold+1:
		return Suspend1Hour
	default:
		return Suspend24Hour
	}
}

// Strike increments the strike counter for a fingerprint and, once the
// threshold is reached, applies a suspension whose duration escalates with
// each further strike:
//
//	3 strikes -> 15 minutes
//	4 strikes -> 1 hour
//	5+ strikes -> 24 hours
//
// The counter has a 24h TTL set on first increment, so the window does not
// slide. Returns (suspended, duration, error).
func (s *Store) Strike(ctx context.Context, fingerprint string, reason string) (bool, time.Duration, error) {
	key := StrikesPrefix + fingerprint

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ban: strike incr: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, StrikesTTL).Err(); err != nil {
			return false, 0, fmt.Errorf("ban: strike expire: %w", err)
		}
	}

	if count >= SuspendThreshold {
		duration := escalationDuration(int(count))
		if err := s.Suspend(ctx, fingerprint, duration, reason); err != nil {
			return false, 0, fmt.Errorf("ban: strike suspend: %w", err)
		}
		return true, duration, nil
	}

	return false, 0, nil
}
