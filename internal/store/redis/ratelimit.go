package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces one accepted submission per IP hash per window
// with a single atomic check-and-set: SET NX with the window as TTL.
// There is no read-then-write gap, so two concurrent submissions from
// the same hash cannot both pass.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRateLimiter creates a limiter over the given window (e.g. 1h).
func NewRateLimiter(client *redis.Client, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		window: window,
	}
}

// Window returns the configured minimum inter-submission interval.
func (rl *RateLimiter) Window() time.Duration {
	return rl.window
}

// Reserve claims the submission slot for ipHash. When the slot is
// already held it reports ok=false with the remaining wait; nothing is
// written in that case.
func (rl *RateLimiter) Reserve(ctx context.Context, ipHash string) (ok bool, retryAfter time.Duration, err error) {
	key := RateLimitKey(ipHash)

	set, err := rl.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), rl.window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to reserve rate-limit slot: %w", err)
	}
	if set {
		return true, 0, nil
	}

	ttl, err := rl.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate-limit ttl: %w", err)
	}
	// Key may have expired between SETNX and TTL; treat as a full window
	// rather than telling the client to retry immediately.
	if ttl <= 0 {
		ttl = rl.window
	}
	return false, ttl, nil
}

// Release frees a reservation. Used only to undo a claim after the
// check batch failed to persist, so the submitter can retry; a lost
// release costs one early check, nothing more.
func (rl *RateLimiter) Release(ctx context.Context, ipHash string) error {
	if err := rl.client.Del(ctx, RateLimitKey(ipHash)).Err(); err != nil {
		return fmt.Errorf("failed to release rate-limit slot: %w", err)
	}
	return nil
}

// RetryAfterSeconds converts a wait into the whole-second value carried
// in the rate_limited response, always at least 1.
func RetryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
