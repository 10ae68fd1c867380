package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError carries how long the caller has to wait.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(accountID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:account:%s:%s", accountID.String(), action)
}

// CheckAndSet claims the cooldown slot for action. A nil client disables limiting.
func CheckAndSet(ctx context.Context, rdb *redis.Client, accountID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(accountID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func TTL(ctx context.Context, rdb *redis.Client, accountID uuid.UUID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(accountID, action)).Result()
}

func Clear(ctx context.Context, rdb *redis.Client, accountID uuid.UUID, action string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key(accountID, action)).Err()
}

// Enforce wraps CheckAndSet and converts a refusal into a RateLimitError.
func Enforce(ctx context.Context, rdb *redis.Client, accountID uuid.UUID, action string, limit time.Duration) error {
	allowed, err := CheckAndSet(ctx, rdb, accountID, action, limit)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}

	ttl, _ := TTL(ctx, rdb, accountID, action)
	return &RateLimitError{
		Message:    fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", ttl.Seconds()),
		RetryAfter: ttl,
	}
}
