package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles OTP sends per association so a phone cannot be spammed
// through repeated send requests.
type Limiter struct {
	client      *redis.Client
	maxSends    int64
	windowHours time.Duration
}

func NewLimiter(client *redis.Client, maxSends int64, window time.Duration) *Limiter {
	if maxSends <= 0 {
		maxSends = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Limiter{client: client, maxSends: maxSends, windowHours: window}
}

// AllowSend checks and counts one OTP send attempt for the association.
func (l *Limiter) AllowSend(ctx context.Context, associationID int64, phone string) (bool, error) {
	key := fmt.Sprintf("ratelimit:otp:%d:%s", associationID, phone)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment otp send counter: %w", err)
	}

	if count == 1 {
		l.client.Expire(ctx, key, l.windowHours)
	}

	return count <= l.maxSends, nil
}

// Reset clears the send counter, used once an association is verified.
func (l *Limiter) Reset(ctx context.Context, associationID int64, phone string) error {
	key := fmt.Sprintf("ratelimit:otp:%d:%s", associationID, phone)
	return l.client.Del(ctx, key).Err()
}
