package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "rate_limit:"

// RateLimitStore counts requests per client and path in a Redis sorted
// set, giving a sliding window shared by all API replicas.
type RateLimitStore struct {
	client *redis.Client
}

func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Allow records the request and reports whether the client is still
// within limit requests over the window. The count includes the current
// request. All four Redis commands run in one transaction.
func (s *RateLimitStore) Allow(ctx context.Context, clientIP, path string, window time.Duration, limit int) (bool, error) {
	start := time.Now()
	key := fmt.Sprintf("%s%s:%s", rateLimitKeyPrefix, clientIP, path)

	now := time.Now()
	windowStart := now.Add(-window)

	var card *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: strconv.FormatInt(now.UnixNano(), 10),
		})
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
		card = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})

	observeRedis("rate_limit_allow", start, err)
	if err != nil {
		return false, fmt.Errorf("rate limit window: %w", err)
	}

	return card.Val() <= int64(limit), nil
}
