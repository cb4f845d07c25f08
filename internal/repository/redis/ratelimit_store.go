package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitStore is a fixed-window request counter shared by every API
// instance. It satisfies echo's middleware.RateLimiterStore.
type RateLimitStore struct {
	client  redis.UniversalClient
	prefix  string
	max     int64
	window  time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

func NewRateLimitStore(client redis.UniversalClient, max int, window time.Duration, logger *zap.Logger) *RateLimitStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimitStore{
		client:  client,
		prefix:  "ratelimit",
		max:     int64(max),
		window:  window,
		timeout: 200 * time.Millisecond,
		logger:  logger,
	}
}

func (s *RateLimitStore) key(identifier string) string {
	return fmt.Sprintf("%s:%s", s.prefix, identifier)
}

// Allow counts one request for identifier. Redis failures let the request
// through so an outage does not take the API down with it.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, s.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		s.logger.Warn("rate limit store unavailable", zap.String("identifier", identifier), zap.Error(err))
		return true, err
	}
	return incr.Val() <= s.max, nil
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
