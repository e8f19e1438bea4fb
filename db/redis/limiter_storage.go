package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimiterStorage implements fiber.Storage on top of the shared redis client,
// so rate-limit counters are shared across server instances.
type LimiterStorage struct {
	prefix string
}

func NewLimiterStorage() *LimiterStorage {
	return &LimiterStorage{prefix: "rateLimit:"}
}

func (s *LimiterStorage) Get(key string) ([]byte, error) {
	val, err := GetRedis(context.Background(), s.prefix+key)
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, ErrNotConnected) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(val), nil
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	err := SetRedis(context.Background(), s.prefix+key, val, exp)
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

func (s *LimiterStorage) Delete(key string) error {
	err := DelRedis(context.Background(), s.prefix+key)
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

func (s *LimiterStorage) Reset() error {
	err := DelPatternRedis(context.Background(), s.prefix+"*")
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

func (s *LimiterStorage) Close() error {
	return nil
}
