package redis

import (
	"context"
	"errors"
	"fmt"
	"movie_api/configs"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

var ErrNotConnected = errors.New("redis client is not connected")

func ConnectRedis() {
	time.Sleep(time.Duration(configs.GetConfigs().WaitForRedisConnectionSec) * time.Second)
	redisClient = redis.NewClient(&redis.Options{
		Addr:     configs.GetConfigs().RedisUrl,
		Password: configs.GetConfigs().RedisPassword,
		DB:       0,
	})
	ctx := context.Background()
	pong, err := redisClient.Ping(ctx).Result()
	fmt.Println("====> [[MovieApi Redis Client:", pong, err, "]]")
}

func GetRedis(ctx context.Context, key string) (string, error) {
	if redisClient == nil {
		return "", ErrNotConnected
	}
	val, err := redisClient.Get(ctx, key).Result()
	return val, err
}

func SetRedis(ctx context.Context, key string, value interface{}, duration time.Duration) error {
	if redisClient == nil {
		return ErrNotConnected
	}
	err := redisClient.Set(ctx, key, value, duration).Err()
	return err
}

func DelRedis(ctx context.Context, keys ...string) error {
	if redisClient == nil {
		return ErrNotConnected
	}
	err := redisClient.Del(ctx, keys...).Err()
	return err
}

func DelPatternRedis(ctx context.Context, pattern string) error {
	if redisClient == nil {
		return ErrNotConnected
	}
	iter := redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return redisClient.Del(ctx, keys...).Err()
}

//------------------------------------------
//------------------------------------------

// Store adapts the redis wrapper to the cache service store contract.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := GetRedis(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	return SetRedis(ctx, key, value, duration)
}

func (s *Store) DelPattern(ctx context.Context, pattern string) error {
	return DelPatternRedis(ctx, pattern)
}
