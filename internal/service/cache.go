package service

import (
	"context"
	"encoding/json"
	"fmt"
	errorHandler "movie_api/pkg/error"
	"sort"
	"strings"
	"time"
)

const (
	cacheKeyPrefix = "cache:"

	AnonymousListingTTL    = 15 * time.Minute
	PersonalizedListingTTL = 5 * time.Minute
)

// CacheStore is the key-value contract the cache service runs on, implemented
// by db/redis.Store in production.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, duration time.Duration) error
	DelPattern(ctx context.Context, pattern string) error
}

type ICacheService interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func() (interface{}, error)) ([]byte, error)
	BuildKey(endpoint string, params map[string]string, userId int64) string
	InvalidateUserCache(ctx context.Context, userId int64)
	ListingTTL(authenticated bool) time.Duration
}

type CacheService struct {
	store CacheStore
}

func NewCacheService(store CacheStore) *CacheService {
	return &CacheService{store: store}
}

//------------------------------------------
//------------------------------------------

// GetOrCompute returns the cached payload for key, or invokes compute, caches
// its marshaled result for ttl and returns it. Store failures degrade to a
// plain compute, they never fail the request. Concurrent misses on the same
// key may compute more than once, the source data is idempotent to refetch.
func (m *CacheService) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func() (interface{}, error)) ([]byte, error) {
	if ttl > 0 {
		cached, found, err := m.store.Get(ctx, key)
		if err != nil {
			errorHandler.SaveError(fmt.Sprintf("Cache Error on reading key [%v]: %v", key, err), err)
		} else if found {
			return []byte(cached), nil
		}
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	if ttl > 0 {
		if err := m.store.Set(ctx, key, string(jsonData), ttl); err != nil {
			errorHandler.SaveError(fmt.Sprintf("Cache Error on saving key [%v]: %v", key, err), err)
		}
	}
	return jsonData, nil
}

// BuildKey derives a deterministic key from endpoint, sorted query params and
// the caller identity. userId 0 means anonymous. Personalized keys share the
// "cache:user:<id>:" prefix so they can be invalidated together.
func (m *CacheService) BuildKey(endpoint string, params map[string]string, userId int64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(params))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}

	scope := "anon"
	if userId != 0 {
		scope = fmt.Sprintf("user:%d", userId)
	}
	return cacheKeyPrefix + scope + ":" + endpoint + ":" + strings.Join(parts, "&")
}

// InvalidateUserCache removes every cached personalized view of the user.
// Called on any favorite mutation.
func (m *CacheService) InvalidateUserCache(ctx context.Context, userId int64) {
	pattern := fmt.Sprintf("%suser:%d:*", cacheKeyPrefix, userId)
	if err := m.store.DelPattern(ctx, pattern); err != nil {
		errorHandler.SaveError(fmt.Sprintf("Cache Error on invalidating [%v]: %v", pattern, err), err)
	}
}

func (m *CacheService) ListingTTL(authenticated bool) time.Duration {
	if authenticated {
		return PersonalizedListingTTL
	}
	return AnonymousListingTTL
}
