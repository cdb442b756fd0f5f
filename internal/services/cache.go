package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DirectoryCacheTTL bounds how stale the public therapist directory may get.
	DirectoryCacheTTL = 10 * time.Minute

	directoryKeyPrefix = "therapists:dir:"
)

// CacheService provides Redis-backed caching for read-heavy public data,
// currently the approved-therapist directory.
type CacheService struct{}

// Get retrieves a value from cache. A miss is not an error.
func (c *CacheService) Get(key string, dest interface{}) (bool, error) {
	ctx := context.Background()

	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in cache with a TTL.
func (c *CacheService) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(context.Background(), CacheKeyPrefix+key, data, ttl).Err()
}

// DirectoryCacheKey builds the cache key for one page of the therapist
// directory listing.
func DirectoryCacheKey(specialization string, page, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", directoryKeyPrefix, specialization, page, limit)
}

// InvalidateTherapistDirectory drops every cached directory page. Called
// when an admin approves or rejects a therapist.
func (c *CacheService) InvalidateTherapistDirectory() error {
	ctx := context.Background()

	iter := database.RedisClient.Scan(ctx, 0, CacheKeyPrefix+directoryKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := database.RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
