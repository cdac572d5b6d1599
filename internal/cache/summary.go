package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solavalia/reviews-service/internal/domain"
)

// ProviderKey returns the cache key for a provider rating summary.
func ProviderKey(providerID string) string {
	return "rating:provider:" + providerID
}

// SolutionKey returns the cache key for a solution rating summary.
func SolutionKey(solutionID string) string {
	return "rating:solution:" + solutionID
}

// SummaryCache stores rating summaries in Redis with a TTL. The cache is a
// read-through layer; a miss falls back to computing from the datastore.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a Redis-backed rating summary cache.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Get returns the cached summary for the key, or nil on a miss.
func (c *SummaryCache) Get(ctx context.Context, key string) (*domain.RatingSummary, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var summary domain.RatingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}

	return &summary, nil
}

// Set stores the summary under the key with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, key string, summary *domain.RatingSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (c *SummaryCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}

	return nil
}
