package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lifeflow/blood-bank/internal/core/ports"
)

// cacheTTL bounds how stale a served result page can be. Search reads only
// need to be eventually consistent with the latest committed writes.
const cacheTTL = 30 * time.Second

// SearchCache caches compatibility search result pages in Redis.
// Key format: bank:<blood_group_pattern>:<city_pattern>:<page>
type SearchCache struct {
	client *redis.Client
}

// NewSearchCache creates a SearchCache wrapping the given Redis client.
func NewSearchCache(client *redis.Client) *SearchCache {
	return &SearchCache{client: client}
}

// Get returns the cached page for the filter, if one is still live.
func (c *SearchCache) Get(ctx context.Context, filter ports.SearchFilter) ([]ports.DonorSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.key(filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("search cache get: %w", err)
	}

	var page []ports.DonorSummary
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false, fmt.Errorf("search cache decode: %w", err)
	}
	return page, true, nil
}

// Put stores the page under the filter's key (expires after cacheTTL).
func (c *SearchCache) Put(ctx context.Context, filter ports.SearchFilter, page []ports.DonorSummary) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("search cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(filter), raw, cacheTTL).Err()
}

func (c *SearchCache) key(filter ports.SearchFilter) string {
	return fmt.Sprintf("bank:%s:%s:%d", filter.BloodGroupPattern, filter.CityPattern, filter.Page)
}
