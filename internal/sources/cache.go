package sources

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultIndexCacheSize is the number of repositories whose listing is kept
const DefaultIndexCacheSize = 256

// CachingIndexFetcher keeps successful index listings per base URL for a fixed TTL
type CachingIndexFetcher struct {
	next  IndexFetcher
	cache *expirable.LRU[string, []IndexEntry]
}

// NewCachingIndexFetcher wraps next with a TTL cache. A non-positive ttl returns next unchanged.
func NewCachingIndexFetcher(next IndexFetcher, ttl time.Duration) IndexFetcher {
	if ttl <= 0 {
		return next
	}
	return &CachingIndexFetcher{
		next:  next,
		cache: expirable.NewLRU[string, []IndexEntry](DefaultIndexCacheSize, nil, ttl),
	}
}

// FetchIndex returns the cached listing for baseURL, fetching it on a miss.
// Failures are not cached.
func (c *CachingIndexFetcher) FetchIndex(ctx context.Context, baseURL string) ([]IndexEntry, error) {
	if entries, ok := c.cache.Get(baseURL); ok {
		return entries, nil
	}

	entries, err := c.next.FetchIndex(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	c.cache.Add(baseURL, entries)
	return entries, nil
}

// Invalidate drops the cached listing for baseURL
func (c *CachingIndexFetcher) Invalidate(baseURL string) {
	c.cache.Remove(baseURL)
}
