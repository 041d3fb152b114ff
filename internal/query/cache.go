package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheSize = 500
	defaultCacheTTL  = 5 * time.Minute
)

type cacheEntry struct {
	response  Response
	expiresAt time.Time
}

// resultCache is the mutex-guarded LRU the pipeline consults in step 12.
// Keys are hashed from the normalized query, filters, pagination, and the
// index generation stamp, so a rebuild invalidates every stale entry
// without an explicit sweep.
type resultCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, cacheEntry]
	ttl time.Duration
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c, _ := lru.New[string, cacheEntry](size)
	return &resultCache{lru: c, ttl: ttl}
}

// cacheKey hashes (req, generation) into a stable string key.
func cacheKey(req Request, generation string) string {
	payload, _ := json.Marshal(struct {
		Query      string
		Filters    Filters
		Page       int
		PerPage    int
		Generation string
	}{req.Query, req.Filters, req.Page, req.PerPage, generation})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (c *resultCache) get(key string, now time.Time) (Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(key)
	if !ok {
		return Response{}, false
	}
	if now.After(entry.expiresAt) {
		c.lru.Remove(key)
		return Response{}, false
	}
	return entry.response, true
}

func (c *resultCache) put(key string, resp Response, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, cacheEntry{response: resp, expiresAt: now.Add(c.ttl)})
}
