package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"inkwell/internal/logger"
)

// CacheItem wraps cached data with its expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// GlobalCache is a small in-process LRU with per-entry TTL, used for
// rendered feed pages.
type GlobalCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var (
	cacheInstance *GlobalCache
	cacheOnce     sync.Once
)

// GetCache returns the singleton cache instance.
func GetCache() *GlobalCache {
	cacheOnce.Do(func() {
		l, err := lru.New[string, CacheItem](256)
		if err != nil {
			logger.Sugar.Fatalf("failed to create LRU cache: %v", err)
		}
		cacheInstance = &GlobalCache{lruCache: l}
	})
	return cacheInstance
}

// Set stores data under key for ttl.
func (c *GlobalCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached data, or nil when absent or expired.
func (c *GlobalCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.Data
}

// Delete removes a key.
func (c *GlobalCache) Delete(key string) {
	c.lruCache.Remove(key)
}
