package user

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tutien/tutienbot/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema.
// Increment when the cached structure changes to auto-invalidate old entries.
const CacheSchemaVersion = "1.0"

const (
	defaultCacheSize = 2048
	defaultCacheTTL  = 5 * time.Minute
)

// cachedRecordEntry wraps a record with version metadata for invalidation
type cachedRecordEntry struct {
	Version  string
	Record   *domain.CultivationRecord
	CachedAt time.Time
}

// recordCache is an in-memory LRU for cultivation record reads, with
// time-based expiration and version-based invalidation. Every mutating
// operation must Invalidate the user's entry after commit.
type recordCache struct {
	lru *expirable.LRU[string, *cachedRecordEntry]
}

func newRecordCache(size int, ttl time.Duration) *recordCache {
	return &recordCache{
		lru: expirable.NewLRU[string, *cachedRecordEntry](size, nil, ttl),
	}
}

func (c *recordCache) Get(userID string) (*domain.CultivationRecord, bool) {
	entry, found := c.lru.Get(userID)
	if !found {
		return nil, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(userID)
		return nil, false
	}
	return entry.Record, true
}

func (c *recordCache) Set(userID string, record *domain.CultivationRecord) {
	c.lru.Add(userID, &cachedRecordEntry{
		Version:  CacheSchemaVersion,
		Record:   record,
		CachedAt: time.Now(),
	})
}

func (c *recordCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}
