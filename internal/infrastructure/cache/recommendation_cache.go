package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shelfwatch/backend/internal/domain"
)

// keyPrefix namespaces recommendation entries inside a shared key-value store.
const keyPrefix = "shelfwatch:rec:"

// DefaultTTL is how long a cached recommendation stays valid.
const DefaultTTL = 30 * time.Minute

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// cacheEntry is the persisted document for one recommendation.
type cacheEntry struct {
	CachedAt       time.Time             `json:"cached_at"`
	Recommendation domain.Recommendation `json:"recommendation"`
}

// RecommendationCache stores advisor recommendations in a key-value store,
// keyed by a product fingerprint, each entry valid for a fixed TTL.
//
// Every storage failure degrades instead of propagating: a failed read is a
// miss, a failed write drops the entry, a failed delete leaves the entry to
// age out. Expired entries are evicted lazily when a lookup touches them.
type RecommendationCache struct {
	store domain.KeyValueStore
	ttl   time.Duration
}

// NewRecommendationCache creates a cache over store. A non-positive ttl
// falls back to DefaultTTL.
func NewRecommendationCache(store domain.KeyValueStore, ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RecommendationCache{
		store: store,
		ttl:   ttl,
	}
}

// Lookup returns the cached recommendation for a product, if one exists and
// has not expired. Expired and unreadable entries are evicted and reported
// as misses.
func (c *RecommendationCache) Lookup(ctx context.Context, p domain.Product) (domain.Recommendation, bool) {
	key := fingerprintKey(p)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return domain.Recommendation{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Printf("[CACHE] evicting unreadable entry %s: %v", key, err)
		c.evict(ctx, key)
		return domain.Recommendation{}, false
	}

	if c.expired(entry) {
		c.evict(ctx, key)
		return domain.Recommendation{}, false
	}

	return entry.Recommendation, true
}

// Store caches a recommendation for a product. Failures are logged and the
// entry is dropped; the caller keeps its in-memory copy either way.
func (c *RecommendationCache) Store(ctx context.Context, p domain.Product, rec domain.Recommendation) {
	entry := cacheEntry{
		CachedAt:       time.Now(),
		Recommendation: rec,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[CACHE] failed to encode entry: %v", err)
		return
	}

	if err := c.store.Set(ctx, fingerprintKey(p), string(raw)); err != nil {
		log.Printf("[CACHE] failed to store entry: %v", err)
	}
}

// Clear removes every recommendation entry. Other keys sharing the store are
// left alone. Failures are logged; entries that survive age out on their own.
func (c *RecommendationCache) Clear(ctx context.Context) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		log.Printf("[CACHE] failed to list entries for clear: %v", err)
		return
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		if err := c.store.Remove(ctx, key); err != nil {
			log.Printf("[CACHE] failed to remove entry %s: %v", key, err)
		}
	}
}

// Stats counts valid and expired entries currently in the store. Expired and
// unreadable entries are evicted while counting; the returned counts still
// include them as expired.
func (c *RecommendationCache) Stats(ctx context.Context) domain.CacheStats {
	var stats domain.CacheStats

	keys, err := c.store.Keys(ctx)
	if err != nil {
		return stats
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}

		raw, err := c.store.Get(ctx, key)
		if err != nil {
			continue
		}

		var entry cacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			stats.Expired++
			c.evict(ctx, key)
			continue
		}

		if c.expired(entry) {
			stats.Expired++
			c.evict(ctx, key)
		} else {
			stats.Valid++
		}
	}
	return stats
}

func (c *RecommendationCache) expired(entry cacheEntry) bool {
	return time.Since(entry.CachedAt) > c.ttl
}

func (c *RecommendationCache) evict(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, key); err != nil {
		log.Printf("[CACHE] failed to evict entry %s: %v", key, err)
	}
}

// fingerprintKey builds the cache key for a product.
// Format: "shelfwatch:rec:{id}:{stock}:{normalized_name}"
// Stock participates so a level change after a restock misses the stale entry.
func fingerprintKey(p domain.Product) string {
	return fmt.Sprintf("%s%s:%d:%s", keyPrefix, p.ID, p.Stock, normalizeForCacheKey(p.Name))
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
