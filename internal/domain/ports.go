package domain

import "context"

// KeyValueStore is the durable string map backing the recommendation cache.
// Implementations may fail on any operation; callers above the cache boundary
// never see those failures. Lifetime spans the process and the contents may
// be cleared externally at any time.
type KeyValueStore interface {
	// Get returns the value for key, or ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// RecommendationCache stores advisor results keyed by a product fingerprint
// with a fixed time-to-live. Storage failures degrade to misses and dropped
// writes; they never propagate.
type RecommendationCache interface {
	Lookup(ctx context.Context, p Product) (Recommendation, bool)
	Store(ctx context.Context, p Product, rec Recommendation)
	Clear(ctx context.Context)
	Stats(ctx context.Context) CacheStats
}

// AdvisorClient calls the external recommendation service for one product.
type AdvisorClient interface {
	Recommend(ctx context.Context, req RestockRequest) (*AdvisorResponse, error)
}

// ProductCatalog holds the current product list. Replace swaps the whole
// list; List returns a copy that callers may mutate freely.
type ProductCatalog interface {
	Replace(products []Product)
	List() []Product
}

// Notifier receives the single end-of-cycle status message.
type Notifier interface {
	Success(message string)
	Error(message string)
}
