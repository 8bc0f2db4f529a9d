package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shelfwatch/backend/internal/async"
	"github.com/shelfwatch/backend/internal/domain"
	"github.com/shelfwatch/backend/internal/infrastructure/advisor"
)

// Progress markers for the fixed cycle phases. The dispatching phase fills
// the span between cacheSplitProgress and settledProgress linearly.
const (
	summaryProgress    = 20
	cacheSplitProgress = 40
	dispatchSpan       = 50
	settledProgress    = 100
)

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	Debounce    time.Duration // trigger collapse window
	Concurrency int           // advisor calls in flight per chunk
	ItemTimeout time.Duration // budget for one advisor call
}

// DashboardService orchestrates recommendation generation cycles.
//
// A cycle runs summarize, cache-split and dispatch phases and publishes an
// immutable snapshot after every phase and after every settled item. Each
// cycle gets a generation token when it starts; publishes and notifications
// carrying a superseded token are discarded, so a newer cycle can never be
// overwritten by a slower older one.
type DashboardService struct {
	catalog  domain.ProductCatalog
	cache    domain.RecommendationCache
	advisor  domain.AdvisorClient
	notifier domain.Notifier

	concurrency int
	itemTimeout time.Duration
	debouncer   *async.Debouncer

	mutex      sync.RWMutex
	generation uint64
	snapshot   domain.DashboardSnapshot
}

// NewDashboardService creates a dashboard service with dependencies
func NewDashboardService(
	catalog domain.ProductCatalog,
	cache domain.RecommendationCache,
	advisorClient domain.AdvisorClient,
	notifier domain.Notifier,
	config DashboardServiceConfig,
) *DashboardService {
	debounce := config.Debounce
	if debounce <= 0 {
		debounce = 1 * time.Second
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	itemTimeout := config.ItemTimeout
	if itemTimeout <= 0 {
		itemTimeout = 10 * time.Second
	}

	s := &DashboardService{
		catalog:     catalog,
		cache:       cache,
		advisor:     advisorClient,
		notifier:    notifier,
		concurrency: concurrency,
		itemTimeout: itemTimeout,
		snapshot: domain.DashboardSnapshot{
			State:           domain.StateIdle,
			Recommendations: []domain.RecommendationEntry{},
		},
	}
	s.debouncer = async.NewDebouncer(debounce, func() {
		s.Generate(context.Background(), false)
	})
	return s
}

// Snapshot returns the currently published dashboard view. The returned
// value shares its recommendation slice with the published snapshot; that
// slice is never mutated after publication.
func (s *DashboardService) Snapshot() domain.DashboardSnapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshot
}

// SetProducts replaces the product list and requests a generation cycle.
// Bursts of updates within the debounce window collapse into one cycle.
func (s *DashboardService) SetProducts(products []domain.Product) {
	s.catalog.Replace(products)
	s.debouncer.Trigger()
}

// Refresh runs a forced cycle immediately: the cache namespace is cleared,
// lookups are bypassed, and every candidate goes to the advisor.
func (s *DashboardService) Refresh(ctx context.Context) domain.DashboardSnapshot {
	return s.Generate(ctx, true)
}

// Stop cancels any pending debounced trigger. In-flight cycles finish on
// their own.
func (s *DashboardService) Stop() {
	s.debouncer.Stop()
}

// Generate runs one full cycle synchronously and returns the final snapshot
// it produced. Unexpected failures abort the remainder of the cycle, leave
// the last published state visible and surface a single error notification.
func (s *DashboardService) Generate(ctx context.Context, force bool) (snap domain.DashboardSnapshot) {
	gen := s.beginCycle()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DASHBOARD] cycle %d aborted: %v", gen, r)
			if s.isCurrent(gen) {
				s.notifier.Error("Failed to generate restock recommendations")
			}
			snap = s.Snapshot()
		}
	}()

	products := s.catalog.List()
	candidates := SelectCandidates(products)
	summary := BuildSummary(products, candidates)

	// Nothing qualifies: terminal well-stocked state, no cache or advisor
	// activity at all.
	if len(candidates) == 0 {
		snap = domain.DashboardSnapshot{
			Generation:      gen,
			State:           domain.StateSettled,
			Summary:         summary,
			Recommendations: []domain.RecommendationEntry{},
			Progress:        settledProgress,
			WellStocked:     true,
			GeneratedAt:     time.Now(),
		}
		if s.publish(gen, snap) {
			s.notifier.Success("All products are well stocked")
		}
		return snap
	}

	// Summarizing: coarse counts become visible before any I/O.
	s.publish(gen, domain.DashboardSnapshot{
		Generation:      gen,
		State:           domain.StateSummarizing,
		Summary:         summary,
		Recommendations: []domain.RecommendationEntry{},
		Loading:         true,
		Progress:        summaryProgress,
	})

	// Cache-splitting: partition candidates into cached hits and fetches.
	// A forced cycle clears the namespace and skips lookups entirely.
	if force {
		s.cache.Clear(ctx)
	}

	resolved := make(map[string]domain.RecommendationEntry, len(candidates))
	needsFetch := make([]domain.Product, 0, len(candidates))
	for _, p := range candidates {
		if !force {
			if rec, ok := s.cache.Lookup(ctx, p); ok {
				resolved[p.ID] = domain.RecommendationEntry{Product: p, Recommendation: rec, FromCache: true}
				continue
			}
		}
		needsFetch = append(needsFetch, p)
	}
	cacheHits := len(resolved)

	s.publish(gen, domain.DashboardSnapshot{
		Generation:      gen,
		State:           domain.StateCacheSplitting,
		Summary:         summary,
		Recommendations: visibleEntries(candidates, resolved),
		Loading:         len(needsFetch) > 0,
		Progress:        cacheSplitProgress,
	})

	// Dispatching: fetch the misses in bounded chunks, republishing the
	// resorted list after every settled item.
	if len(needsFetch) > 0 {
		var resolvedMu sync.Mutex
		settled := 0

		batch := &async.Batch[domain.Product, domain.Recommendation]{
			Concurrency: s.concurrency,
			ItemTimeout: s.itemTimeout,
			Worker: func(ctx context.Context, p domain.Product) (domain.Recommendation, error) {
				resp, err := s.advisor.Recommend(ctx, domain.NewRestockRequest(p))
				if err != nil {
					return domain.Recommendation{}, err
				}
				rec := advisor.BuildRecommendation(p, resp)
				s.cache.Store(ctx, p, rec)
				return rec, nil
			},
			OnSettle: func(index int, out async.Outcome[domain.Recommendation]) {
				p := needsFetch[index]
				entry := domain.RecommendationEntry{Product: p}
				if out.OK() {
					entry.Recommendation = out.Value
				} else {
					log.Printf("[DASHBOARD] recommendation failed for %s: %v", p.ID, out.Err)
					entry.Recommendation = advisor.Fallback(p)
				}

				resolvedMu.Lock()
				resolved[p.ID] = entry
				settled++
				done := settled
				visible := visibleEntries(candidates, resolved)
				resolvedMu.Unlock()

				s.publish(gen, domain.DashboardSnapshot{
					Generation:      gen,
					State:           domain.StateDispatching,
					Summary:         summary,
					Recommendations: visible,
					Loading:         done < len(needsFetch),
					Progress:        cacheSplitProgress + dispatchSpan*done/len(needsFetch),
				})
			},
		}
		batch.Run(ctx, needsFetch)
	}

	// Settled: completion timestamp, refreshed cache statistics, one status
	// message for the whole cycle.
	snap = domain.DashboardSnapshot{
		Generation:      gen,
		State:           domain.StateSettled,
		Summary:         summary,
		Recommendations: visibleEntries(candidates, resolved),
		Progress:        settledProgress,
		GeneratedAt:     time.Now(),
		CacheStats:      s.cache.Stats(ctx),
	}
	if s.publish(gen, snap) {
		s.notifier.Success(fmt.Sprintf(
			"Generated %d restock recommendations (%d%% from cache)",
			len(candidates), 100*cacheHits/len(candidates),
		))
	}
	return snap
}

// beginCycle allocates the next generation token, superseding prior cycles.
func (s *DashboardService) beginCycle() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.generation++
	return s.generation
}

func (s *DashboardService) isCurrent(gen uint64) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return gen == s.generation
}

// publish installs snap as the visible snapshot if its generation is still
// current, and reports whether it did. Publishes from superseded cycles are
// discarded in place.
func (s *DashboardService) publish(gen uint64, snap domain.DashboardSnapshot) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if gen != s.generation {
		return false
	}
	s.snapshot = snap
	return true
}

// visibleEntries rebuilds the published list from the entries resolved so
// far. Walking candidates in selection order makes the result deterministic
// for any settle interleaving; the canonical sort then applies the
// priority/stock ordering.
func visibleEntries(candidates []domain.Product, resolved map[string]domain.RecommendationEntry) []domain.RecommendationEntry {
	entries := make([]domain.RecommendationEntry, 0, len(resolved))
	for _, p := range candidates {
		if entry, ok := resolved[p.ID]; ok {
			entries = append(entries, entry)
		}
	}
	SortRecommendations(entries)
	return entries
}
