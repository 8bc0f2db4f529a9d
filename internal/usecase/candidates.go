package usecase

import (
	"sort"

	"github.com/shelfwatch/backend/internal/domain"
)

// Candidate selection bounds.
const (
	// RestockFloor is the stock level at or below which a product always
	// qualifies, regardless of its reorder point.
	RestockFloor = 10

	// MaxCandidates caps how many products one cycle sends for analysis.
	MaxCandidates = 15
)

// SelectCandidates returns the products needing restock attention: every
// product whose stock is at or below max(reorder point, RestockFloor),
// most depleted first, truncated to MaxCandidates. Pure and cheap enough to
// recompute from scratch on every trigger.
func SelectCandidates(products []domain.Product) []domain.Product {
	candidates := make([]domain.Product, 0, len(products))
	for _, p := range products {
		threshold := p.ReorderPoint
		if threshold < RestockFloor {
			threshold = RestockFloor
		}
		if p.Stock <= threshold {
			candidates = append(candidates, p)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Stock < candidates[j].Stock
	})

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}

// BuildSummary computes the coarse counts published before any I/O starts.
// NeedsRestock counts the selected candidates; the critical and weekly
// tallies run over the full product list, past the candidate cap.
func BuildSummary(products, candidates []domain.Product) domain.Summary {
	summary := domain.Summary{
		TotalProducts: len(products),
		NeedsRestock:  len(candidates),
	}
	for _, p := range products {
		switch domain.PriorityForStock(p.Stock) {
		case domain.PriorityCritical:
			summary.CriticalCount++
			summary.WeeklyPriority++
		case domain.PriorityHigh:
			summary.WeeklyPriority++
		}
	}
	return summary
}

// SortRecommendations orders entries by priority rank (critical, high,
// medium), then ascending stock. Every republish goes through this, so
// observers never see an unsorted view.
func SortRecommendations(entries []domain.RecommendationEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Recommendation.Priority.Rank(), entries[j].Recommendation.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].Product.Stock < entries[j].Product.Stock
	})
}
