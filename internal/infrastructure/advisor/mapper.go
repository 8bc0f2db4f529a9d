package advisor

import (
	"fmt"

	"github.com/shelfwatch/backend/internal/domain"
)

// BuildRecommendation combines an advisor reply with the locally derived
// priority for the product. The advisor text is passed through opaque; only
// an empty reorder message gets a deterministic local default.
func BuildRecommendation(p domain.Product, resp *domain.AdvisorResponse) domain.Recommendation {
	action := resp.ReorderMessage
	if action == "" {
		action = fmt.Sprintf("Review reorder for %s", p.Name)
	}
	return domain.Recommendation{
		Summary:    resp.AnalyzerSummary,
		Suggestion: resp.RestockSuggestion,
		Action:     action,
		Priority:   domain.PriorityForStock(p.Stock),
	}
}

// Fallback builds the placeholder recommendation shown when the advisor call
// failed. Fallback results are display-only and must never be cached.
func Fallback(p domain.Product) domain.Recommendation {
	return domain.Recommendation{
		Summary:    fmt.Sprintf("Analysis unavailable for %s (%d units in stock)", p.Name, p.Stock),
		Suggestion: "Manual review recommended",
		Action:     fmt.Sprintf("Check supplier options for %s", p.Name),
		Priority:   domain.PriorityForStock(p.Stock),
	}
}
