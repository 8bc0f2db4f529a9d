package domain

// Stock thresholds that drive priority classification and summary counts.
const (
	CriticalStockMax = 5  // stock at or below this is critical
	HighStockMax     = 10 // stock at or below this (but above critical) is high
)

// Priority classifies how urgently a product needs restocking.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Rank returns the sort rank of a priority; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

// PriorityForStock derives the restock priority from the current stock level.
func PriorityForStock(stock int) Priority {
	switch {
	case stock <= CriticalStockMax:
		return PriorityCritical
	case stock <= HighStockMax:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Recommendation is the advisor output retained for one product: the opaque
// advisor text plus the locally derived priority.
type Recommendation struct {
	Summary    string   `json:"summary"`
	Suggestion string   `json:"suggestion"`
	Action     string   `json:"action"`
	Priority   Priority `json:"priority"`
}

// AdvisorResponse is the wire shape returned by the advisor service.
// Additional fields in the payload are ignored.
type AdvisorResponse struct {
	AnalyzerSummary   string `json:"analyzer_summary"`
	RestockSuggestion string `json:"restock_suggestion"`
	ReorderMessage    string `json:"reorder_message"`
}
