package domain

import "time"

// CycleState names the phase a generation cycle is in.
type CycleState string

const (
	StateIdle           CycleState = "idle"
	StateSummarizing    CycleState = "summarizing"
	StateCacheSplitting CycleState = "cache-splitting"
	StateDispatching    CycleState = "dispatching"
	StateSettled        CycleState = "settled"
)

// Summary holds the coarse counts published before any I/O happens.
type Summary struct {
	TotalProducts  int `json:"totalProducts"`
	NeedsRestock   int `json:"needsRestock"`
	CriticalCount  int `json:"criticalCount"`
	WeeklyPriority int `json:"weeklyPriority"`
}

// RecommendationEntry pairs a product with its recommendation in the
// published dashboard list.
type RecommendationEntry struct {
	Product        Product        `json:"product"`
	Recommendation Recommendation `json:"recommendation"`
	FromCache      bool           `json:"fromCache"`
}

// CacheStats reports how many cached recommendations are still valid and how
// many had expired at the time of inspection.
type CacheStats struct {
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// DashboardSnapshot is one immutable published view of a generation cycle.
// A snapshot is never mutated after publication; each update replaces the
// whole snapshot atomically. Generation identifies the cycle that produced
// it so stale publishes can be discarded.
//
// Recommendations are always sorted by priority rank (critical, high,
// medium), then ascending stock. Loading is true while at least one
// dispatched item of the cycle has not settled. Progress is monotonically
// non-decreasing within a cycle: 20 after the summary, 40 after the cache
// split, 40-90 across batch settles, 100 when settled.
type DashboardSnapshot struct {
	Generation      uint64                `json:"generation"`
	State           CycleState            `json:"state"`
	Summary         Summary               `json:"summary"`
	Recommendations []RecommendationEntry `json:"recommendations"`
	Loading         bool                  `json:"loading"`
	Progress        int                   `json:"progress"`
	WellStocked     bool                  `json:"wellStocked"`
	GeneratedAt     time.Time             `json:"generatedAt"`
	CacheStats      CacheStats            `json:"cacheStats"`
}
