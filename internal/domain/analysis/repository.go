package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TimeWindow bounds a query in time. A zero bound is open on that side.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// ListFilter narrows a registry listing. Zero values mean "no constraint";
// Limit 0 falls back to the repository default. The window applies to the
// time of the latest analysis of the content, matching the listing order.
type ListFilter struct {
	Actor  string
	Window TimeWindow
	Limit  int
}

// Summary aggregates persisted analyses over a window. An empty window
// yields zeroed counts and a zero mean.
type Summary struct {
	Total     int               `json:"total"`
	ByLevel   map[RiskLevel]int `json:"by_level"`
	MeanScore float64           `json:"mean_score"`
}

// Repository is the analysis registry. Upsert keys on the document
// fingerprint: a second analysis of the same content replaces the stored
// outcome and refreshes updated_at, keeping the original created_at.
type Repository interface {
	Upsert(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByFingerprint(ctx context.Context, fp Fingerprint) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	Summarize(ctx context.Context, window TimeWindow) (*Summary, error)
}
