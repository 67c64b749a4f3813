package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// ActivityEntry is one immutable line of the activity log. Entries are
// appended and never updated or deleted.
type ActivityEntry struct {
	ID         uuid.UUID              `json:"id"`
	Actor      string                 `json:"actor"`
	Kind       string                 `json:"kind"`
	Detail     string                 `json:"detail"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	DurationMS int64                  `json:"duration_ms"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Common activity kinds recorded by the services.
const (
	ActivityAnalysisPerformed = "analysis_performed"
	ActivityAnalysisViewed    = "analysis_viewed"
	ActivityReportGenerated   = "report_generated"
	ActivityAlertResolved     = "alert_resolved"
)

// NewActivityEntry validates and assembles an activity entry.
func NewActivityEntry(actor, kind, detail string) (*ActivityEntry, error) {
	if actor == "" {
		return nil, errors.NewValidationError("MISSING_ACTOR",
			"activity entry requires an actor")
	}
	if kind == "" {
		return nil, errors.NewValidationError("MISSING_KIND",
			"activity entry requires a kind")
	}

	return &ActivityEntry{
		ID:        uuid.New(),
		Actor:     actor,
		Kind:      kind,
		Detail:    detail,
		Metadata:  make(map[string]interface{}),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WithMetadata attaches structured context to the entry before it is
// appended.
func (e *ActivityEntry) WithMetadata(key string, value interface{}) *ActivityEntry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithDuration records how long the audited operation took.
func (e *ActivityEntry) WithDuration(d time.Duration) *ActivityEntry {
	e.DurationMS = d.Milliseconds()
	return e
}
