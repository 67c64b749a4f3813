package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityFilter narrows an activity query. Zero values mean "no
// constraint"; Limit 0 falls back to the repository default.
type ActivityFilter struct {
	Actor string
	Kind  string
	From  time.Time
	To    time.Time
	Limit int
}

// ChangeFilter narrows a sensitive-change query.
type ChangeFilter struct {
	Actor string
	Kind  ChangeKind
	From  time.Time
	To    time.Time
	Limit int
}

// AlertFilter narrows an alert query. Resolved nil matches both states.
type AlertFilter struct {
	Resolved *bool
	Level    AlertLevel
	Limit    int
}

// ActivityRepository is the append-only activity log. There is no update
// or delete; Query returns newest entries first.
type ActivityRepository interface {
	Append(ctx context.Context, entry *ActivityEntry) error
	Query(ctx context.Context, filter ActivityFilter) ([]*ActivityEntry, error)
	CountByActor(ctx context.Context, actor string) (int, error)
}

// SensitiveChangeRepository stores sensitive-change entries, append-only.
type SensitiveChangeRepository interface {
	Append(ctx context.Context, entry *SensitiveChangeEntry) error
	Query(ctx context.Context, filter ChangeFilter) ([]*SensitiveChangeEntry, error)
}

// AlertRepository stores alerts. Resolve flips resolved from false to true
// and is idempotent; it returns the stored alert either way.
type AlertRepository interface {
	Insert(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Query(ctx context.Context, filter AlertFilter) ([]*Alert, error)
	Resolve(ctx context.Context, id uuid.UUID) (*Alert, error)
}
