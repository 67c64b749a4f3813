package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// ChangeKind classifies a sensitive change to system state.
type ChangeKind string

const (
	ChangeDataDeletion        ChangeKind = "data_deletion"
	ChangeResultModification  ChangeKind = "result_modification"
	ChangeConfigurationChange ChangeKind = "configuration_change"
	ChangePermissionGrant     ChangeKind = "permission_grant"
)

// Critical reports whether recording this kind must also raise a CRITICAL
// alert.
func (k ChangeKind) Critical() bool {
	switch k {
	case ChangeDataDeletion, ChangeResultModification, ChangeConfigurationChange:
		return true
	}
	return false
}

// SensitiveChangeEntry records a change to data that integrity reviews
// depend on: what changed, who changed it, and the before/after values.
type SensitiveChangeEntry struct {
	ID        uuid.UUID  `json:"id"`
	Actor     string     `json:"actor"`
	Kind      ChangeKind `json:"kind"`
	Resource  string     `json:"resource"`
	OldValue  string     `json:"old_value,omitempty"`
	NewValue  string     `json:"new_value,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSensitiveChangeEntry validates and assembles a sensitive-change entry.
func NewSensitiveChangeEntry(actor string, kind ChangeKind, resource string) (*SensitiveChangeEntry, error) {
	if actor == "" {
		return nil, errors.NewValidationError("MISSING_ACTOR",
			"sensitive change requires an actor")
	}
	if kind == "" {
		return nil, errors.NewValidationError("MISSING_CHANGE_KIND",
			"sensitive change requires a kind")
	}
	if resource == "" {
		return nil, errors.NewValidationError("MISSING_RESOURCE",
			"sensitive change requires the affected resource")
	}

	return &SensitiveChangeEntry{
		ID:        uuid.New(),
		Actor:     actor,
		Kind:      kind,
		Resource:  resource,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WithValues records the before and after values of the change.
func (e *SensitiveChangeEntry) WithValues(oldValue, newValue string) *SensitiveChangeEntry {
	e.OldValue = oldValue
	e.NewValue = newValue
	return e
}

// WithReason records the stated justification for the change.
func (e *SensitiveChangeEntry) WithReason(reason string) *SensitiveChangeEntry {
	e.Reason = reason
	return e
}
