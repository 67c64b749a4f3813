package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// AlertLevel ranks an alert's urgency.
type AlertLevel string

const (
	AlertLevelLow      AlertLevel = "LOW"
	AlertLevelMedium   AlertLevel = "MEDIUM"
	AlertLevelHigh     AlertLevel = "HIGH"
	AlertLevelCritical AlertLevel = "CRITICAL"
)

var validAlertLevels = map[AlertLevel]bool{
	AlertLevelLow:      true,
	AlertLevelMedium:   true,
	AlertLevelHigh:     true,
	AlertLevelCritical: true,
}

// Alert flags a condition that needs reviewer attention. Alerts are only
// ever appended and later marked resolved; resolution is one-way.
type Alert struct {
	ID         uuid.UUID  `json:"id"`
	Level      AlertLevel `json:"level"`
	Kind       string     `json:"kind"`
	Message    string     `json:"message"`
	Actor      string     `json:"actor,omitempty"`
	Resource   string     `json:"resource,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewAlert validates and assembles an unresolved alert.
func NewAlert(level AlertLevel, kind, message string) (*Alert, error) {
	if !validAlertLevels[level] {
		return nil, errors.NewValidationError("INVALID_ALERT_LEVEL",
			"alert level must be LOW, MEDIUM, HIGH or CRITICAL")
	}
	if kind == "" {
		return nil, errors.NewValidationError("MISSING_ALERT_KIND",
			"alert requires a kind")
	}
	if message == "" {
		return nil, errors.NewValidationError("MISSING_ALERT_MESSAGE",
			"alert requires a message")
	}

	return &Alert{
		ID:        uuid.New(),
		Level:     level,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WithActor attributes the alert to the acting user.
func (a *Alert) WithActor(actor string) *Alert {
	a.Actor = actor
	return a
}

// WithResource links the alert to the affected resource.
func (a *Alert) WithResource(resource string) *Alert {
	a.Resource = resource
	return a
}

// Resolve marks the alert resolved. It reports whether the call changed
// state; resolving an already-resolved alert is a no-op.
func (a *Alert) Resolve() bool {
	if a.Resolved {
		return false
	}
	now := time.Now().UTC()
	a.Resolved = true
	a.ResolvedAt = &now
	return true
}
