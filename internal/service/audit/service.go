package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
	"github.com/centinela/sentinel-backend/internal/metrics"
)

// Service is the audit trail surface. Every instance is explicitly
// constructed with its repositories; there is no package-level state.
type Service interface {
	// RecordActivity appends to the activity log. Persistence failures
	// propagate; a lost entry is never silent.
	RecordActivity(ctx context.Context, entry *audit.ActivityEntry) error
	// RecordSensitiveChange stores the change and, for critical kinds,
	// raises a CRITICAL alert in the same call.
	RecordSensitiveChange(ctx context.Context, entry *audit.SensitiveChangeEntry) error
	// RaiseAlert stores a new alert. Alerts always append; equal alerts
	// raised twice yield two rows.
	RaiseAlert(ctx context.Context, alert *audit.Alert) (*audit.Alert, error)
	// ResolveAlert flips an alert to resolved. Resolving twice is a
	// no-op that returns the stored alert.
	ResolveAlert(ctx context.Context, id uuid.UUID) (*audit.Alert, error)
	QueryActivities(ctx context.Context, filter audit.ActivityFilter) ([]*audit.ActivityEntry, error)
	QueryChanges(ctx context.Context, filter audit.ChangeFilter) ([]*audit.SensitiveChangeEntry, error)
	QueryAlerts(ctx context.Context, filter audit.AlertFilter) ([]*audit.Alert, error)
}

type service struct {
	activities audit.ActivityRepository
	changes    audit.SensitiveChangeRepository
	alerts     audit.AlertRepository
	metrics    *metrics.Registry
	logger     *slog.Logger
}

// NewService creates the audit service.
func NewService(
	activities audit.ActivityRepository,
	changes audit.SensitiveChangeRepository,
	alerts audit.AlertRepository,
	reg *metrics.Registry,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		activities: activities,
		changes:    changes,
		alerts:     alerts,
		metrics:    reg,
		logger:     logger,
	}
}

func (s *service) RecordActivity(ctx context.Context, entry *audit.ActivityEntry) error {
	if entry == nil {
		return errors.NewValidationError("NIL_ENTRY", "activity entry is required")
	}
	if err := s.activities.Append(ctx, entry); err != nil {
		s.metrics.RecordPersistenceFailure(ctx, "activity_append")
		return errors.NewPersistenceError("activity entry").WithCause(err)
	}
	s.metrics.RecordActivity(ctx, entry.Kind)
	return nil
}

func (s *service) RecordSensitiveChange(ctx context.Context, entry *audit.SensitiveChangeEntry) error {
	if entry == nil {
		return errors.NewValidationError("NIL_ENTRY", "sensitive change entry is required")
	}
	if err := s.changes.Append(ctx, entry); err != nil {
		s.metrics.RecordPersistenceFailure(ctx, "sensitive_change_append")
		return errors.NewPersistenceError("sensitive change").WithCause(err)
	}
	s.metrics.RecordSensitiveChange(ctx, string(entry.Kind))

	if !entry.Kind.Critical() {
		return nil
	}

	alert, err := audit.NewAlert(audit.AlertLevelCritical, "sensitive_change",
		fmt.Sprintf("%s on %s by %s", entry.Kind, entry.Resource, entry.Actor))
	if err != nil {
		return err
	}
	alert.WithActor(entry.Actor).WithResource(entry.Resource)
	if _, err := s.RaiseAlert(ctx, alert); err != nil {
		return err
	}

	s.logger.WarnContext(ctx, "critical sensitive change recorded",
		slog.String("kind", string(entry.Kind)),
		slog.String("actor", entry.Actor),
		slog.String("resource", entry.Resource),
	)
	return nil
}

func (s *service) RaiseAlert(ctx context.Context, alert *audit.Alert) (*audit.Alert, error) {
	if alert == nil {
		return nil, errors.NewValidationError("NIL_ALERT", "alert is required")
	}
	if err := s.alerts.Insert(ctx, alert); err != nil {
		s.metrics.RecordPersistenceFailure(ctx, "alert_insert")
		return nil, errors.NewPersistenceError("alert").WithCause(err)
	}
	s.metrics.RecordAlert(ctx, string(alert.Level))
	return alert, nil
}

func (s *service) ResolveAlert(ctx context.Context, id uuid.UUID) (*audit.Alert, error) {
	alert, err := s.alerts.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "alert resolved",
		slog.String("alert_id", id.String()),
		slog.String("level", string(alert.Level)),
	)
	return alert, nil
}

func (s *service) QueryActivities(ctx context.Context, filter audit.ActivityFilter) ([]*audit.ActivityEntry, error) {
	return s.activities.Query(ctx, filter)
}

func (s *service) QueryChanges(ctx context.Context, filter audit.ChangeFilter) ([]*audit.SensitiveChangeEntry, error) {
	return s.changes.Query(ctx, filter)
}

func (s *service) QueryAlerts(ctx context.Context, filter audit.AlertFilter) ([]*audit.Alert, error) {
	return s.alerts.Query(ctx, filter)
}
