package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/centinela/sentinel-backend/internal/domain/audit"
	domainerrors "github.com/centinela/sentinel-backend/internal/domain/errors"
)

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) Append(ctx context.Context, entry *audit.ActivityEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockActivityRepo) Query(ctx context.Context, filter audit.ActivityFilter) ([]*audit.ActivityEntry, error) {
	args := m.Called(ctx, filter)
	if entries := args.Get(0); entries != nil {
		return entries.([]*audit.ActivityEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockActivityRepo) CountByActor(ctx context.Context, actor string) (int, error) {
	args := m.Called(ctx, actor)
	return args.Int(0), args.Error(1)
}

type mockChangeRepo struct {
	mock.Mock
}

func (m *mockChangeRepo) Append(ctx context.Context, entry *audit.SensitiveChangeEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockChangeRepo) Query(ctx context.Context, filter audit.ChangeFilter) ([]*audit.SensitiveChangeEntry, error) {
	args := m.Called(ctx, filter)
	if entries := args.Get(0); entries != nil {
		return entries.([]*audit.SensitiveChangeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAlertRepo struct {
	mock.Mock
}

func (m *mockAlertRepo) Insert(ctx context.Context, alert *audit.Alert) error {
	return m.Called(ctx, alert).Error(0)
}

func (m *mockAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (*audit.Alert, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAlertRepo) Query(ctx context.Context, filter audit.AlertFilter) ([]*audit.Alert, error) {
	args := m.Called(ctx, filter)
	if alerts := args.Get(0); alerts != nil {
		return alerts.([]*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAlertRepo) Resolve(ctx context.Context, id uuid.UUID) (*audit.Alert, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(activities *mockActivityRepo, changes *mockChangeRepo, alerts *mockAlertRepo) Service {
	return NewService(activities, changes, alerts, nil, nil)
}

func TestService_RecordActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("appends entry", func(t *testing.T) {
		activities := new(mockActivityRepo)
		svc := newTestService(activities, new(mockChangeRepo), new(mockAlertRepo))

		entry, err := audit.NewActivityEntry("reviewer@uni.edu", audit.ActivityAnalysisViewed, "opened analysis")
		require.NoError(t, err)

		activities.On("Append", ctx, entry).Return(nil).Once()
		require.NoError(t, svc.RecordActivity(ctx, entry))
		activities.AssertExpectations(t)
	})

	t.Run("propagates append failure as persistence error", func(t *testing.T) {
		activities := new(mockActivityRepo)
		svc := newTestService(activities, new(mockChangeRepo), new(mockAlertRepo))

		entry, err := audit.NewActivityEntry("reviewer@uni.edu", audit.ActivityAnalysisViewed, "")
		require.NoError(t, err)

		activities.On("Append", ctx, entry).Return(errors.New("disk full")).Once()
		err = svc.RecordActivity(ctx, entry)
		require.Error(t, err)
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeInternal))
	})

	t.Run("rejects nil entry", func(t *testing.T) {
		svc := newTestService(new(mockActivityRepo), new(mockChangeRepo), new(mockAlertRepo))
		assert.Error(t, svc.RecordActivity(ctx, nil))
	})
}

func TestService_RecordSensitiveChange(t *testing.T) {
	ctx := context.Background()

	t.Run("critical kind raises a critical alert", func(t *testing.T) {
		changes := new(mockChangeRepo)
		alerts := new(mockAlertRepo)
		svc := newTestService(new(mockActivityRepo), changes, alerts)

		entry, err := audit.NewSensitiveChangeEntry("admin@uni.edu", audit.ChangeDataDeletion, "analysis:7f3c")
		require.NoError(t, err)

		changes.On("Append", ctx, entry).Return(nil).Once()
		alerts.On("Insert", ctx, mock.MatchedBy(func(a *audit.Alert) bool {
			return a.Level == audit.AlertLevelCritical &&
				a.Kind == "sensitive_change" &&
				a.Actor == "admin@uni.edu" &&
				a.Resource == "analysis:7f3c"
		})).Return(nil).Once()

		require.NoError(t, svc.RecordSensitiveChange(ctx, entry))
		changes.AssertExpectations(t)
		alerts.AssertExpectations(t)
	})

	t.Run("non-critical kind raises no alert", func(t *testing.T) {
		changes := new(mockChangeRepo)
		alerts := new(mockAlertRepo)
		svc := newTestService(new(mockActivityRepo), changes, alerts)

		entry, err := audit.NewSensitiveChangeEntry("admin@uni.edu", audit.ChangePermissionGrant, "user:42")
		require.NoError(t, err)

		changes.On("Append", ctx, entry).Return(nil).Once()
		require.NoError(t, svc.RecordSensitiveChange(ctx, entry))
		alerts.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("append failure stops the alert", func(t *testing.T) {
		changes := new(mockChangeRepo)
		alerts := new(mockAlertRepo)
		svc := newTestService(new(mockActivityRepo), changes, alerts)

		entry, err := audit.NewSensitiveChangeEntry("admin@uni.edu", audit.ChangeConfigurationChange, "config:scoring")
		require.NoError(t, err)

		changes.On("Append", ctx, entry).Return(errors.New("timeout")).Once()
		require.Error(t, svc.RecordSensitiveChange(ctx, entry))
		alerts.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}

func TestService_ResolveAlert(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("returns the resolved alert", func(t *testing.T) {
		alerts := new(mockAlertRepo)
		svc := newTestService(new(mockActivityRepo), new(mockChangeRepo), alerts)

		resolved := &audit.Alert{ID: id, Level: audit.AlertLevelHigh, Resolved: true}
		alerts.On("Resolve", ctx, id).Return(resolved, nil).Once()

		got, err := svc.ResolveAlert(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Resolved)
	})

	t.Run("propagates not found", func(t *testing.T) {
		alerts := new(mockAlertRepo)
		svc := newTestService(new(mockActivityRepo), new(mockChangeRepo), alerts)

		alerts.On("Resolve", ctx, id).Return(nil, domainerrors.ErrAlertNotFound).Once()

		_, err := svc.ResolveAlert(ctx, id)
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeNotFound))
	})
}

func TestService_RaiseAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate alerts both persist", func(t *testing.T) {
		alerts := new(mockAlertRepo)
		svc := newTestService(new(mockActivityRepo), new(mockChangeRepo), alerts)

		alerts.On("Insert", ctx, mock.Anything).Return(nil).Twice()

		first, err := audit.NewAlert(audit.AlertLevelMedium, "repeat_submission", "same fingerprint seen twice")
		require.NoError(t, err)
		second, err := audit.NewAlert(audit.AlertLevelMedium, "repeat_submission", "same fingerprint seen twice")
		require.NoError(t, err)

		_, err = svc.RaiseAlert(ctx, first)
		require.NoError(t, err)
		_, err = svc.RaiseAlert(ctx, second)
		require.NoError(t, err)

		alerts.AssertNumberOfCalls(t, "Insert", 2)
	})
}
