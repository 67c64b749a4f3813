package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
	domainerrors "github.com/centinela/sentinel-backend/internal/domain/errors"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Upsert(ctx context.Context, rec *analysis.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*analysis.Record, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*analysis.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetByFingerprint(ctx context.Context, fp analysis.Fingerprint) (*analysis.Record, error) {
	args := m.Called(ctx, fp)
	if rec := args.Get(0); rec != nil {
		return rec.(*analysis.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error) {
	args := m.Called(ctx, filter)
	if recs := args.Get(0); recs != nil {
		return recs.([]*analysis.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) RecordActivity(ctx context.Context, entry *audit.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditor) RaiseAlert(ctx context.Context, alert *audit.Alert) (*audit.Alert, error) {
	args := m.Called(ctx, alert)
	if a := args.Get(0); a != nil {
		return a.(*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(repo Repository, auditor Auditor) Service {
	return NewService(repo, auditor, nil, nil, 0)
}

func TestService_Score(t *testing.T) {
	svc := newTestService(nil, nil)

	t.Run("no evidence is a quiet low result", func(t *testing.T) {
		result := svc.Score(ScoreInput{
			Role:         analysis.RoleStudent,
			DocumentType: analysis.DocumentEssay,
		})
		assert.Equal(t, 0, result.Overall)
		assert.Equal(t, analysis.RiskLevelLow, result.Level)
		assert.InDelta(t, 1.0, result.Confidence, 1e-9)
		assert.Empty(t, result.Critical)
		assert.Equal(t, normalRecommendations, result.Recommendations)
		assert.Equal(t, ModelVersion, result.ModelVersion)
	})

	t.Run("everything marked on a student thesis is high risk", func(t *testing.T) {
		result := svc.Score(ScoreInput{
			Evidence: map[string]bool{
				"style_mismatch":          true,
				"suspicious_timing":       true,
				"unverifiable_references": true,
				"inconsistent_data":       true,
				"suspicious_images":       true,
				"no_drafts":               true,
				"weak_defense":            true,
			},
			Role:         analysis.RoleStudent,
			DocumentType: analysis.DocumentThesis,
		})
		assert.Equal(t, 100, result.Overall)
		assert.Equal(t, analysis.RiskLevelHigh, result.Level)
		assert.InDelta(t, 1.0, result.Confidence, 1e-9)
		assert.Equal(t, analysis.AllDimensions(), result.Critical)

		require.Len(t, result.Recommendations, len(highRiskRecommendations)+2*len(analysis.AllDimensions()))
		assert.Equal(t, highRiskRecommendations, result.Recommendations[:3])
	})

	t.Run("single hot dimension stays low with critical flag", func(t *testing.T) {
		result := svc.Score(ScoreInput{
			Evidence: map[string]bool{
				"style_mismatch": true,
				"weak_defense":   true,
			},
			Role:         analysis.RoleStudent,
			DocumentType: analysis.DocumentThesis,
		})
		assert.Equal(t, 25, result.Overall)
		assert.Equal(t, analysis.RiskLevelLow, result.Level)
		assert.InDelta(t, 0.2, result.Confidence, 1e-9)
		assert.Equal(t, []analysis.Dimension{analysis.DimensionAuthorshipStyle}, result.Critical)
		assert.Equal(t, dimensionRecommendations[analysis.DimensionAuthorshipStyle], result.Recommendations)
	})

	t.Run("discounting roles lower the outcome", func(t *testing.T) {
		ev := map[string]bool{"style_mismatch": true, "weak_defense": true, "suspicious_images": true}
		student := svc.Score(ScoreInput{Evidence: ev, Role: analysis.RoleStudent, DocumentType: analysis.DocumentEssay})
		external := svc.Score(ScoreInput{Evidence: ev, Role: analysis.RoleExternalCoInvestigator, DocumentType: analysis.DocumentEssay})
		assert.Greater(t, student.Overall, external.Overall)
	})

	t.Run("unknown indicators are ignored", func(t *testing.T) {
		clean := svc.Score(ScoreInput{Role: analysis.RoleStudent, DocumentType: analysis.DocumentEssay})
		noisy := svc.Score(ScoreInput{
			Evidence:     map[string]bool{"telepathy_detected": true},
			Role:         analysis.RoleStudent,
			DocumentType: analysis.DocumentEssay,
		})
		assert.Equal(t, clean.Overall, noisy.Overall)
		assert.Equal(t, clean.Confidence, noisy.Confidence)
	})

	t.Run("adding an indicator never lowers the score", func(t *testing.T) {
		names := []string{
			"style_mismatch", "suspicious_timing", "unverifiable_references",
			"inconsistent_data", "suspicious_images", "no_drafts", "weak_defense",
		}
		ev := map[string]bool{}
		previous := 0
		for _, name := range names {
			ev[name] = true
			result := svc.Score(ScoreInput{Evidence: ev, Role: analysis.RoleStudent, DocumentType: analysis.DocumentOther})
			assert.GreaterOrEqual(t, result.Overall, previous, "after marking %s", name)
			previous = result.Overall
		}
	})

	t.Run("results stay within bounds", func(t *testing.T) {
		for _, role := range []analysis.Role{analysis.RoleStudent, analysis.RoleFacultyResearcher, analysis.Role("Unknown")} {
			for _, doc := range []analysis.DocumentType{analysis.DocumentThesis, analysis.DocumentEssay, analysis.DocumentType("Unknown")} {
				result := svc.Score(ScoreInput{
					Evidence:     map[string]bool{"suspicious_images": true, "inconsistent_data": true},
					Role:         role,
					DocumentType: doc,
				})
				assert.GreaterOrEqual(t, result.Overall, 0)
				assert.LessOrEqual(t, result.Overall, 100)
				assert.GreaterOrEqual(t, result.Confidence, 0.0)
				assert.LessOrEqual(t, result.Confidence, 1.0)
			}
		}
	})
}

func TestService_Analyze(t *testing.T) {
	ctx := context.Background()

	lowRiskRequest := AnalyzeRequest{
		Title:        "Coursework batch 4",
		Content:      "submitted coursework text",
		Actor:        "reviewer@uni.edu",
		Evidence:     map[string]bool{"no_drafts": true},
		Role:         analysis.RoleStudent,
		DocumentType: analysis.DocumentCoursework,
	}

	highRiskRequest := AnalyzeRequest{
		Title:   "Thesis: distributed consensus",
		Content: "full thesis text",
		Actor:   "reviewer@uni.edu",
		Evidence: map[string]bool{
			"style_mismatch":          true,
			"suspicious_timing":       true,
			"unverifiable_references": true,
			"inconsistent_data":       true,
			"suspicious_images":       true,
			"no_drafts":               true,
			"weak_defense":            true,
		},
		Role:         analysis.RoleStudent,
		DocumentType: analysis.DocumentThesis,
	}

	t.Run("persists and audits a low risk analysis", func(t *testing.T) {
		repo := new(mockRepository)
		auditor := new(mockAuditor)
		svc := newTestService(repo, auditor)

		repo.On("Upsert", ctx, mock.AnythingOfType("*analysis.Record")).Return(nil).Once()
		auditor.On("RecordActivity", ctx, mock.AnythingOfType("*audit.ActivityEntry")).Return(nil).Once()

		rec, err := svc.Analyze(ctx, lowRiskRequest)
		require.NoError(t, err)
		assert.Equal(t, analysis.RiskLevelLow, rec.Result.Level)
		assert.Equal(t, "reviewer@uni.edu", rec.Actor)
		assert.False(t, rec.Fingerprint.IsEmpty())

		repo.AssertExpectations(t)
		auditor.AssertExpectations(t)
		auditor.AssertNotCalled(t, "RaiseAlert", mock.Anything, mock.Anything)
	})

	t.Run("raises an alert for a high risk analysis", func(t *testing.T) {
		repo := new(mockRepository)
		auditor := new(mockAuditor)
		svc := newTestService(repo, auditor)

		repo.On("Upsert", ctx, mock.AnythingOfType("*analysis.Record")).Return(nil).Once()
		auditor.On("RecordActivity", ctx, mock.AnythingOfType("*audit.ActivityEntry")).Return(nil).Once()
		auditor.On("RaiseAlert", ctx, mock.MatchedBy(func(a *audit.Alert) bool {
			return a.Level == audit.AlertLevelHigh && a.Kind == "high_risk_analysis"
		})).Return(&audit.Alert{}, nil).Once()

		rec, err := svc.Analyze(ctx, highRiskRequest)
		require.NoError(t, err)
		assert.Equal(t, analysis.RiskLevelHigh, rec.Result.Level)

		auditor.AssertExpectations(t)
	})

	t.Run("propagates upsert failures without auditing", func(t *testing.T) {
		repo := new(mockRepository)
		auditor := new(mockAuditor)
		svc := newTestService(repo, auditor)

		repo.On("Upsert", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := svc.Analyze(ctx, lowRiskRequest)
		require.Error(t, err)
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeInternal))

		auditor.AssertNotCalled(t, "RecordActivity", mock.Anything, mock.Anything)
	})

	t.Run("propagates activity log failures", func(t *testing.T) {
		repo := new(mockRepository)
		auditor := new(mockAuditor)
		svc := newTestService(repo, auditor)

		repo.On("Upsert", ctx, mock.Anything).Return(nil).Once()
		auditor.On("RecordActivity", ctx, mock.Anything).Return(errors.New("write failed")).Once()

		_, err := svc.Analyze(ctx, lowRiskRequest)
		assert.Error(t, err)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockAuditor))
		_, err := svc.Analyze(ctx, AnalyzeRequest{Title: "x", Actor: "reviewer@uni.edu"})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
	})

	t.Run("rejects missing actor", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockAuditor))
		_, err := svc.Analyze(ctx, AnalyzeRequest{Title: "x", Content: "y"})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
	})

	t.Run("identical content yields identical fingerprints", func(t *testing.T) {
		repo := new(mockRepository)
		auditor := new(mockAuditor)
		svc := newTestService(repo, auditor)

		var fingerprints []string
		repo.On("Upsert", ctx, mock.Anything).Run(func(args mock.Arguments) {
			rec := args.Get(1).(*analysis.Record)
			fingerprints = append(fingerprints, rec.Fingerprint.String())
		}).Return(nil).Twice()
		auditor.On("RecordActivity", ctx, mock.Anything).Return(nil).Twice()

		_, err := svc.Analyze(ctx, lowRiskRequest)
		require.NoError(t, err)
		_, err = svc.Analyze(ctx, lowRiskRequest)
		require.NoError(t, err)

		require.Len(t, fingerprints, 2)
		assert.Equal(t, fingerprints[0], fingerprints[1])
	})
}

func TestRecommendationsFor_Ordering(t *testing.T) {
	recs := recommendationsFor(80, analysis.RiskLevelHigh, []analysis.Dimension{
		analysis.DimensionTimingProcess,
		analysis.DimensionPresentation,
	})

	expected := append([]string{}, highRiskRecommendations...)
	expected = append(expected, dimensionRecommendations[analysis.DimensionTimingProcess]...)
	expected = append(expected, dimensionRecommendations[analysis.DimensionPresentation]...)
	assert.Equal(t, expected, recs)
}
