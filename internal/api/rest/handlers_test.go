package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
	domainerrors "github.com/centinela/sentinel-backend/internal/domain/errors"
	"github.com/centinela/sentinel-backend/internal/domain/evidence"
	"github.com/centinela/sentinel-backend/internal/service/analytics"
	"github.com/centinela/sentinel-backend/internal/service/scoring"
)

type mockScoringService struct {
	mock.Mock
}

func (m *mockScoringService) Score(input scoring.ScoreInput) analysis.ScoreResult {
	args := m.Called(input)
	return args.Get(0).(analysis.ScoreResult)
}

func (m *mockScoringService) Analyze(ctx context.Context, req scoring.AnalyzeRequest) (*analysis.Record, error) {
	args := m.Called(ctx, req)
	if rec := args.Get(0); rec != nil {
		return rec.(*analysis.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScoringService) GetAnalysis(ctx context.Context, id uuid.UUID) (*analysis.Record, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*analysis.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScoringService) ListAnalyses(ctx context.Context, filter analysis.ListFilter) ([]*analysis.Record, error) {
	args := m.Called(ctx, filter)
	if recs := args.Get(0); recs != nil {
		return recs.([]*analysis.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuditService struct {
	mock.Mock
}

func (m *mockAuditService) RecordActivity(ctx context.Context, entry *audit.ActivityEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditService) RecordSensitiveChange(ctx context.Context, entry *audit.SensitiveChangeEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditService) RaiseAlert(ctx context.Context, alert *audit.Alert) (*audit.Alert, error) {
	args := m.Called(ctx, alert)
	if a := args.Get(0); a != nil {
		return a.(*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditService) ResolveAlert(ctx context.Context, id uuid.UUID) (*audit.Alert, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditService) QueryActivities(ctx context.Context, filter audit.ActivityFilter) ([]*audit.ActivityEntry, error) {
	args := m.Called(ctx, filter)
	if entries := args.Get(0); entries != nil {
		return entries.([]*audit.ActivityEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditService) QueryAlerts(ctx context.Context, filter audit.AlertFilter) ([]*audit.Alert, error) {
	args := m.Called(ctx, filter)
	if alerts := args.Get(0); alerts != nil {
		return alerts.([]*audit.Alert), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditService) QueryChanges(ctx context.Context, filter audit.ChangeFilter) ([]*audit.SensitiveChangeEntry, error) {
	args := m.Called(ctx, filter)
	if entries := args.Get(0); entries != nil {
		return entries.([]*audit.SensitiveChangeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAnalyticsService struct {
	mock.Mock
}

func (m *mockAnalyticsService) Summary(ctx context.Context, window analysis.TimeWindow) (*analysis.Summary, error) {
	args := m.Called(ctx, window)
	if s := args.Get(0); s != nil {
		return s.(*analysis.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) Breakdown(ctx context.Context, window analysis.TimeWindow) (*analytics.Breakdown, error) {
	args := m.Called(ctx, window)
	if b := args.Get(0); b != nil {
		return b.(*analytics.Breakdown), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) FrequentPatterns(ctx context.Context, window analysis.TimeWindow, limit int) ([]analytics.IndicatorFrequency, error) {
	args := m.Called(ctx, window, limit)
	if p := args.Get(0); p != nil {
		return p.([]analytics.IndicatorFrequency), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) AuditReport(ctx context.Context, requestedBy, actor string, window analysis.TimeWindow) (*analytics.AuditReport, error) {
	args := m.Called(ctx, requestedBy, actor, window)
	if r := args.Get(0); r != nil {
		return r.(*analytics.AuditReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) InvalidateSummaries(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestMux(scoringSvc *mockScoringService, auditSvc *mockAuditService, analyticsSvc *mockAnalyticsService) *http.ServeMux {
	handler := NewHandler(scoringSvc, auditSvc, analyticsSvc, nil)
	mux := http.NewServeMux()
	handler.Routes(mux)
	return mux
}

func sampleRecord(t *testing.T) *analysis.Record {
	t.Helper()
	fp, err := analysis.ComputeFingerprint("thesis body")
	require.NoError(t, err)
	rec, err := analysis.NewRecord(fp, "Thesis", "reviewer@uni.edu",
		analysis.Context{Role: analysis.RoleStudent, DocumentType: analysis.DocumentThesis},
		evidence.Record{StyleMismatch: true},
		analysis.ScoreResult{
			Overall:      25,
			Level:        analysis.RiskLevelLow,
			Confidence:   0.5,
			Dimensions:   analysis.DimensionScores{analysis.DimensionAuthorshipStyle: 0.48},
			ModelVersion: "2.2",
		})
	require.NoError(t, err)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("valid request returns 201", func(t *testing.T) {
		scoringSvc := new(mockScoringService)
		analyticsSvc := new(mockAnalyticsService)
		mux := newTestMux(scoringSvc, new(mockAuditService), analyticsSvc)

		rec := sampleRecord(t)
		scoringSvc.On("Analyze", mock.Anything, mock.MatchedBy(func(req scoring.AnalyzeRequest) bool {
			return req.Actor == "reviewer@uni.edu" && req.Role == analysis.RoleStudent
		})).Return(rec, nil).Once()
		analyticsSvc.On("InvalidateSummaries", mock.Anything).Return(nil).Once()

		body, _ := json.Marshal(map[string]interface{}{
			"title":         "Thesis",
			"content":       "thesis body",
			"actor":         "reviewer@uni.edu",
			"evidence":      map[string]bool{"style_mismatch": true},
			"role":          "Student",
			"document_type": "Thesis",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v2/analyses", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp AnalysisResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 25, resp.OverallScore)
		assert.Equal(t, "LOW", resp.RiskLevel)
		assert.Equal(t, "2.2", resp.ModelVersion)

		scoringSvc.AssertExpectations(t)
		analyticsSvc.AssertExpectations(t)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		mux := newTestMux(new(mockScoringService), new(mockAuditService), new(mockAnalyticsService))
		req := httptest.NewRequest(http.MethodPost, "/api/v2/analyses", bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing required fields returns 400", func(t *testing.T) {
		mux := newTestMux(new(mockScoringService), new(mockAuditService), new(mockAnalyticsService))
		body, _ := json.Marshal(map[string]interface{}{"title": "no content or actor"})
		req := httptest.NewRequest(http.MethodPost, "/api/v2/analyses", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleGetAnalysis(t *testing.T) {
	t.Run("invalid id returns 400", func(t *testing.T) {
		mux := newTestMux(new(mockScoringService), new(mockAuditService), new(mockAnalyticsService))
		req := httptest.NewRequest(http.MethodGet, "/api/v2/analyses/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		scoringSvc := new(mockScoringService)
		mux := newTestMux(scoringSvc, new(mockAuditService), new(mockAnalyticsService))

		id := uuid.New()
		scoringSvc.On("GetAnalysis", mock.Anything, id).Return(nil, domainerrors.ErrAnalysisNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v2/analyses/"+id.String(), nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("stored analysis round-trips", func(t *testing.T) {
		scoringSvc := new(mockScoringService)
		mux := newTestMux(scoringSvc, new(mockAuditService), new(mockAnalyticsService))

		rec := sampleRecord(t)
		scoringSvc.On("GetAnalysis", mock.Anything, rec.ID).Return(rec, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v2/analyses/"+rec.ID.String(), nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp AnalysisResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, rec.ID.String(), resp.ID)
		assert.Equal(t, rec.Fingerprint.String(), resp.Fingerprint)
	})
}

func TestHandleSummary(t *testing.T) {
	t.Run("returns the aggregate", func(t *testing.T) {
		analyticsSvc := new(mockAnalyticsService)
		mux := newTestMux(new(mockScoringService), new(mockAuditService), analyticsSvc)

		analyticsSvc.On("Summary", mock.Anything, analysis.TimeWindow{}).Return(&analysis.Summary{
			Total:     7,
			ByLevel:   map[analysis.RiskLevel]int{analysis.RiskLevelLow: 7},
			MeanScore: 12.3,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v2/summary", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp analysis.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 7, resp.Total)
	})

	t.Run("bad window returns 400", func(t *testing.T) {
		mux := newTestMux(new(mockScoringService), new(mockAuditService), new(mockAnalyticsService))
		req := httptest.NewRequest(http.MethodGet, "/api/v2/summary?from=yesterday", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleAlerts(t *testing.T) {
	t.Run("filters by resolved", func(t *testing.T) {
		auditSvc := new(mockAuditService)
		mux := newTestMux(new(mockScoringService), auditSvc, new(mockAnalyticsService))

		alert, err := audit.NewAlert(audit.AlertLevelHigh, "high_risk_analysis", "score 84")
		require.NoError(t, err)

		auditSvc.On("QueryAlerts", mock.Anything, mock.MatchedBy(func(f audit.AlertFilter) bool {
			return f.Resolved != nil && !*f.Resolved
		})).Return([]*audit.Alert{alert}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v2/alerts?resolved=false", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Alerts []AlertResponse `json:"alerts"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Alerts, 1)
		assert.False(t, resp.Alerts[0].Resolved)
	})

	t.Run("bad resolved flag returns 400", func(t *testing.T) {
		mux := newTestMux(new(mockScoringService), new(mockAuditService), new(mockAnalyticsService))
		req := httptest.NewRequest(http.MethodGet, "/api/v2/alerts?resolved=maybe", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleResolveAlert(t *testing.T) {
	t.Run("resolves and records the activity", func(t *testing.T) {
		auditSvc := new(mockAuditService)
		mux := newTestMux(new(mockScoringService), auditSvc, new(mockAnalyticsService))

		alert, err := audit.NewAlert(audit.AlertLevelCritical, "sensitive_change", "data_deletion")
		require.NoError(t, err)
		alert.Resolve()

		auditSvc.On("ResolveAlert", mock.Anything, alert.ID).Return(alert, nil).Once()
		auditSvc.On("RecordActivity", mock.Anything, mock.MatchedBy(func(e *audit.ActivityEntry) bool {
			return e.Kind == audit.ActivityAlertResolved && e.Actor == "admin@uni.edu"
		})).Return(nil).Once()

		body, _ := json.Marshal(map[string]string{"actor": "admin@uni.edu"})
		req := httptest.NewRequest(http.MethodPost, "/api/v2/alerts/"+alert.ID.String()+"/resolve", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		auditSvc.AssertExpectations(t)
	})

	t.Run("unknown alert returns 404", func(t *testing.T) {
		auditSvc := new(mockAuditService)
		mux := newTestMux(new(mockScoringService), auditSvc, new(mockAnalyticsService))

		id := uuid.New()
		auditSvc.On("ResolveAlert", mock.Anything, id).Return(nil, domainerrors.ErrAlertNotFound).Once()

		body, _ := json.Marshal(map[string]string{"actor": "admin@uni.edu"})
		req := httptest.NewRequest(http.MethodPost, "/api/v2/alerts/"+id.String()+"/resolve", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(new(mockScoringService), new(mockAuditService), new(mockAnalyticsService))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	handler := requestIDMiddleware(inner)

	t.Run("generates an id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("honors inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
	})
}
