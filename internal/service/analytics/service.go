package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
	"github.com/centinela/sentinel-backend/internal/domain/evidence"
	"github.com/centinela/sentinel-backend/internal/metrics"
)

// aggregationLimit caps how many records one aggregation pulls from the
// registry.
const aggregationLimit = 10000

// recentActivityLimit bounds the trailing entries attached to a report.
const recentActivityLimit = 20

type service struct {
	registry   Registry
	activities AuditTrail
	changes    ChangeTrail
	recorder   ActivityRecorder
	cache      SummaryCache
	metrics    *metrics.Registry
	logger     *slog.Logger
}

// NewService creates the analytics service. The cache may be nil; every
// summary is then computed from the registry.
func NewService(
	registry Registry,
	activities AuditTrail,
	changes ChangeTrail,
	recorder ActivityRecorder,
	cache SummaryCache,
	reg *metrics.Registry,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		registry:   registry,
		activities: activities,
		changes:    changes,
		recorder:   recorder,
		cache:      cache,
		metrics:    reg,
		logger:     logger,
	}
}

func summaryCacheKey(window analysis.TimeWindow) string {
	return fmt.Sprintf("summary:%d:%d", window.From.Unix(), window.To.Unix())
}

func (s *service) Summary(ctx context.Context, window analysis.TimeWindow) (*analysis.Summary, error) {
	key := summaryCacheKey(window)

	if s.cache != nil {
		cached, err := s.cache.GetSummary(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "summary cache read failed", slog.String("error", err.Error()))
		}
		if cached != nil {
			s.metrics.RecordCacheHit(ctx, true)
			return cached, nil
		}
		s.metrics.RecordCacheHit(ctx, false)
	}

	summary, err := s.registry.Summarize(ctx, window)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, key, summary); err != nil {
			s.logger.WarnContext(ctx, "summary cache write failed", slog.String("error", err.Error()))
		}
	}
	return summary, nil
}

func (s *service) Breakdown(ctx context.Context, window analysis.TimeWindow) (*Breakdown, error) {
	records, err := s.registry.List(ctx, analysis.ListFilter{Window: window, Limit: aggregationLimit})
	if err != nil {
		return nil, err
	}

	breakdown := &Breakdown{
		Total:          len(records),
		ByRole:         make(map[analysis.Role]GroupStats),
		ByDocumentType: make(map[analysis.DocumentType]GroupStats),
	}

	roleSums := make(map[analysis.Role]int)
	typeSums := make(map[analysis.DocumentType]int)
	highRisk := 0

	for _, rec := range records {
		high := rec.Result.Level == analysis.RiskLevelHigh
		if high {
			highRisk++
		}

		rs := breakdown.ByRole[rec.Context.Role]
		rs.Count++
		if high {
			rs.HighRisk++
		}
		breakdown.ByRole[rec.Context.Role] = rs
		roleSums[rec.Context.Role] += rec.Result.Overall

		ts := breakdown.ByDocumentType[rec.Context.DocumentType]
		ts.Count++
		if high {
			ts.HighRisk++
		}
		breakdown.ByDocumentType[rec.Context.DocumentType] = ts
		typeSums[rec.Context.DocumentType] += rec.Result.Overall
	}

	for role, stats := range breakdown.ByRole {
		stats.MeanScore = float64(roleSums[role]) / float64(stats.Count)
		breakdown.ByRole[role] = stats
	}
	for docType, stats := range breakdown.ByDocumentType {
		stats.MeanScore = float64(typeSums[docType]) / float64(stats.Count)
		breakdown.ByDocumentType[docType] = stats
	}

	if len(records) > 0 {
		breakdown.HighRiskRate = float64(highRisk) / float64(len(records))
	}
	return breakdown, nil
}

func (s *service) FrequentPatterns(ctx context.Context, window analysis.TimeWindow, limit int) ([]IndicatorFrequency, error) {
	records, err := s.registry.List(ctx, analysis.ListFilter{Window: window, Limit: aggregationLimit})
	if err != nil {
		return nil, err
	}

	counts := make(map[evidence.Indicator]int)
	for _, rec := range records {
		for _, ind := range rec.Evidence.Marked() {
			counts[ind]++
		}
	}

	frequencies := make([]IndicatorFrequency, 0, len(counts))
	for _, ind := range evidence.AllIndicators() {
		count := counts[ind]
		if count == 0 {
			continue
		}
		freq := IndicatorFrequency{Indicator: ind, Count: count}
		if len(records) > 0 {
			freq.Rate = float64(count) / float64(len(records))
		}
		frequencies = append(frequencies, freq)
	}

	// Stable: ties keep indicator declaration order.
	sort.SliceStable(frequencies, func(i, j int) bool {
		return frequencies[i].Count > frequencies[j].Count
	})

	if limit > 0 && len(frequencies) > limit {
		frequencies = frequencies[:limit]
	}
	return frequencies, nil
}

func (s *service) AuditReport(ctx context.Context, requestedBy, actor string, window analysis.TimeWindow) (*AuditReport, error) {
	if actor == "" {
		return nil, errors.NewValidationError("MISSING_ACTOR", "audit report requires a subject actor")
	}

	activityCount, err := s.activities.CountByActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	recent, err := s.activities.Query(ctx, audit.ActivityFilter{
		Actor: actor,
		From:  window.From,
		To:    window.To,
		Limit: recentActivityLimit,
	})
	if err != nil {
		return nil, err
	}

	changes, err := s.changes.Query(ctx, audit.ChangeFilter{
		Actor: actor,
		From:  window.From,
		To:    window.To,
		Limit: aggregationLimit,
	})
	if err != nil {
		return nil, err
	}

	analyses, err := s.registry.List(ctx, analysis.ListFilter{
		Actor:  actor,
		Window: window,
		Limit:  aggregationLimit,
	})
	if err != nil {
		return nil, err
	}

	distribution := map[analysis.RiskLevel]int{
		analysis.RiskLevelLow:    0,
		analysis.RiskLevelMedium: 0,
		analysis.RiskLevelHigh:   0,
	}
	for _, rec := range analyses {
		distribution[rec.Result.Level]++
	}

	report := &AuditReport{
		Actor:             actor,
		ActivityCount:     activityCount,
		AnalysisCount:     len(analyses),
		SensitiveChanges:  len(changes),
		ScoreDistribution: distribution,
		RecentActivities:  recent,
	}

	if s.recorder != nil && requestedBy != "" {
		entry, err := audit.NewActivityEntry(requestedBy, audit.ActivityReportGenerated,
			fmt.Sprintf("audit report for %s", actor))
		if err != nil {
			return nil, err
		}
		entry.WithMetadata("subject", actor)
		if err := s.recorder.RecordActivity(ctx, entry); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (s *service) InvalidateSummaries(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateSummaries(ctx)
}
