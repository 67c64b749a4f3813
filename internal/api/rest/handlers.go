package rest

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/centinela/sentinel-backend/internal/domain/analysis"
	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
	"github.com/centinela/sentinel-backend/internal/service/analytics"
	auditservice "github.com/centinela/sentinel-backend/internal/service/audit"
	"github.com/centinela/sentinel-backend/internal/service/scoring"
)

// Handler exposes the services over HTTP.
type Handler struct {
	scoring   scoring.Service
	audit     auditservice.Service
	analytics analytics.Service
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(scoringSvc scoring.Service, auditSvc auditservice.Service, analyticsSvc analytics.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		scoring:   scoringSvc,
		audit:     auditSvc,
		analytics: analyticsSvc,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Routes registers every endpoint on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v2/analyses", h.handleAnalyze)
	mux.HandleFunc("GET /api/v2/analyses", h.handleListAnalyses)
	mux.HandleFunc("GET /api/v2/analyses/{id}", h.handleGetAnalysis)
	mux.HandleFunc("GET /api/v2/summary", h.handleSummary)
	mux.HandleFunc("GET /api/v2/breakdown", h.handleBreakdown)
	mux.HandleFunc("GET /api/v2/patterns", h.handlePatterns)
	mux.HandleFunc("GET /api/v2/reports/audit", h.handleAuditReport)
	mux.HandleFunc("GET /api/v2/activities", h.handleActivities)
	mux.HandleFunc("GET /api/v2/alerts", h.handleAlerts)
	mux.HandleFunc("POST /api/v2/alerts/{id}/resolve", h.handleResolveAlert)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, errors.NewValidationError("INVALID_REQUEST", err.Error()))
		return
	}

	rec, err := h.scoring.Analyze(r.Context(), scoring.AnalyzeRequest{
		Title:        req.Title,
		Content:      req.Content,
		Actor:        req.Actor,
		Evidence:     req.Evidence,
		Role:         analysis.Role(req.Role),
		DocumentType: analysis.DocumentType(req.DocumentType),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.analytics.InvalidateSummaries(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "summary invalidation failed", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusCreated, toAnalysisResponse(rec))
}

func (h *Handler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.scoring.ListAnalyses(r.Context(), analysis.ListFilter{
		Actor:  r.URL.Query().Get("actor"),
		Window: window,
		Limit:  parseLimit(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]AnalysisResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toAnalysisResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": responses})
}

func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.NewValidationError("INVALID_ID", "analysis id must be a UUID"))
		return
	}

	rec, err := h.scoring.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(rec))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.analytics.Summary(r.Context(), window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	breakdown, err := h.analytics.Breakdown(r.Context(), window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) handlePatterns(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	patterns, err := h.analytics.FrequentPatterns(r.Context(), window, parseLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"patterns": patterns})
}

func (h *Handler) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		writeError(w, errors.NewValidationError("MISSING_SUBJECT", "subject query parameter is required"))
		return
	}
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.analytics.AuditReport(r.Context(), r.URL.Query().Get("actor"), subject, window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleActivities(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.audit.QueryActivities(r.Context(), audit.ActivityFilter{
		Actor: r.URL.Query().Get("actor"),
		Kind:  r.URL.Query().Get("kind"),
		From:  window.From,
		To:    window.To,
		Limit: parseLimit(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toActivityResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": responses})
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	filter := audit.AlertFilter{
		Level: audit.AlertLevel(r.URL.Query().Get("level")),
		Limit: parseLimit(r),
	}
	if raw := r.URL.Query().Get("resolved"); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, errors.NewValidationError("INVALID_RESOLVED", "resolved must be true or false"))
			return
		}
		filter.Resolved = &resolved
	}

	alerts, err := h.audit.QueryAlerts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, toAlertResponse(alert))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": responses})
}

func (h *Handler) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.NewValidationError("INVALID_ID", "alert id must be a UUID"))
		return
	}

	var req ResolveAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, errors.NewValidationError("INVALID_REQUEST", err.Error()))
		return
	}

	alert, err := h.audit.ResolveAlert(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := audit.NewActivityEntry(req.Actor, audit.ActivityAlertResolved,
		fmt.Sprintf("resolved %s alert %s", alert.Level, alert.ID))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.audit.RecordActivity(r.Context(), entry); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseWindow(r *http.Request) (analysis.TimeWindow, error) {
	var window analysis.TimeWindow
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return window, errors.NewValidationError("INVALID_FROM", "from must be RFC 3339")
		}
		window.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return window, errors.NewValidationError("INVALID_TO", "to must be RFC 3339")
		}
		window.To = to
	}
	return window, nil
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.GetStatusCode(err)
	detail := ErrorDetail{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		detail.Code = appErr.Code
		detail.Message = appErr.Message
	}
	writeJSON(w, status, ErrorResponse{Error: detail})
}
