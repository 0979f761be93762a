package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/Harshitk-cp/medvalidate/internal/api/middleware"
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"go.uber.org/zap"
)

const (
	maxRequestBytes = 1 << 20
	maxSymptoms     = 64
)

type ValidationHandler struct {
	validator *service.Validator
	audit     *service.AuditService
	recent    int
	logger    *zap.Logger
}

func NewValidationHandler(v *service.Validator, audit *service.AuditService, recent int, logger *zap.Logger) *ValidationHandler {
	return &ValidationHandler{validator: v, audit: audit, recent: recent, logger: logger}
}

type predictionRequest struct {
	Diagnosis        string   `json:"diagnosis"`
	Severity         string   `json:"severity"`
	Symptoms         []string `json:"symptoms"`
	Duration         string   `json:"duration"`
	ReportedSeverity string   `json:"reported_severity"`
}

func decodePrediction(w http.ResponseWriter, r *http.Request) (domain.Prediction, bool) {
	var req predictionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return domain.Prediction{}, false
	}
	if len(req.Symptoms) > maxSymptoms {
		writeError(w, http.StatusBadRequest, "too many symptoms")
		return domain.Prediction{}, false
	}
	return domain.Prediction{
		Diagnosis:        req.Diagnosis,
		Severity:         req.Severity,
		Symptoms:         req.Symptoms,
		Duration:         req.Duration,
		ReportedSeverity: req.ReportedSeverity,
	}, true
}

func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePrediction(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.validator.Validate(p))
}

func (h *ValidationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePrediction(w, r)
	if !ok {
		return
	}
	res := h.audit.Resolve(r.Context(), p, middleware.RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, res)
}

// Report returns the session report as JSON, or as text tables with
// ?format=text.
func (h *ValidationHandler) Report(w http.ResponseWriter, r *http.Request) {
	recent, ok := queryInt(r, "recent", h.recent)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid recent")
		return
	}
	report := h.validator.Report(recent)

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, report)
	case "text":
		var buf bytes.Buffer
		if err := report.WriteText(&buf); err != nil {
			h.logger.Error("failed to render report", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			h.logger.Warn("failed to write report", zap.Error(err))
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be json or text")
	}
}
