package handlers

import (
	"errors"
	"net/http"

	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/Harshitk-cp/medvalidate/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const defaultCorrectionLimit = 20

type CorrectionHandler struct {
	audit *service.AuditService
}

func NewCorrectionHandler(audit *service.AuditService) *CorrectionHandler {
	return &CorrectionHandler{audit: audit}
}

func (h *CorrectionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultCorrectionLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	records, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list corrections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"corrections": records,
		"persisted":   h.audit.Enabled(),
	})
}

func (h *CorrectionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid correction id")
		return
	}

	rec, err := h.audit.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrAuditDisabled):
			writeError(w, http.StatusNotFound, "correction not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get correction")
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *CorrectionHandler) RuleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.audit.RuleCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count corrections")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
