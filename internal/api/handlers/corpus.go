package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/medvalidate/internal/corpus"
)

type CorpusHandler struct {
	overview corpus.Overview
}

// NewCorpusHandler serves an overview computed once at startup; the corpus
// does not change while the process runs.
func NewCorpusHandler(overview corpus.Overview) *CorpusHandler {
	return &CorpusHandler{overview: overview}
}

func (h *CorpusHandler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.overview)
}
