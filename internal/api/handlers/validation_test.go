package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/medvalidate/internal/corpus"
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errClientGone = errors.New("client gone")

// failingWriter accepts headers but fails every body write.
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (w failingWriter) Write([]byte) (int, error) { return 0, errClientGone }

func newReportHandler(logger *zap.Logger) *ValidationHandler {
	v := service.NewValidator(corpus.Build([]domain.TrainingRecord{
		{Diagnosis: "Influenza", Severity: domain.SeverityModerate, Symptoms: []string{"fever", "cough"}},
	}), zap.NewNop())
	return NewValidationHandler(v, nil, service.DefaultRecentCorrections, logger)
}

func TestReport_TextFormat(t *testing.T) {
	h := newReportHandler(zap.NewNop())

	rec := httptest.NewRecorder()
	h.Report(rec, httptest.NewRequest(http.MethodGet, "/v1/report?format=text", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Validation statistics")
}

func TestReport_TextWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := newReportHandler(zap.New(core))

	w := failingWriter{httptest.NewRecorder()}
	h.Report(w, httptest.NewRequest(http.MethodGet, "/v1/report?format=text", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("failed to write report").All()
	require.Len(t, entries, 1)
	assert.Equal(t, errClientGone.Error(), entries[0].ContextMap()["error"])
}
