package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	before := testutil.ToFloat64(decisionsTotal.WithLabelValues(string(domain.RuleSeverityFloor), "true"))
	r.ObserveDecision(domain.RuleSeverityFloor, true)
	r.ObserveDecision(domain.RuleSeverityFloor, true)
	assert.Equal(t, before+2, testutil.ToFloat64(decisionsTotal.WithLabelValues(string(domain.RuleSeverityFloor), "true")))

	before = testutil.ToFloat64(validationsTotal.WithLabelValues(string(domain.MatchWeak)))
	r.ObserveValidation(domain.MatchWeak, 0.55)
	assert.Equal(t, before+1, testutil.ToFloat64(validationsTotal.WithLabelValues(string(domain.MatchWeak))))

	before = testutil.ToFloat64(opinionsTotal.WithLabelValues("timeout"))
	r.ObserveOpinion("timeout")
	assert.Equal(t, before+1, testutil.ToFloat64(opinionsTotal.WithLabelValues("timeout")))
}

func TestRecordCorpus(t *testing.T) {
	RecordCorpus(map[domain.DatasetKind]int{domain.DatasetTraining: 120, domain.DatasetTest: 30})
	assert.Equal(t, 120.0, testutil.ToFloat64(corpusRecords.WithLabelValues("training")))
	assert.Equal(t, 30.0, testutil.ToFloat64(corpusRecords.WithLabelValues("test")))
}

func TestRequestStarted(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/resolve", "200"))

	done := RequestStarted("POST")
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsInFlight))
	done("/v1/resolve", http.StatusOK)

	assert.Equal(t, 0.0, testutil.ToFloat64(httpRequestsInFlight))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/resolve", "200")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	NewRecorder().ObserveOpinion("agree")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "medvalidate_secondary_opinions_total")
}
