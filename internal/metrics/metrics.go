// Package metrics exports validator and HTTP activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medvalidate"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Validation metrics
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Predictions scored against the corpus, by match type",
		},
		[]string{"match_type"},
	)

	validationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_confidence",
			Help:      "Aggregated validation confidence",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Safety gate decisions, by deciding rule",
		},
		[]string{"rule", "corrected"},
	)

	opinionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_opinions_total",
			Help:      "Secondary opinion calls, by outcome",
		},
		[]string{"outcome"},
	)

	corpusRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_records",
			Help:      "Records loaded per dataset",
		},
		[]string{"dataset"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Recorder implements service.Observer on top of the package collectors.
type Recorder struct{}

func NewRecorder() Recorder { return Recorder{} }

func (Recorder) ObserveValidation(match domain.MatchType, confidence float64) {
	validationsTotal.WithLabelValues(string(match)).Inc()
	validationConfidence.Observe(confidence)
}

func (Recorder) ObserveDecision(rule domain.RuleID, corrected bool) {
	decisionsTotal.WithLabelValues(string(rule), strconv.FormatBool(corrected)).Inc()
}

func (Recorder) ObserveOpinion(outcome string) {
	opinionsTotal.WithLabelValues(outcome).Inc()
}

// RecordCorpus publishes the dataset sizes.
func RecordCorpus(counts map[domain.DatasetKind]int) {
	for kind, n := range counts {
		corpusRecords.WithLabelValues(string(kind)).Set(float64(n))
	}
}

// RequestStarted increments the in-flight gauge and returns the function
// that records the finished request. The route is passed at the end because
// it is only known once the router has matched the request.
func RequestStarted(method string) func(route string, status int) {
	start := time.Now()
	httpRequestsInFlight.Inc()
	return func(route string, status int) {
		httpRequestsInFlight.Dec()
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
