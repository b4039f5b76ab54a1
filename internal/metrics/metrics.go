package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation outcomes
const (
	OutcomeFound        = "found"
	OutcomeEmpty        = "empty"
	OutcomeCropNotFound = "crop_not_found"
	OutcomeInvalid      = "invalid"
)

// Metrics holds the service collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	Recommendations     *prometheus.CounterVec
	RecommendationSize  prometheus.Histogram
	DatasetRows         *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry, along with the Go
// runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "byproduct_http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "byproduct_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "byproduct_recommendations_total",
				Help: "Recommendation requests by outcome",
			},
			[]string{"outcome"},
		),
		RecommendationSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "byproduct_recommendation_results",
				Help:    "Number of companies returned per successful request",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
		),
		DatasetRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "byproduct_dataset_rows",
				Help: "Rows loaded per dataset table",
			},
			[]string{"table"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRecommendation counts one outcome; size is recorded for found results
func (m *Metrics) ObserveRecommendation(outcome string, size int) {
	m.Recommendations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFound {
		m.RecommendationSize.Observe(float64(size))
	}
}

// SetDatasetRows publishes table sizes after load
func (m *Metrics) SetDatasetRows(byproducts, companies int) {
	m.DatasetRows.WithLabelValues("byproducts").Set(float64(byproducts))
	m.DatasetRows.WithLabelValues("companies").Set(float64(companies))
}
