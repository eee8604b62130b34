package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the directory
// core.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	moderationTotal  *prometheus.CounterVec
	degradedListings prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	moderationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_decisions_total",
		Help: "Moderation decisions by outcome",
	}, []string{"outcome"})

	degradedListings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "degraded_listings_total",
		Help: "Listings served without amenity enrichment",
	})

	registry.MustRegister(requestDuration, requestTotal, moderationTotal, degradedListings)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		moderationTotal:  moderationTotal,
		degradedListings: degradedListings,
	}
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveModerationDecision counts one approve/reject outcome.
func (m *MetricsService) ObserveModerationDecision(outcome string) {
	m.moderationTotal.WithLabelValues(outcome).Inc()
}

// ObserveDegradedListing counts a listing served without amenities.
func (m *MetricsService) ObserveDegradedListing() {
	m.degradedListings.Inc()
}

// Handler exposes the metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}
