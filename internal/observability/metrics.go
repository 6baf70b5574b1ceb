package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Metrics holds the Prometheus instruments for the site.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	NavigationsTotal   *prometheus.CounterVec
	ContactStatusTotal *prometheus.CounterVec
	FavoriteToggles    *prometheus.CounterVec
	SessionsLive       prometheus.Gauge

	gatherer prometheus.Gatherer
}

// InitMetrics creates and registers every instrument on reg. When reg is also
// a Gatherer, Handler serves it; otherwise the default gatherer is used.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fireworks_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fireworks_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		NavigationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fireworks_navigations_total",
			Help: "Navigation state changes by source and destination page.",
		}, []string{"source", "page"}),
		ContactStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fireworks_contact_transitions_total",
			Help: "Contact form lifecycle transitions by resulting status.",
		}, []string{"status"}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fireworks_favorite_toggles_total",
			Help: "Favorite toggles by resulting membership.",
		}, []string{"result"}),
		SessionsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fireworks_sessions_live",
			Help: "Visitor sessions held in memory.",
		}),
		gatherer: prometheus.DefaultGatherer,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.NavigationsTotal,
		m.ContactStatusTotal,
		m.FavoriteToggles,
		m.SessionsLive,
	)
	return m
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// Navigation counts a navigation state change.
func (m *Metrics) Navigation(source, page string) {
	m.NavigationsTotal.WithLabelValues(source, page).Inc()
}

// ContactStatus counts a contact form transition.
func (m *Metrics) ContactStatus(status string) {
	m.ContactStatusTotal.WithLabelValues(status).Inc()
}

// FavoriteToggled counts a favorite toggle.
func (m *Metrics) FavoriteToggled(added bool) {
	result := "removed"
	if added {
		result = "added"
	}
	m.FavoriteToggles.WithLabelValues(result).Inc()
}

// Sessions sets the live session gauge.
func (m *Metrics) Sessions(n int) {
	m.SessionsLive.Set(float64(n))
}

// MetricsMiddleware records request metrics using chi's route pattern.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newResponseRecorder(w)
		next.ServeHTTP(rec, r)
		m.RecordHTTPRequest(r.Method, routePattern(r), rec.Status(), time.Since(start))
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
