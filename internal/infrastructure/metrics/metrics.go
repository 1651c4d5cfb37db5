package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route"},
	)
	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edge_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	RequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_http_errors_total",
			Help: "Total number of HTTP responses with status >= 400.",
		},
		[]string{"method", "route", "status"},
	)

	// Upstream query service
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_upstream_requests_total",
			Help: "Calls to the query service by result",
		},
		[]string{"result"}, // result: ok|http_error|unavailable|invalid_body|body_too_large
	)
	UpstreamDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edge_upstream_duration_seconds",
			Help:    "Duration of query service calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 11), // 50ms..51s
		},
	)

	// Static site
	StaticResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_static_resolutions_total",
			Help: "Static file resolutions by the step that matched",
		},
		[]string{"source"}, // source: direct|html|index|not_found
	)

	// Errors
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		// HTTP
		RequestsTotal,
		RequestDurationSeconds,
		RequestErrors,
		// Upstream
		UpstreamRequests,
		UpstreamDurationSeconds,
		// Static
		StaticResolutions,
		// Errors
		Errors,
	)
}

// NewMetricsServer returns a server exposing the default registry on addr.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// HTTP
func ObserveRequest(method, route string, status int, d time.Duration) {
	statusLabel := strconv.Itoa(status)
	RequestsTotal.WithLabelValues(method, route).Inc()
	RequestDurationSeconds.WithLabelValues(method, route, statusLabel).Observe(d.Seconds())
	if status >= 400 {
		RequestErrors.WithLabelValues(method, route, statusLabel).Inc()
	}
}

// Upstream
func IncUpstreamRequest(result string) {
	UpstreamRequests.WithLabelValues(result).Inc()
}

func ObserveUpstreamDuration(d time.Duration) {
	UpstreamDurationSeconds.Observe(d.Seconds())
}

// Static
func IncStaticResolution(source string) {
	StaticResolutions.WithLabelValues(source).Inc()
}

// Errors
func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}
