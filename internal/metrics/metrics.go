package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netinv_http_requests_total",
			Help: "Total number of HTTP requests served by the console",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netinv_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netinv_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"service", "method", "endpoint"},
	)

	HTTPRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netinv_http_rate_limited_total",
			Help: "Requests rejected by the console rate limiter",
		},
		[]string{"service"},
	)

	// Inventory API metrics
	InventoryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netinv_inventory_requests_total",
			Help: "Requests sent to the inventory API",
		},
		[]string{"resource", "outcome"},
	)

	InventoryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netinv_inventory_request_duration_seconds",
			Help:    "Inventory API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// Health metrics
	HealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netinv_health_checks_total",
			Help: "Readiness checks run, by check and status",
		},
		[]string{"check", "status"},
	)

	HealthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netinv_health_check_duration_seconds",
			Help:    "Readiness check duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"check"},
	)

	// Dashboard metrics
	DashboardLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netinv_dashboard_loads_total",
			Help: "Dashboard load cycles by result (ok, error, stale)",
		},
		[]string{"result"},
	)

	DashboardLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netinv_dashboard_load_duration_seconds",
			Help:    "Time from fetch start to aggregated snapshot",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DashboardDevicesAggregated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netinv_dashboard_devices_aggregated",
			Help: "Devices walked by the most recent aggregation",
		},
	)

	DashboardLiveCharts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netinv_dashboard_live_charts",
			Help: "Chart handles currently held across all chart managers",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(service, method, endpoint, status string, duration float64, respSize float64) {
	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration)
	if respSize > 0 {
		HTTPResponseSize.WithLabelValues(service, method, endpoint).Observe(respSize)
	}
}

// RecordInventoryRequest records one call to the inventory API
func RecordInventoryRequest(resource, outcome string, duration float64) {
	InventoryRequestsTotal.WithLabelValues(resource, outcome).Inc()
	InventoryRequestDuration.WithLabelValues(resource).Observe(duration)
}

// RecordDashboardLoad records the outcome of one dashboard load cycle
func RecordDashboardLoad(result string, duration float64) {
	DashboardLoadsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		DashboardLoadDuration.Observe(duration)
	}
}

// RecordHealthCheck records one readiness check run
func RecordHealthCheck(check, status string, duration float64) {
	HealthChecksTotal.WithLabelValues(check, status).Inc()
	HealthCheckDuration.WithLabelValues(check).Observe(duration)
}
