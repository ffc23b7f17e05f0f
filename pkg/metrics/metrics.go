package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	Conversions           *prometheus.CounterVec
	StatusChanges         *prometheus.CounterVec
	NotificationsSent     *prometheus.CounterVec
	CalendarSyncFailures  prometheus.Counter
	OverdueInvoicesMarked prometheus.Counter
	LoginAttempts         *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		Conversions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_conversions_total",
				Help: "Entity conversions performed",
			},
			[]string{"kind"}, // lead_to_client, quote_to_job, quote_to_invoice
		),
		StatusChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_status_changes_total",
				Help: "Status changes applied per entity",
			},
			[]string{"entity"},
		),
		NotificationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_notifications_sent_total",
				Help: "Outbound notifications by channel and outcome",
			},
			[]string{"channel", "entity", "status"}, // email|sms, invoice|quote, success|failed
		),
		CalendarSyncFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "crm_calendar_sync_failures_total",
			Help: "Calendar event creations that failed and were skipped",
		}),
		OverdueInvoicesMarked: f.NewCounter(prometheus.CounterOpts{
			Name: "crm_overdue_invoices_marked_total",
			Help: "Invoices flipped to overdue by the nightly sweep",
		}),
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),

		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),

		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, e.g. /api/v1/leads/:id

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordConversion increments the conversion counter
func (m *Metrics) RecordConversion(kind string) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(kind).Inc()
}

// RecordStatusChange increments the status change counter
func (m *Metrics) RecordStatusChange(entity string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(entity).Inc()
}

// RecordNotification counts an email or SMS send attempt
func (m *Metrics) RecordNotification(channel, entity string, success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "success"
	}
	m.NotificationsSent.WithLabelValues(channel, entity, status).Inc()
}

// RecordCalendarFailure counts a swallowed calendar error
func (m *Metrics) RecordCalendarFailure() {
	if m == nil {
		return
	}
	m.CalendarSyncFailures.Inc()
}

// RecordOverdueMarked adds to the overdue sweep counter
func (m *Metrics) RecordOverdueMarked(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.OverdueInvoicesMarked.Add(float64(n))
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// UpdateDBConnections updates active database connections gauge
func (m *Metrics) UpdateDBConnections(count float64) {
	if m == nil {
		return
	}
	m.DBConnections.Set(count)
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
