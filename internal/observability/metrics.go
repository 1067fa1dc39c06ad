package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API and worker flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	submissionsTotal      prometheus.Counter
	stageTransitionsTotal *prometheus.CounterVec
	transitionsRejected   *prometheus.CounterVec
	emailsSentTotal       prometheus.Counter
	emailsFailedTotal     *prometheus.CounterVec
	emailSendDuration     prometheus.Histogram
	workerInflight        prometheus.Gauge
	emailRetryScheduled   prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hiretrack",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		submissionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "applications_submitted_total",
				Help:      "Total number of applications created.",
			},
		),
		stageTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "stage_transitions_total",
				Help:      "Total number of committed stage transitions by from/to stage.",
			},
			[]string{"from", "to"},
		),
		transitionsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "stage_transitions_rejected_total",
				Help:      "Total number of stage transitions rejected by the pipeline rules.",
			},
			[]string{"from", "to"},
		),
		emailsSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "emails_sent_total",
				Help:      "Total number of emails delivered successfully.",
			},
		),
		emailsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "emails_failed_total",
				Help:      "Total number of email tasks that ended in failed state.",
			},
			[]string{"reason"},
		),
		emailSendDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "hiretrack",
				Name:      "email_send_duration_seconds",
				Help:      "Mail gateway send duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		workerInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hiretrack",
				Name:      "email_worker_inflight",
				Help:      "Number of email deliveries currently in flight.",
			},
		),
		emailRetryScheduled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hiretrack",
				Name:      "email_retries_scheduled_total",
				Help:      "Total number of email delivery retries scheduled.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.submissionsTotal,
		m.stageTransitionsTotal,
		m.transitionsRejected,
		m.emailsSentTotal,
		m.emailsFailedTotal,
		m.emailSendDuration,
		m.workerInflight,
		m.emailRetryScheduled,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncSubmission() {
	if m == nil {
		return
	}
	m.submissionsTotal.Inc()
}

func (m *Metrics) IncStageTransition(from, to string) {
	if m == nil {
		return
	}
	m.stageTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncTransitionRejected(from, to string) {
	if m == nil {
		return
	}
	m.transitionsRejected.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncEmailSent() {
	if m == nil {
		return
	}
	m.emailsSentTotal.Inc()
}

func (m *Metrics) IncEmailFailed(reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.emailsFailedTotal.WithLabelValues(reasonLabel).Inc()
}

func (m *Metrics) ObserveEmailSendDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.emailSendDuration.Observe(seconds)
}

func (m *Metrics) IncWorkerInFlight() {
	if m == nil {
		return
	}
	m.workerInflight.Inc()
}

func (m *Metrics) DecWorkerInFlight() {
	if m == nil {
		return
	}
	m.workerInflight.Dec()
}

func (m *Metrics) IncRetryScheduled() {
	if m == nil {
		return
	}
	m.emailRetryScheduled.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
