package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the gateway.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	emailJobs       *prometheus.CounterVec
	uploadBytes     prometheus.Counter
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

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "In-app notifications fanned out, by context type",
	}, []string{"context"})

	emailJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_jobs_total",
		Help: "Email dispatch jobs, by outcome",
	}, []string{"outcome"})

	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "evidence_upload_bytes_total",
		Help: "Bytes accepted into evidence file storage",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, notifications, emailJobs, uploadBytes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		notifications:   notifications,
		emailJobs:       emailJobs,
		uploadBytes:     uploadBytes,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordNotification counts one notification fan-out.
func (m *MetricsService) RecordNotification(contextType string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(contextType).Inc()
}

// RecordEmailJob counts one email job by outcome ("sent", "failed", "skipped").
func (m *MetricsService) RecordEmailJob(outcome string) {
	if m == nil {
		return
	}
	m.emailJobs.WithLabelValues(outcome).Inc()
}

// RecordUploadBytes tracks accepted evidence upload volume.
func (m *MetricsService) RecordUploadBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadBytes.Add(float64(n))
}
