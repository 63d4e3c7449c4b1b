package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	buildsTotal   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	posProcessed  prometheus.Counter
	warningsTotal prometheus.Counter
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdjob",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmdjob",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cmdjob",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	buildsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdjob",
			Subsystem: "build",
			Name:      "builds_total",
			Help:      "Total job builds by final status.",
		},
		[]string{"service", "status"},
	)
	buildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmdjob",
			Subsystem: "build",
			Name:      "build_duration_seconds",
			Help:      "Job build duration in seconds by final status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	posProcessed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cmdjob",
			Subsystem: "build",
			Name:      "pos_processed_total",
			Help:      "Total PO source folders processed across builds.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	warningsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cmdjob",
			Subsystem: "build",
			Name:      "warnings_total",
			Help:      "Total extraction warnings accumulated across builds.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		buildsTotal,
		buildDuration,
		posProcessed,
		warningsTotal,
	)

	return &ServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		buildsTotal:     buildsTotal,
		buildDuration:   buildDuration,
		posProcessed:    posProcessed,
		warningsTotal:   warningsTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *ServerMetrics) RecordBuild(service, status string, duration time.Duration, pos, warnings int) {
	if status == "" {
		status = "unknown"
	}
	m.buildsTotal.WithLabelValues(service, status).Inc()
	m.buildDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if pos > 0 {
		m.posProcessed.Add(float64(pos))
	}
	if warnings > 0 {
		m.warningsTotal.Add(float64(warnings))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
