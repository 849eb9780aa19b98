package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TotalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ActiveRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	ReadingsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sensor_readings_recorded_total",
			Help: "Total number of readings appended to the rolling buffer",
		},
	)

	GenerateErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sensor_generate_errors_total",
			Help: "Total number of ticks where the generator produced no reading",
		},
	)

	BufferLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensor_buffer_length",
			Help: "Number of readings currently held in the rolling buffer",
		},
	)

	LatestValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_latest_value",
			Help: "Most recent value per field",
		},
		[]string{"field"},
	)

	TrendSlope = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_trend_slope",
			Help: "Least-squares slope per sample over the buffered readings",
		},
		[]string{"field"},
	)

	TrendUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_trend_unavailable_total",
			Help: "Ticks where too few points existed to fit a trend",
		},
		[]string{"field"},
	)

	SinkErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_sink_errors_total",
			Help: "Failed writes to auxiliary reading stores",
		},
		[]string{"sink"},
	)

	LiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensor_live_clients",
			Help: "Connected websocket dashboards",
		},
	)
)

func init() {
	prometheus.MustRegister(TotalRequests)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActiveRequests)
	prometheus.MustRegister(ReadingsRecorded)
	prometheus.MustRegister(GenerateErrors)
	prometheus.MustRegister(BufferLength)
	prometheus.MustRegister(LatestValue)
	prometheus.MustRegister(TrendSlope)
	prometheus.MustRegister(TrendUnavailable)
	prometheus.MustRegister(SinkErrors)
	prometheus.MustRegister(LiveClients)
}

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := routeTemplate(r)

		ActiveRequests.WithLabelValues(r.Method, endpoint).Inc()

		rw := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(rw, r)

		ActiveRequests.WithLabelValues(r.Method, endpoint).Dec()

		duration := time.Since(start).Seconds()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration)
		TotalRequests.WithLabelValues(r.Method, endpoint, http.StatusText(rw.status)).Inc()
	})
}

// routeTemplate keeps label cardinality bounded for paths like /api/trend/{field}.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade pass through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// ObserveTick updates the buffer gauges after a reading is recorded.
func ObserveTick(length int, values map[string]float64) {
	ReadingsRecorded.Inc()
	BufferLength.Set(float64(length))
	for field, v := range values {
		LatestValue.WithLabelValues(field).Set(v)
	}
}

// ObserveTrend records either the fitted slope or a warm-up miss.
func ObserveTrend(field string, available bool, slope float64) {
	if available {
		TrendSlope.WithLabelValues(field).Set(slope)
		return
	}
	TrendUnavailable.WithLabelValues(field).Inc()
}

func IncrementGenerateErrors() {
	GenerateErrors.Inc()
}

func IncrementSinkErrors(sink string) {
	SinkErrors.WithLabelValues(sink).Inc()
}
