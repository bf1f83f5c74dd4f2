package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	applogger "aiwealth/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status", "class"},
	)
	reqInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
		[]string{"route", "method"},
	)
	respSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000},
		},
		[]string{"route", "method", "status", "class"},
	)

	metricsRegOnce sync.Once
)

// Metrics instruments a net/http handler with request counters, latency and
// size histograms. Route labels come from the URL path, so only mount this on
// fixed routes to keep cardinality bounded. 5xx responses and requests slower
// than slowThreshold are also logged.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) func(http.Handler) http.Handler {
	metricsRegOnce.Do(func() {
		prometheus.MustRegister(reqTotal, reqDuration, reqInFlight, respSize)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(r)
			method := r.Method

			reqInFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			elapsed := time.Since(start)
			status := strconv.Itoa(rw.status)
			class := statusClass(rw.status)

			reqTotal.WithLabelValues(route, method, status).Inc()
			reqDuration.WithLabelValues(route, method, status, class).Observe(elapsed.Seconds())
			respSize.WithLabelValues(route, method, status, class).Observe(float64(rw.written))
			reqInFlight.WithLabelValues(route, method).Dec()

			logRequest(l, rw, route, method, status, elapsed, slowThreshold)
		})
	}
}

func logRequest(l *applogger.Logger, rw *statusRecorder, route, method, status string, elapsed, slowThreshold time.Duration) {
	if l == nil {
		return
	}
	fields := []applogger.Field{
		applogger.String("route", route),
		applogger.String("method", method),
		applogger.String("status", status),
		applogger.Duration("duration_ms", elapsed),
		applogger.Int("bytes", rw.written),
	}
	switch {
	case rw.status >= 500:
		l.Error("http request failed", fields...)
	case slowThreshold > 0 && elapsed >= slowThreshold:
		l.Warn("http request slow", fields...)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// routeLabel prefers a route template placed in the request context by the
// mux, falling back to the raw path.
func routeLabel(r *http.Request) string {
	if s, ok := r.Context().Value("route").(string); ok && s != "" {
		return s
	}
	return r.URL.Path
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
