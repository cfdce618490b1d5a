package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "waterrights"

// Requests outside any chi route share this label.
const unmatchedRoute = "unmatched"

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time to serve a request, by route pattern and status class",
			// Searches answer in milliseconds; archive downloads can run for minutes.
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 30, 120, 300},
		},
		[]string{"method", "route", "code"},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by route pattern and status class",
		},
		[]string{"method", "route", "code"},
	)

	responseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_bytes",
			Help:      "Response body size, by route pattern",
			Buckets:   prometheus.ExponentialBuckets(256, 8, 8),
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(requestDuration, requestsTotal, responseBytes)
}

// Middleware counts and times requests under their chi route pattern, so
// /WaterRights/{waterRightId} is one series however many rights are
// looked up. The observation is deferred so that a download aborted with
// http.ErrAbortHandler is still counted.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := routeLabel(r)
				code := statusClass(ww.Status())
				requestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
				requestsTotal.WithLabelValues(r.Method, route, code).Inc()
				responseBytes.WithLabelValues(route).Observe(float64(ww.BytesWritten()))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return unmatchedRoute
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// statusClass folds a status code into "2xx", "4xx" and so on. A handler
// that never wrote a header answered 200.
func statusClass(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status/100) + "xx"
}
