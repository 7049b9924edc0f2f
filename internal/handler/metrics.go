package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsRegistry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	}, []string{"method", "path"})
)

func init() {
	metricsRegistry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// HandleMetrics exposes the registered Prometheus collectors.
func HandleMetrics() http.Handler {
	return promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts, durations and in-flight requests.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := metricPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// metricRoutes lists the single-segment routes that get their own label.
var metricRoutes = map[string]bool{
	"healthz":        true,
	"upload":         true,
	"addproduct":     true,
	"removeproduct":  true,
	"allproducts":    true,
	"newcollections": true,
	"popularinwomen": true,
	"signup":         true,
	"login":          true,
	"addtocart":      true,
	"getcart":        true,
}

// metricPath maps a request path onto a fixed set of labels. Paths that match
// no route share the "other" label so unrouted traffic cannot grow the
// series count.
func metricPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	segments := strings.Split(trimmed, "/")
	switch {
	case len(segments) == 1 && metricRoutes[segments[0]]:
		return "/" + segments[0]
	case len(segments) == 2 && segments[0] == "images":
		return "/images/:key"
	case len(segments) == 2 && segments[0] == "popular":
		return "/popular/:category"
	}
	return "other"
}
