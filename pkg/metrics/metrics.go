// Package metrics holds the Prometheus collectors shared by the renderer, the
// asset pipeline and the HTTP server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pageRenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitetheme_page_render_duration_seconds",
			Help:    "Duration of page renders by template and renderer.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"template", "renderer"},
	)

	bundleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitetheme_asset_bundle_total",
			Help: "Asset bundle cache events by kind (css, js) and result (hit, write).",
		},
		[]string{"kind", "result"},
	)

	bundlesSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitetheme_asset_bundles_swept_total",
			Help: "Stale asset bundles removed from the cache directory.",
		},
	)

	scssCompiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitetheme_scss_compile_total",
			Help: "SCSS compilations by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitetheme_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and method.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(pageRenderDuration, bundleEvents, bundlesSwept, scssCompiles, httpRequests)
}

// ObservePageRender records a completed page render.
func ObservePageRender(template, renderer string, d time.Duration) {
	pageRenderDuration.WithLabelValues(template, renderer).Observe(d.Seconds())
}

// BundleHit counts a bundle served from the cache without rewriting.
func BundleHit(kind string) {
	bundleEvents.WithLabelValues(kind, "hit").Inc()
}

// BundleWrite counts a bundle (re)written to the cache.
func BundleWrite(kind string) {
	bundleEvents.WithLabelValues(kind, "write").Inc()
}

// BundlesSwept adds n removed bundles.
func BundlesSwept(n int) {
	if n > 0 {
		bundlesSwept.Add(float64(n))
	}
}

// SCSSCompiled counts a compilation; outcome is "ok", "error" or "skipped".
func SCSSCompiled(outcome string) {
	scssCompiles.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records a served request.
func ObserveHTTP(route, method, status string, d time.Duration) {
	httpRequests.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
