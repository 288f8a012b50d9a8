package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBundleCounters(t *testing.T) {
	before := testutil.ToFloat64(bundleEvents.WithLabelValues("css", "write"))
	BundleWrite("css")
	BundleWrite("css")
	if got := testutil.ToFloat64(bundleEvents.WithLabelValues("css", "write")); got != before+2 {
		t.Fatalf("expected %v writes, got %v", before+2, got)
	}

	swept := testutil.ToFloat64(bundlesSwept)
	BundlesSwept(0)
	BundlesSwept(3)
	if got := testutil.ToFloat64(bundlesSwept); got != swept+3 {
		t.Fatalf("expected %v swept, got %v", swept+3, got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObservePageRender("shaper", "bootstrap", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sitetheme_page_render_duration_seconds") {
		t.Fatalf("render histogram missing from exposition")
	}
}
