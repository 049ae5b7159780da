package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/recommend", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/recommend", "400"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recommend", http.NoBody))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/recommend", "400"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}

	// implicit 200 from a bare Write
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/", "200")); got < 1 {
		t.Errorf("GET / 200 count = %v", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("in-flight = %v after requests finished", got)
	}
}

func TestRouteLabel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", http.NoBody)
	if got := routeLabel(req); got != "unknown" {
		t.Errorf("routeLabel without chi context = %q", got)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()
	RegisterServiceMetrics()
	RegisterServiceMetrics()

	IngestRecordsTotal.WithLabelValues("success").Inc()
	if got := testutil.ToFloat64(IngestRecordsTotal.WithLabelValues("success")); got < 1 {
		t.Errorf("ingest counter = %v", got)
	}
}
