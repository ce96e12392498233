package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopfolio/storefront/pkg/metrics"
)

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	t.Parallel()

	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Request-Id"); got == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestRequestIDEchoesIncoming(t *testing.T) {
	t.Parallel()

	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected incoming id echoed, got %q", got)
	}
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	t.Parallel()

	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", got)
	}
}

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	m := metrics.NewSessionBackendMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/session-status/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session-status/cs_test_1", nil))

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
}
