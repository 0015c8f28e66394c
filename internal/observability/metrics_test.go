package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRec, metricsReq)

	body := metricsRec.Body.String()
	if !strings.Contains(body, "vantage_http_requests_total") {
		t.Fatalf("expected request counter in metrics output:\n%s", body)
	}
	if !strings.Contains(body, `code="418"`) {
		t.Fatalf("expected status label 418 in metrics output:\n%s", body)
	}
}

func TestRecordDecision(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordDecision(false, "insufficient_role")
	metrics.RecordDecision(true, "ignored")

	metricsRec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := metricsRec.Body.String()
	if !strings.Contains(body, `outcome="denied",reason="insufficient_role"`) {
		t.Fatalf("expected denied decision in metrics output:\n%s", body)
	}
	if !strings.Contains(body, `outcome="allowed",reason=""`) {
		t.Fatalf("expected allowed decision with empty reason:\n%s", body)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	metrics.RecordDecision(false, "not_authenticated")

	unavailable := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(unavailable, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if unavailable.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics handler, got %d", unavailable.Code)
	}
}
