package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	sessionsvc "github.com/shopfolio/storefront/internal/session"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
	"github.com/shopfolio/storefront/pkg/metrics"
	"github.com/shopfolio/storefront/pkg/types"
)

type stubSessionService struct {
	createInput sessionsvc.CreateInput
	created     *sessionsvc.Created
	createErr   error
	statusID    string
	status      *sessionsvc.Status
	statusErr   error
}

func (s *stubSessionService) Create(_ context.Context, input sessionsvc.CreateInput) (*sessionsvc.Created, error) {
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.created, nil
}

func (s *stubSessionService) Status(_ context.Context, id string) (*sessionsvc.Status, error) {
	s.statusID = id
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.status, nil
}

func newTestMetrics() *metrics.SessionBackendMetrics {
	return metrics.NewSessionBackendMetrics(prometheus.NewRegistry())
}

func TestCreateCheckoutSessionReturnsBareWireShape(t *testing.T) {
	t.Parallel()

	svc := &stubSessionService{created: &sessionsvc.Created{SessionID: "cs_test_1", URL: "https://pay.example/1"}}
	handler := CreateCheckoutSession(svc, newTestMetrics(), nil)

	body := `{"items":[{"title":"Backpack","price":109.95,"quantity":2}],"successUrl":"https://app.example/success","cancelUrl":"https://app.example/cancel"}`
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(body)))

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", got, w.Body.String())
	}

	var resp struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "cs_test_1" || resp.URL != "https://pay.example/1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(svc.createInput.Items) != 1 || svc.createInput.Items[0].Quantity != 2 {
		t.Fatalf("unexpected input passed to service: %+v", svc.createInput)
	}
}

func TestCreateCheckoutSessionRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	handler := CreateCheckoutSession(&stubSessionService{}, newTestMetrics(), nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{"items":[]}`)))

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}

	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %s", envelope.Error.Code)
	}
}

func TestCreateCheckoutSessionMapsProviderFailure(t *testing.T) {
	t.Parallel()

	svc := &stubSessionService{createErr: pkgerrors.New(pkgerrors.CodeDependency, "stripe unavailable")}
	handler := CreateCheckoutSession(svc, newTestMetrics(), nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/create-checkout-session",
		strings.NewReader(`{"items":[{"title":"x","price":1,"quantity":1}]}`)))

	if got := w.Code; got != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", got)
	}
}

func TestSessionStatusReturnsPaymentState(t *testing.T) {
	t.Parallel()

	svc := &stubSessionService{status: &sessionsvc.Status{PaymentStatus: "paid", CustomerEmail: "jo@example.com"}}

	r := chi.NewRouter()
	r.Get("/session-status/{sessionID}", SessionStatus(svc, newTestMetrics(), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session-status/cs_test_9", nil))

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, w.Body.String())
	}
	if svc.statusID != "cs_test_9" {
		t.Fatalf("expected path param forwarded, got %q", svc.statusID)
	}

	var resp struct {
		Status        string `json:"status"`
		CustomerEmail string `json:"customerEmail"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "paid" || resp.CustomerEmail != "jo@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSessionStatusMapsLookupFailure(t *testing.T) {
	t.Parallel()

	svc := &stubSessionService{statusErr: pkgerrors.New(pkgerrors.CodeDependency, "retrieve failed")}

	r := chi.NewRouter()
	r.Get("/session-status/{sessionID}", SessionStatus(svc, newTestMetrics(), nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session-status/cs_gone", nil))

	if got := w.Code; got != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", got)
	}
}

func TestCheckoutPagesRenderHTML(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	CheckoutSuccess(nil)(w, httptest.NewRequest(http.MethodGet, "/success?session_id=cs_test_1", nil))
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("expected html content type, got %q", got)
	}
	if !strings.Contains(w.Body.String(), "cs_test_1") {
		t.Fatalf("expected session reference on success page")
	}

	w = httptest.NewRecorder()
	CheckoutCancel(nil)(w, httptest.NewRequest(http.MethodGet, "/cancel", nil))
	if !strings.Contains(w.Body.String(), "No charge was made") {
		t.Fatalf("unexpected cancel page body: %s", w.Body.String())
	}
}
