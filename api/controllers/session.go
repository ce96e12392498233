package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopfolio/storefront/api/responses"
	"github.com/shopfolio/storefront/api/validators"
	sessionsvc "github.com/shopfolio/storefront/internal/session"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
	"github.com/shopfolio/storefront/pkg/logger"
	"github.com/shopfolio/storefront/pkg/metrics"
)

type createSessionRequest struct {
	Items      []sessionItemRequest `json:"items" validate:"required,min=1,dive"`
	SuccessURL string               `json:"successUrl" validate:"omitempty,url"`
	CancelURL  string               `json:"cancelUrl" validate:"omitempty,url"`
}

type sessionItemRequest struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int64   `json:"quantity" validate:"gte=0"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type sessionStatusResponse struct {
	Status        string `json:"status"`
	CustomerEmail string `json:"customerEmail,omitempty"`
}

// CreateCheckoutSession opens a hosted payment session for the posted items
// and hands the session id and redirect URL back to the client.
func CreateCheckoutSession(svc sessionsvc.Service, m *metrics.SessionBackendMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var payload createSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			m.IncSessionFailed("invalid_request")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]sessionsvc.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, sessionsvc.ItemInput{
				Title:    item.Title,
				Price:    item.Price,
				Quantity: item.Quantity,
			})
		}

		created, err := svc.Create(r.Context(), sessionsvc.CreateInput{
			Items:      items,
			SuccessURL: payload.SuccessURL,
			CancelURL:  payload.CancelURL,
		})
		if err != nil {
			m.IncSessionFailed("provider_error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncSessionCreated()
		if logg != nil {
			ctx := logg.WithSessionID(r.Context(), created.SessionID)
			logg.Info(ctx, "checkout session created")
		}

		responses.WriteJSON(w, http.StatusCreated, createSessionResponse{
			SessionID: created.SessionID,
			URL:       created.URL,
		})
	}
}

// SessionStatus reports the provider's payment state for a session.
func SessionStatus(svc sessionsvc.Service, m *metrics.SessionBackendMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		sessionID := chi.URLParam(r, "sessionID")
		status, err := svc.Status(r.Context(), sessionID)
		if err != nil {
			m.IncStatusCheck("error")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncStatusCheck(status.PaymentStatus)
		responses.WriteJSON(w, http.StatusOK, sessionStatusResponse{
			Status:        status.PaymentStatus,
			CustomerEmail: status.CustomerEmail,
		})
	}
}
