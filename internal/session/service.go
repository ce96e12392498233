// Package session creates and queries hosted payment sessions on behalf of
// the storefront client. It wraps Stripe Checkout; session storage belongs
// to the provider, nothing is persisted here.
package session

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
)

const (
	currency = "usd"

	defaultSuccessURL = "https://shopfolio.app/success?session_id={CHECKOUT_SESSION_ID}"
	defaultCancelURL  = "https://shopfolio.app/cancel"

	fallbackItemTitle = "Product"
)

// ItemInput is one line the client wants to collect payment for.
type ItemInput struct {
	Title    string
	Price    float64
	Quantity int64
}

// CreateInput carries everything needed to open a hosted session.
type CreateInput struct {
	Items      []ItemInput
	SuccessURL string
	CancelURL  string
}

// Created is the handle returned to the client.
type Created struct {
	SessionID string
	URL       string
}

// Status is the provider's view of a session's payment state.
type Status struct {
	PaymentStatus string
	CustomerEmail string
}

type checkoutSessionAPI interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error)
}

// Service exposes session creation and status lookup.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Created, error)
	Status(ctx context.Context, sessionID string) (*Status, error)
}

type service struct {
	sessions checkoutSessionAPI
}

// NewService builds the session service on a Stripe checkout-session API.
func NewService(sessions checkoutSessionAPI) (Service, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe session api required")
	}
	return &service{sessions: sessions}, nil
}

// Create opens a hosted checkout session for the given items. Amounts reach
// Stripe in cents; half-up rounding happens only at this boundary.
func (s *service) Create(ctx context.Context, input CreateInput) (*Created, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to check out")
	}

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(input.Items))
	for _, item := range input.Items {
		title := item.Title
		if title == "" {
			title = fallbackItemTitle
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		if item.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
		cents := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(title),
				},
				UnitAmount: stripe.Int64(cents),
			},
			Quantity: stripe.Int64(quantity),
		})
	}

	successURL := input.SuccessURL
	if successURL == "" {
		successURL = defaultSuccessURL
	}
	cancelURL := input.CancelURL
	if cancelURL == "" {
		cancelURL = defaultCancelURL
	}

	params := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}

	created, err := s.sessions.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	return &Created{SessionID: created.ID, URL: created.URL}, nil
}

// Status fetches the session's payment state from the provider. Never cached.
func (s *service) Status(ctx context.Context, sessionID string) (*Status, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	session, err := s.sessions.Retrieve(ctx, sessionID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
	}

	status := &Status{PaymentStatus: string(session.PaymentStatus)}
	if session.CustomerDetails != nil {
		status.CustomerEmail = session.CustomerDetails.Email
	}
	return status, nil
}
