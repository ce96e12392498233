package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shopfolio/storefront/internal/cart"
	"github.com/shopfolio/storefront/internal/orders"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
	"github.com/shopfolio/storefront/pkg/logger"
)

// State names a position in the checkout handoff protocol.
type State string

const (
	StateIdle              State = "idle"
	StateSessionCreating   State = "session_creating"
	StateAwaitingPayment   State = "awaiting_external_payment"
	StateResolvedConfirmed State = "resolved_confirmed"
	StateResolvedCancelled State = "resolved_cancelled"
	StateResolvedUnknown   State = "resolved_unknown"
)

// paymentStatusPaid is the backend status that authoritatively confirms the
// session was paid.
const paymentStatusPaid = "paid"

// SessionCreator is the client surface the flow drives.
type SessionCreator interface {
	IsConfigured() bool
	CreateSession(ctx context.Context, items []Item) (*Session, error)
	SessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// CartSource is the cart surface the flow reads from and clears on a
// confirmed payment.
type CartSource interface {
	Items() []cart.LineItem
	Total() decimal.Decimal
	Clear()
}

// BrowserOpener hands a URL to an external browser context and returns when
// that context closes. The payment outcome is not observable from the
// return alone.
type BrowserOpener interface {
	Open(ctx context.Context, url string) error
}

// Confirmer resolves the ambiguous browser-close outcome by asking the user
// whether they completed payment.
type Confirmer interface {
	ConfirmPayment(ctx context.Context) bool
}

// Recorder persists a completed order.
type Recorder interface {
	Record(ctx context.Context, order orders.Order) error
}

// Result reports where a checkout attempt ended up.
type Result struct {
	State     State
	SessionID string
	Order     *orders.Order
}

// Flow owns the checkout completion protocol:
// Idle -> SessionCreating -> AwaitingExternalPayment -> Resolved{Confirmed,Cancelled,Unknown}.
type Flow struct {
	client   SessionCreator
	cart     CartSource
	browser  BrowserOpener
	confirm  Confirmer
	recorder Recorder
	logg     *logger.Logger

	shippingFee decimal.Decimal
	freeAbove   decimal.Decimal
}

// FlowParams wires a Flow. Client, Cart and Browser are required; Confirm
// and Recorder may be nil (an unresolvable outcome then ends Unknown and no
// order is recorded).
type FlowParams struct {
	Client      SessionCreator
	Cart        CartSource
	Browser     BrowserOpener
	Confirm     Confirmer
	Recorder    Recorder
	Logger      *logger.Logger
	ShippingFee decimal.Decimal
	FreeAbove   decimal.Decimal
}

func NewFlow(params FlowParams) (*Flow, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session client required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart source required")
	}
	if params.Browser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "browser opener required")
	}
	return &Flow{
		client:      params.Client,
		cart:        params.Cart,
		browser:     params.Browser,
		confirm:     params.Confirm,
		recorder:    params.Recorder,
		logg:        params.Logger,
		shippingFee: params.ShippingFee,
		freeAbove:   params.FreeAbove,
	}, nil
}

// Run executes one checkout attempt for the given user. Preflights (form
// validation, non-empty cart, backend configured) happen before any network
// call; a session-creation failure is terminal and leaves the cart
// untouched.
func (f *Flow) Run(ctx context.Context, form Form, uid string) (Result, error) {
	result := Result{State: StateIdle}

	if err := form.Validate(); err != nil {
		return result, err
	}

	lines := f.cart.Items()
	if len(lines) == 0 {
		return result, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if !f.client.IsConfigured() {
		return result, pkgerrors.New(pkgerrors.CodeConfiguration,
			"checkout backend not configured; set SHOPFOLIO_STRIPE_BACKEND_URL")
	}

	subtotal := f.cart.Total()
	shipping := ShippingFor(subtotal, f.shippingFee, f.freeAbove)
	items := ItemsFromCart(lines, shipping)

	result.State = StateSessionCreating
	session, err := f.client.CreateSession(ctx, items)
	if err != nil {
		return result, err
	}
	result.SessionID = session.ID

	result.State = StateAwaitingPayment
	if err := f.browser.Open(ctx, session.URL); err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open payment page")
	}

	confirmed, resolved := f.resolveOutcome(ctx, session.ID)
	switch {
	case !resolved:
		result.State = StateResolvedUnknown
		if f.logg != nil {
			f.logg.Warn(f.logg.WithSessionID(ctx, session.ID), "payment outcome unresolved, keeping cart")
		}
		return result, nil
	case !confirmed:
		result.State = StateResolvedCancelled
		return result, nil
	}

	order := orders.FromCart(uid, lines, subtotal, shipping)
	// guest checkouts have no account to record under
	if f.recorder != nil && uid != "" {
		if err := f.recorder.Record(ctx, order); err != nil && f.logg != nil {
			// the payment already happened; losing the record is logged, not fatal
			f.logg.Error(f.logg.WithSessionID(ctx, session.ID), "order recording failed", err)
		}
	}
	f.cart.Clear()

	result.State = StateResolvedConfirmed
	result.Order = &order
	return result, nil
}

// resolveOutcome decides whether the user paid. The browser closing cannot
// distinguish "paid and closed the confirmation" from "abandoned", so one
// authoritative status check runs first; only when it errs or is
// inconclusive does the explicit user assertion decide.
func (f *Flow) resolveOutcome(ctx context.Context, sessionID string) (confirmed, resolved bool) {
	status, err := f.client.SessionStatus(ctx, sessionID)
	if err == nil && status.Status == paymentStatusPaid {
		return true, true
	}
	if err != nil && f.logg != nil {
		f.logg.Warn(f.logg.WithSessionID(ctx, sessionID), "status check failed, falling back to user assertion")
	}

	if f.confirm == nil {
		return false, false
	}
	return f.confirm.ConfirmPayment(ctx), true
}
