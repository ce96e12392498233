// Package checkout implements the payment-session client and the checkout
// handoff flow against the session backend.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopfolio/storefront/pkg/config"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
	"github.com/shopfolio/storefront/pkg/logger"
)

// Session references a provider-issued checkout session. Never persisted;
// it lives only for the duration of one checkout attempt.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// SessionStatus is the backend's view of a session's payment state.
type SessionStatus struct {
	Status        string `json:"status"`
	CustomerEmail string `json:"customerEmail"`
}

// Client talks to the session backend. One request per call, no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logg       *logger.Logger
}

// NewClient builds a session client from the checkout configuration. The
// request timeout bounds every call (10s by default).
func NewClient(cfg config.CheckoutConfig, logg *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logg:       logg,
	}
}

// IsConfigured reports whether a backend base URL is set. Callers must check
// this before creating a session and surface the configuration error as such.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

type createSessionRequest struct {
	Items      []Item `json:"items"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// CreateSession asks the backend for a hosted checkout session and returns
// the redirect URL the caller must hand to an external browser.
func (c *Client) CreateSession(ctx context.Context, items []Item) (*Session, error) {
	if !c.IsConfigured() {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration,
			"checkout backend not configured; set SHOPFOLIO_STRIPE_BACKEND_URL")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}

	payload := createSessionRequest{
		Items:      items,
		SuccessURL: c.baseURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  c.baseURL + "/cancel",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build session request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeBackendDown, err,
				"no response from checkout backend; verify the session backend is running")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeBackendDown, err, "reach checkout backend")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeSessionCreation,
			fmt.Sprintf("session backend returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"body": strings.TrimSpace(string(raw))})
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSessionCreation, err, "decode session response")
	}
	if session.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSessionCreation, "session backend returned no payment url")
	}

	if c.logg != nil {
		c.logg.Info(c.logg.WithSessionID(ctx, session.ID), "checkout session created")
	}
	return &session, nil
}

// SessionStatus queries the backend for a session's payment state. Always a
// fresh round-trip; nothing is cached.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	if !c.IsConfigured() {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration,
			"checkout backend not configured; set SHOPFOLIO_STRIPE_BACKEND_URL")
	}
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/session-status/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build status request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStatusCheck, err, "reach checkout backend")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeStatusCheck,
			fmt.Sprintf("session backend returned %d", resp.StatusCode))
	}

	var status SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStatusCheck, err, "decode status response")
	}
	return &status, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}
