// Package auth consumes the external identity provider's REST API for
// email/password sign-in. The provider owns credentials and password
// hashing; this client only exchanges them for tokens.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopfolio/storefront/pkg/config"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
)

// User is the authenticated identity the storefront cares about.
type User struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
}

// Client talks to the identity toolkit endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// IsConfigured reports whether the provider API key is present. Callers must
// surface its absence as a configuration error, not a sign-in failure.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignIn exchanges email/password for tokens.
func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	return c.exchange(ctx, "signInWithPassword", email, password)
}

// SignUp registers a new account and returns its tokens.
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	return c.exchange(ctx, "signUp", email, password)
}

func (c *Client) exchange(ctx context.Context, action, email, password string) (*User, error) {
	if !c.IsConfigured() {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration,
			"identity provider not configured; set SHOPFOLIO_AUTH_API_KEY")
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	body, err := json.Marshal(credentialsRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode credentials")
	}

	endpoint := fmt.Sprintf("%s/accounts:%s?key=%s", c.baseURL, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reach identity provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("identity provider returned %d", resp.StatusCode))
	}

	var payload credentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode auth response")
	}
	if payload.LocalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity provider returned no uid")
	}

	return &User{
		UID:          payload.LocalID,
		Email:        payload.Email,
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

// TokenClaims are the identity claims carried in a provider ID token.
type TokenClaims struct {
	UID   string
	Email string
}

// ParseIDToken extracts identity claims without verifying the signature;
// verification is the provider's own backends' job, this client only needs
// the uid/email for display and keying local state.
func ParseIDToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "parse id token")
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.UID = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if out.UID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "id token carries no subject")
	}
	return out, nil
}
