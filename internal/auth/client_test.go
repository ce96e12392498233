package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopfolio/storefront/pkg/config"
	pkgerrors "github.com/shopfolio/storefront/pkg/errors"
)

func authClientFor(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.AuthConfig{BaseURL: server.URL, APIKey: "test-key", RequestTimeout: time.Second})
}

func TestSignInUnconfiguredNeverCallsOut(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	client := NewClient(config.AuthConfig{BaseURL: server.URL, RequestTimeout: time.Second})
	_, err := client.SignIn(context.Background(), "a@b.com", "secret")
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if called {
		t.Fatal("expected no network call without api key")
	}
}

func TestSignInSuccess(t *testing.T) {
	t.Parallel()

	client := authClientFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signInWithPassword" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key, got %q", r.URL.Query().Get("key"))
		}
		w.Write([]byte(`{"localId":"u-1","email":"a@b.com","idToken":"tok","refreshToken":"ref"}`))
	}))

	user, err := client.SignIn(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UID != "u-1" || user.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	t.Parallel()

	client := authClientFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"INVALID_PASSWORD"}}`, http.StatusBadRequest)
	}))

	_, err := client.SignIn(context.Background(), "a@b.com", "wrong")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSignUpHitsSignUpEndpoint(t *testing.T) {
	t.Parallel()

	client := authClientFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signUp" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"localId":"u-2","email":"new@b.com"}`))
	}))

	user, err := client.SignUp(context.Background(), "new@b.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UID != "u-2" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestSignInRequiresCredentials(t *testing.T) {
	t.Parallel()

	client := NewClient(config.AuthConfig{APIKey: "k", BaseURL: "http://localhost", RequestTimeout: time.Second})
	if _, err := client.SignIn(context.Background(), "", "x"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.SignIn(context.Background(), "a@b.com", ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseIDToken(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-1",
		"email": "a@b.com",
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}

	claims, err := ParseIDToken(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UID != "u-1" || claims.Email != "a@b.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseIDTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseIDToken("not-a-jwt"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
