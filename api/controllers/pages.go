package controllers

import (
	"html/template"
	"net/http"

	"github.com/shopfolio/storefront/pkg/logger"
)

// The hosted payment page redirects the shopper's browser here after the
// session resolves. These pages only need to tell them to return to the app.

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><title>Payment complete</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>Thanks for your order!</h1>
<p>Your payment went through. You can close this window and return to the app.</p>
{{if .SessionID}}<p style="color: #888; font-size: 0.8rem;">Reference: {{.SessionID}}</p>{{end}}
</body>
</html>`))

var cancelPage = template.Must(template.New("cancel").Parse(`<!DOCTYPE html>
<html>
<head><title>Payment cancelled</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>Payment cancelled</h1>
<p>No charge was made. Return to the app to try again.</p>
</body>
</html>`))

// CheckoutSuccess renders the post-payment landing page. The provider
// substitutes the real session id into the redirect before the browser
// arrives here.
func CheckoutSuccess(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if logg != nil && sessionID != "" {
			logg.Info(logg.WithSessionID(r.Context(), sessionID), "shopper landed on success page")
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := successPage.Execute(w, struct{ SessionID string }{SessionID: sessionID}); err != nil && logg != nil {
			logg.Error(r.Context(), "render success page", err)
		}
	}
}

// CheckoutCancel renders the page shown when the shopper backs out.
func CheckoutCancel(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := cancelPage.Execute(w, nil); err != nil && logg != nil {
			logg.Error(r.Context(), "render cancel page", err)
		}
	}
}
