package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// The session backend serves a mobile app plus the local web build, so the
// origin list stays short.
var defaultCORSOrigins = []string{
	"http://localhost:8081", // Expo dev server
	"http://localhost:19006",
	"https://shopfolio.app",
}

// CORS returns middleware that applies the backend's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
