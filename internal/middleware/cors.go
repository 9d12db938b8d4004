package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the configured frontends to call the API with credentials so
// the session cookie travels cross-origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	credentials := true
	if len(origins) == 0 {
		origins = []string{"*"}
		credentials = false
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           3600,
		AllowCredentials: credentials,
	})

	return handler.Handler
}
