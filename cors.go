package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
)

// The backend needs Cross-Origin Resource Sharing to function with the
// frontend in modern browsers. Allowed origins come from ALLOWED_ORIGINS
// (comma-separated), with the local dev servers as the fallback.
func withCORS(next http.Handler) http.Handler {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(next)
}
