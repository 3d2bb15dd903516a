package rest

import (
	"net/http"

	"mealdrop-be/internal/logger"
	"mealdrop-be/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter assembles the full handler chain:
// CORS -> auth -> rate limit -> request logging -> routes.
// Auth runs before the limiter so authenticated actors get their own
// rate bucket instead of sharing the per-IP one.
func NewRouter(handler *Handler) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	var h http.Handler = r
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	h = middleware.RateLimitMiddleware(h)
	h = middleware.AuthMiddleware(h)
	return cors.Default().Handler(h)
}
