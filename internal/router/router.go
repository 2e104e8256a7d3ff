package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aidraw-backend/internal/handlers"
	"aidraw-backend/internal/middleware"
)

func New(
	accessGate *middleware.AccessGate,
	chatLimiter *middleware.RateLimiter,
	chatHandler *handlers.ChatHandler,
	configHandler *handlers.ConfigHandler,
	allowedOrigin string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(allowedOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		// ──── Chat relay ────
		// OPTIONS preflight is answered by the CORS middleware.
		r.Group(func(r chi.Router) {
			if chatLimiter != nil {
				r.Use(chatLimiter.Middleware)
			}
			r.Use(accessGate.Middleware)
			r.Post("/chat", chatHandler.Chat)
		})
	})

	return r
}
