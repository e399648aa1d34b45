// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"papertrade/internal/api/handler"
)

// Handlers groups the HTTP handlers the router dispatches to.
type Handlers struct {
	Auth      *handler.AuthHandler
	Trade     *handler.TradeHandler
	Portfolio *handler.PortfolioHandler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(middleware.Logger)                          // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Bound every request
	r.Use(noCache)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)
	r.Post("/logout", h.Auth.Logout)

	// Routes below require a session
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireSession)

		r.Get("/", h.Portfolio.Index)
		r.Get("/quote", h.Portfolio.Quote)
		r.Get("/history", h.Portfolio.History)

		r.Post("/buy", h.Trade.Buy)
		r.Get("/sell", h.Trade.SellForm)
		r.Post("/sell", h.Trade.Sell)
		r.Post("/add", h.Trade.AddCash)
	})

	logger.Debug("HTTP routes registered")
	return r
}

// noCache keeps browsers and proxies from caching any response.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Expires", "0")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
