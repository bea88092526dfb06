package router

import (
	"net/http"

	"sky-catalog/internal/handler"
	"sky-catalog/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	dishHandler *handler.DishHandler,
	menuHandler *handler.MenuHandler,
	shopHandler *handler.ShopHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Admin dish routes
	mux.HandleFunc("POST /admin/dish", dishHandler.Create)
	mux.HandleFunc("PUT /admin/dish", dishHandler.Update)
	mux.HandleFunc("DELETE /admin/dish", dishHandler.Delete)
	mux.HandleFunc("GET /admin/dish/page", dishHandler.Page)
	mux.HandleFunc("GET /admin/dish/list", dishHandler.ListByCategory)
	mux.HandleFunc("GET /admin/dish/{id}", dishHandler.GetByID)
	mux.HandleFunc("POST /admin/dish/status/{status}", dishHandler.SetStatus)

	// Admin shop routes
	mux.HandleFunc("GET /admin/shop/status", shopHandler.GetStatus)
	mux.HandleFunc("PUT /admin/shop/{status}", shopHandler.SetStatus)

	// Customer routes
	mux.HandleFunc("GET /user/dish/list", menuHandler.List)
	mux.HandleFunc("GET /user/shop/status", shopHandler.GetStatus)

	// Apply middleware in order: Recovery -> Logging -> CorrelationID -> CORS -> APIKeyAuth -> Actor
	var h http.Handler = mux
	h = middleware.Actor(logger)(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.CorrelationID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
