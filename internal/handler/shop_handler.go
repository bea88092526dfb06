package handler

import (
	"net/http"

	"sky-catalog/internal/model"
	"sky-catalog/internal/service"

	"github.com/rs/zerolog"
)

// ShopStatusResponse reports the shop open flag.
type ShopStatusResponse struct {
	Status model.ShopStatus `json:"status"`
}

// ShopHandler handles shop status requests for both admin and customer routes.
type ShopHandler struct {
	service service.ShopService
	logger  zerolog.Logger
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(service service.ShopService, logger zerolog.Logger) *ShopHandler {
	return &ShopHandler{
		service: service,
		logger:  logger.With().Str("handler", "shop").Logger(),
	}
}

// GetStatus handles GET /admin/shop/status and GET /user/shop/status requests.
func (h *ShopHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetStatus(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ShopStatusResponse{Status: status})
}

// SetStatus handles PUT /admin/shop/{status} requests.
func (h *ShopHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := model.ParseShopStatus(r.PathValue("status"))
	if err != nil {
		writeServiceError(w, r, model.ErrInvalidStatus, h.logger)
		return
	}

	if err := h.service.SetStatus(r.Context(), status); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ShopStatusResponse{Status: status})
}
