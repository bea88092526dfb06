package handler

import (
	"net/http"

	"sky-catalog/internal/model"
	"sky-catalog/internal/service"

	"github.com/rs/zerolog"
)

// MenuHandler handles customer-facing catalog requests.
type MenuHandler struct {
	menu   service.MenuService
	logger zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(menu service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		menu:   menu,
		logger: logger.With().Str("handler", "menu").Logger(),
	}
}

// List handles GET /user/dish/list?categoryId= requests.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r.URL.Query().Get("categoryId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, "categoryId: "+err.Error(), h.logger)
		return
	}

	views, err := h.menu.ListForCustomer(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, views)
}
