package handler

import (
	"net/http"

	"sky-catalog/internal/model"
	"sky-catalog/internal/service"

	"github.com/rs/zerolog"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// DishHandler handles administrative dish requests.
type DishHandler struct {
	service service.DishService
	logger  zerolog.Logger
}

// NewDishHandler creates a new dish handler.
func NewDishHandler(service service.DishService, logger zerolog.Logger) *DishHandler {
	return &DishHandler{
		service: service,
		logger:  logger.With().Str("handler", "dish").Logger(),
	}
}

// Create handles POST /admin/dish requests.
func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.DishRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	id, err := h.service.CreateWithFlavors(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// Update handles PUT /admin/dish requests.
func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.DishRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.UpdateWithFlavors(r.Context(), &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "dish updated"})
}

// Delete handles DELETE /admin/dish?ids=1,2,3 requests.
func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.DeleteBatch(r.Context(), ids); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "dishes deleted"})
}

// Page handles GET /admin/dish/page requests.
func (h *DishHandler) Page(w http.ResponseWriter, r *http.Request) {
	query, err := parsePageQuery(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	page, err := h.service.PageQuery(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetByID handles GET /admin/dish/{id} requests.
func (h *DishHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	view, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// ListByCategory handles GET /admin/dish/list?categoryId= requests.
func (h *DishHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseID(r.URL.Query().Get("categoryId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, "categoryId: "+err.Error(), h.logger)
		return
	}

	dishes, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, dishes)
}

// SetStatus handles POST /admin/dish/status/{status}?id= requests.
func (h *DishHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := model.ParseDishStatus(r.PathValue("status"))
	if err != nil {
		writeServiceError(w, r, model.ErrInvalidStatus, h.logger)
		return
	}

	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "dish status updated"})
}

// parsePageQuery reads the page filters. Missing page and pageSize default to
// the first page of ten; range checks are left to the service.
func parsePageQuery(r *http.Request) (model.DishPageQuery, error) {
	page, err := parseIntParam(r, "page", defaultPage)
	if err != nil {
		return model.DishPageQuery{}, model.ErrInvalidPage
	}
	pageSize, err := parseIntParam(r, "pageSize", defaultPageSize)
	if err != nil {
		return model.DishPageQuery{}, model.ErrInvalidPage
	}

	query := model.DishPageQuery{
		Page:     page,
		PageSize: pageSize,
		Name:     r.URL.Query().Get("name"),
	}

	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := parseID(raw)
		if err != nil {
			return model.DishPageQuery{}, model.InvalidRequest(err)
		}
		query.CategoryID = &categoryID
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseDishStatus(raw)
		if err != nil {
			return model.DishPageQuery{}, model.ErrInvalidStatus
		}
		query.Status = &status
	}

	return query, nil
}
