package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/registry"
)

// TemplateHandler manages user-owned notification templates.
type TemplateHandler struct {
	store  registry.TemplateStore
	logger *zap.Logger
}

func NewTemplateHandler(store registry.TemplateStore, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{store: store, logger: logger}
}

// List handles GET /api/v1/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)

	tpls, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.logger.Warn("list templates failed", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to fetch templates")
		return
	}
	respondJSON(w, http.StatusOK, tpls)
}

// Save handles POST /api/v1/templates
func (h *TemplateHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)

	var tpl domain.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := h.store.Save(r.Context(), userID, tpl)
	if err != nil {
		h.logger.Warn("save template failed", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save template")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}
