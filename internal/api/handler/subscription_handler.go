package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/registry"
)

// userIDHeader is injected by the upstream authenticated gateway. The service
// trusts it verbatim and performs no independent authentication.
const userIDHeader = "X-User-ID"

// SubscriptionHandler manages push endpoint registration.
type SubscriptionHandler struct {
	store  registry.SubscriptionStore
	logger *zap.Logger
}

func NewSubscriptionHandler(store registry.SubscriptionStore, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{store: store, logger: logger}
}

type registerSubscriptionRequest struct {
	Endpoint string                  `json:"endpoint"`
	Keys     domain.SubscriptionKeys `json:"keys"`
}

// Register handles POST /api/v1/subscriptions
func (h *SubscriptionHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)

	var req registerSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Endpoint == "" {
		respondError(w, http.StatusUnprocessableEntity, "endpoint is required")
		return
	}

	id, err := h.store.Put(r.Context(), userID, domain.Subscription{
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
	})
	if err != nil {
		h.logger.Warn("save subscription failed", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

type unregisterSubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unregister handles DELETE /api/v1/subscriptions
func (h *SubscriptionHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	var req unregisterSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.store.Delete(r.Context(), req.Endpoint); err != nil {
		h.logger.Warn("delete subscription failed", zap.String("endpoint", req.Endpoint), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
