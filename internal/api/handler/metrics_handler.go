package handler

import (
	"net/http"

	"github.com/artistbooking/notification-service/internal/broker"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	broker *broker.Broker
}

func NewMetricsHandler(b *broker.Broker) *MetricsHandler {
	return &MetricsHandler{broker: b}
}

// GetMetrics handles GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	depths := h.broker.Depths(r.Context())
	var total int64
	byChannel := make(map[string]int64, len(depths))
	for ch, n := range depths {
		byChannel[string(ch)] = n
		total += n
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"broker_state": h.broker.State().String(),
		"queue_depth": map[string]any{
			"by_channel": byChannel,
			"total":      total,
		},
	})
}
