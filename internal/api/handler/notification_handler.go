package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/artistbooking/notification-service/internal/api/middleware"
	"github.com/artistbooking/notification-service/internal/dispatch"
	"github.com/artistbooking/notification-service/internal/domain"
)

// NotificationHandler exposes the send endpoints consumed by the gateway.
type NotificationHandler struct {
	engine *dispatch.Engine
	logger *zap.Logger
}

func NewNotificationHandler(engine *dispatch.Engine, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{engine: engine, logger: logger}
}

type sendPushRequest struct {
	UserID string         `json:"userId"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// SendPush handles POST /api/v1/notifications/push
//
// Always responds with success regardless of per-endpoint outcome: partial
// fan-out failure is not an error, and zero registered endpoints deliver
// trivially. Only a malformed request or a registry lookup failure is
// reported.
func (h *NotificationHandler) SendPush(w http.ResponseWriter, r *http.Request) {
	var req sendPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.engine.Dispatch(r.Context(), &domain.Job{
		Channel: domain.ChannelPush,
		Push: &domain.PushPayload{
			UserID: req.UserID,
			Title:  req.Title,
			Body:   req.Body,
			Data:   req.Data,
		},
	})
	if err != nil {
		h.logger.Warn("push dispatch failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

// SendEmail handles POST /api/v1/notifications/email
//
// On the direct path a provider failure surfaces here with the provider's
// error message; on the queued path the response is "accepted" and later
// failures stay internal.
func (h *NotificationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.engine.Dispatch(r.Context(), &domain.Job{
		Channel: domain.ChannelEmail,
		Email: &domain.EmailPayload{
			To:      req.To,
			Subject: req.Subject,
			HTML:    req.HTML,
			Text:    req.Text,
		},
	})
	if err != nil {
		h.logger.Warn("email dispatch failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type sendSMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendSMS handles POST /api/v1/notifications/sms
//
// With no configured provider this is a logged no-op reported as success.
func (h *NotificationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req sendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.engine.Dispatch(r.Context(), &domain.Job{
		Channel: domain.ChannelSMS,
		SMS: &domain.SMSPayload{
			To:      req.To,
			Message: req.Message,
		},
	})
	if err != nil {
		h.logger.Warn("sms dispatch failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type confirmationRequest struct {
	UserID             string                      `json:"userId"`
	AppointmentDetails dispatch.AppointmentDetails `json:"appointmentDetails"`
}

// Confirmation handles POST /api/v1/notifications/appointment-confirmation
//
// Composite of one email and one push, each leg best-effort and independent;
// the overall result is success even when the push fan-out reaches zero
// registered endpoints.
func (h *NotificationHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	var req confirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AppointmentDetails.ClientEmail == "" {
		respondError(w, http.StatusUnprocessableEntity, "appointmentDetails.clientEmail is required")
		return
	}

	res := h.engine.Confirmation(r.Context(), req.UserID, req.AppointmentDetails)
	respondJSON(w, http.StatusOK, res)
}
