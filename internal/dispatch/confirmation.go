package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

// AppointmentDetails is the booking data a confirmation is rendered from.
type AppointmentDetails struct {
	ID          string `json:"id"`
	ClientEmail string `json:"clientEmail"`
	ServiceName string `json:"serviceName"`
	StartTime   string `json:"startTime"`
	ArtistName  string `json:"artistName"`
}

const confirmationSubject = "Appointment Confirmed"

// Confirmation dispatches the appointment-confirmation composite: one email
// to the client address and one push to the user, each leg best-effort and
// independent of the other's outcome. A failed leg is logged, never fatal to
// the composite.
func (e *Engine) Confirmation(ctx context.Context, userID string, details AppointmentDetails) *domain.DispatchResult {
	start := details.StartTime
	day := start
	if t, err := time.Parse(time.RFC3339, details.StartTime); err == nil {
		start = t.Format("Monday, January 2, 2006 at 3:04 PM")
		day = t.Format("January 2, 2006")
	}

	emailJob := &domain.Job{
		Channel: domain.ChannelEmail,
		Email: &domain.EmailPayload{
			To:      details.ClientEmail,
			Subject: confirmationSubject,
			HTML: fmt.Sprintf(`<h2>Your appointment has been confirmed!</h2>
<p><strong>Service:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Artist:</strong> %s</p>
<p>We look forward to seeing you!</p>`, details.ServiceName, start, details.ArtistName),
		},
	}

	pushJob := &domain.Job{
		Channel: domain.ChannelPush,
		Push: &domain.PushPayload{
			UserID: userID,
			Title:  confirmationSubject,
			Body:   fmt.Sprintf("Your %s appointment is confirmed for %s", details.ServiceName, day),
			Data:   map[string]any{"appointmentId": details.ID},
		},
	}

	failed := 0
	for _, job := range []*domain.Job{emailJob, pushJob} {
		if _, err := e.Dispatch(ctx, job); err != nil {
			failed++
			e.logger.Warn("confirmation leg failed",
				zap.String("channel", string(job.Channel)),
				zap.String("appointment_id", details.ID),
				zap.Error(err),
			)
		}
	}

	msg := "appointment confirmation sent"
	if failed > 0 {
		msg = fmt.Sprintf("appointment confirmation sent with %d failed leg(s)", failed)
	}
	return &domain.DispatchResult{Success: true, Message: msg}
}
