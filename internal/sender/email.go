package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/postmark"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

// emailAPI is the slice of the Postmark client the sender needs.
// Tests substitute a stub; production wires *postmark.Client.
type emailAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// EmailSender delivers email jobs through Postmark. A provider failure is
// fatal to that job only: the error propagates and the job fails.
type EmailSender struct {
	api     emailAPI
	from    string
	timeout time.Duration
	logger  *zap.Logger
}

func NewEmailSender(serverToken, accountToken, from string, timeout time.Duration, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		api:     postmark.NewClient(serverToken, accountToken),
		from:    from,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *EmailSender) Send(ctx context.Context, job *domain.Job) (*Outcome, error) {
	p := job.Email
	if p == nil {
		return nil, domain.ErrPayloadMismatch
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.api.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       p.To,
		Subject:  p.Subject,
		HTMLBody: p.HTML,
		TextBody: p.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	if resp.ErrorCode > 0 {
		return nil, fmt.Errorf("send email: postmark error %d: %s", resp.ErrorCode, resp.Message)
	}

	s.logger.Info("email sent", zap.String("message_id", resp.MessageID))
	return &Outcome{Fulfilled: 1, Total: 1, Detail: resp.MessageID}, nil
}

var _ Sender = (*EmailSender)(nil)
