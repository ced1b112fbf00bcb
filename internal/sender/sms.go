package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

// smsAPI is the slice of the Twilio client the sender needs.
type smsAPI interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// SMSSender delivers SMS jobs through Twilio.
//
// Missing credentials at startup are a deliberate degrade-not-crash policy:
// the sender is constructed disabled, logs a warning per send, and reports
// success without contacting any provider. Provider errors propagate only
// when the sender is configured.
type SMSSender struct {
	api    smsAPI
	from   string
	logger *zap.Logger
}

// NewSMSSender builds the sender. Empty accountSID or authToken yields a
// disabled sender.
func NewSMSSender(accountSID, authToken, from string, timeout time.Duration, logger *zap.Logger) *SMSSender {
	if accountSID == "" || authToken == "" {
		logger.Warn("twilio credentials absent, SMS sending disabled")
		return &SMSSender{from: from, logger: logger}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(timeout)

	return &SMSSender{api: client.Api, from: from, logger: logger}
}

// Enabled reports whether a provider client was configured.
func (s *SMSSender) Enabled() bool {
	return s.api != nil
}

func (s *SMSSender) Send(_ context.Context, job *domain.Job) (*Outcome, error) {
	p := job.SMS
	if p == nil {
		return nil, domain.ErrPayloadMismatch
	}

	if !s.Enabled() {
		s.logger.Warn("twilio not configured, skipping SMS", zap.String("to", p.To))
		return &Outcome{Fulfilled: 0, Total: 0, Detail: "sms provider not configured"}, nil
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(p.To)
	params.SetFrom(s.from)
	params.SetBody(p.Message)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("send sms: %w", err)
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	s.logger.Info("sms sent", zap.String("sid", sid))
	return &Outcome{Fulfilled: 1, Total: 1, Detail: sid}, nil
}

var _ Sender = (*SMSSender)(nil)
