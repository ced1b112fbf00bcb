package sender

import (
	"context"
	"errors"
	"testing"
	"time"

	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

type stubSMSAPI struct {
	calls int
	err   error
}

func (s *stubSMSAPI) CreateMessage(_ *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	sid := "SM123"
	return &twilioapi.ApiV2010Message{Sid: &sid}, nil
}

func smsJob() *domain.Job {
	return &domain.Job{
		Channel: domain.ChannelSMS,
		SMS:     &domain.SMSPayload{To: "+15551234567", Message: "Your appointment is confirmed"},
	}
}

// Missing credentials degrade to a logged no-op, never an error, and no
// provider is ever contacted.
func TestSMSSender_UnconfiguredIsSilentNoOp(t *testing.T) {
	s := NewSMSSender("", "", "+15550000000", time.Second, zap.NewNop())
	if s.Enabled() {
		t.Fatal("expected sender to be disabled without credentials")
	}

	outcome, err := s.Send(context.Background(), smsJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Fulfilled != 0 || outcome.Total != 0 {
		t.Fatalf("expected 0/0 outcome, got %d/%d", outcome.Fulfilled, outcome.Total)
	}
}

func TestSMSSender_ConfiguredSend(t *testing.T) {
	api := &stubSMSAPI{}
	s := &SMSSender{api: api, from: "+15550000000", logger: zap.NewNop()}

	outcome, err := s.Send(context.Background(), smsJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", api.calls)
	}
	if outcome.Fulfilled != 1 || outcome.Total != 1 {
		t.Fatalf("expected 1/1 outcome, got %d/%d", outcome.Fulfilled, outcome.Total)
	}
	if outcome.Detail != "SM123" {
		t.Fatalf("expected provider sid in detail, got %q", outcome.Detail)
	}
}

func TestSMSSender_ProviderErrorPropagates(t *testing.T) {
	api := &stubSMSAPI{err: errors.New("twilio 21211: invalid number")}
	s := &SMSSender{api: api, from: "+15550000000", logger: zap.NewNop()}

	if _, err := s.Send(context.Background(), smsJob()); err == nil {
		t.Fatal("expected configured provider error to propagate")
	}
}
