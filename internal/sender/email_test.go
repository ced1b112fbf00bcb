package sender

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrz1836/postmark"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

const testTimeout = time.Second

type stubEmailAPI struct {
	sent      []postmark.Email
	err       error
	errorCode int64
	message   string
}

func (s *stubEmailAPI) SendEmail(_ context.Context, email postmark.Email) (postmark.EmailResponse, error) {
	s.sent = append(s.sent, email)
	if s.err != nil {
		return postmark.EmailResponse{}, s.err
	}
	return postmark.EmailResponse{MessageID: "msg-1", ErrorCode: s.errorCode, Message: s.message}, nil
}

func emailJob() *domain.Job {
	return &domain.Job{
		Channel: domain.ChannelEmail,
		Email:   &domain.EmailPayload{To: "a@b.com", Subject: "Appointment Confirmed", HTML: "<p>hi</p>"},
	}
}

func TestEmailSender_Send(t *testing.T) {
	api := &stubEmailAPI{}
	s := &EmailSender{api: api, from: "noreply@artistbooking.com", timeout: testTimeout, logger: zap.NewNop()}

	outcome, err := s.Send(context.Background(), emailJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Fulfilled != 1 || outcome.Total != 1 {
		t.Fatalf("expected 1/1, got %d/%d", outcome.Fulfilled, outcome.Total)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(api.sent))
	}
	if api.sent[0].To != "a@b.com" || api.sent[0].Subject != "Appointment Confirmed" {
		t.Fatalf("unexpected email: %+v", api.sent[0])
	}
	if api.sent[0].From != "noreply@artistbooking.com" {
		t.Fatalf("unexpected from address %q", api.sent[0].From)
	}
}

// A transport error is fatal to the job: it propagates to the caller.
func TestEmailSender_TransportErrorPropagates(t *testing.T) {
	api := &stubEmailAPI{err: errors.New("connection refused")}
	s := &EmailSender{api: api, from: "noreply@artistbooking.com", timeout: testTimeout, logger: zap.NewNop()}

	if _, err := s.Send(context.Background(), emailJob()); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

// Postmark reports some failures in-band with an error code; those are
// delivery failures too.
func TestEmailSender_ProviderErrorCodePropagates(t *testing.T) {
	api := &stubEmailAPI{errorCode: 300, message: "invalid email address"}
	s := &EmailSender{api: api, from: "noreply@artistbooking.com", timeout: testTimeout, logger: zap.NewNop()}

	_, err := s.Send(context.Background(), emailJob())
	if err == nil {
		t.Fatal("expected provider error code to propagate")
	}
}
