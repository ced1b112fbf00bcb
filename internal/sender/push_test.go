package sender_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/registry"
	"github.com/artistbooking/notification-service/internal/sender"
)

// stubPusher rejects the endpoints listed in reject and records every attempt.
type stubPusher struct {
	mu       sync.Mutex
	reject   map[string]bool
	attempts []string
	payloads [][]byte
}

func (s *stubPusher) Push(_ context.Context, sub domain.Subscription, payload []byte) error {
	s.mu.Lock()
	s.attempts = append(s.attempts, sub.Endpoint)
	s.payloads = append(s.payloads, payload)
	s.mu.Unlock()
	if s.reject[sub.Endpoint] {
		return errors.New("410 gone")
	}
	return nil
}

func newPushSender(store registry.SubscriptionStore, p sender.EndpointPusher) *sender.PushSender {
	return sender.NewPushSender(store, p, time.Second, zap.NewNop(), nil)
}

func pushJob(userID string) *domain.Job {
	return &domain.Job{
		Channel: domain.ChannelPush,
		Push:    &domain.PushPayload{UserID: userID, Title: "Hello", Body: "World"},
	}
}

func registerSubs(t *testing.T, store *registry.MemoryRegistry, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.Put(context.Background(), userID, domain.Subscription{
			Endpoint: fmt.Sprintf("https://push.example/%s/%d", userID, i),
			Keys:     domain.SubscriptionKeys{P256dh: "pk", Auth: "auth"},
		})
		if err != nil {
			t.Fatalf("seed subscription: %v", err)
		}
	}
}

func TestPushSender_ZeroSubscriptionsIsTrivialSuccess(t *testing.T) {
	store := registry.NewMemoryRegistry()
	pusher := &stubPusher{}
	s := newPushSender(store, pusher)

	outcome, err := s.Send(context.Background(), pushJob("nobody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Fulfilled != 0 || outcome.Total != 0 {
		t.Fatalf("expected 0/0, got %d/%d", outcome.Fulfilled, outcome.Total)
	}
	if len(pusher.attempts) != 0 {
		t.Fatal("no provider calls expected for zero subscriptions")
	}
}

func TestPushSender_PartialRejectionIsStillSuccess(t *testing.T) {
	store := registry.NewMemoryRegistry()
	registerSubs(t, store, "u1", 5)

	pusher := &stubPusher{reject: map[string]bool{
		"https://push.example/u1/1": true,
		"https://push.example/u1/3": true,
	}}
	s := newPushSender(store, pusher)

	outcome, err := s.Send(context.Background(), pushJob("u1"))
	if err != nil {
		t.Fatalf("partial rejection must not be an error, got %v", err)
	}
	if outcome.Total != 5 {
		t.Fatalf("expected 5 attempted endpoints, got %d", outcome.Total)
	}
	if outcome.Fulfilled != 3 {
		t.Fatalf("expected 3 fulfilled, got %d", outcome.Fulfilled)
	}
	if len(pusher.attempts) != 5 {
		t.Fatalf("every endpoint must be attempted, got %d", len(pusher.attempts))
	}
}

func TestPushSender_AllRejectedIsStillSuccess(t *testing.T) {
	store := registry.NewMemoryRegistry()
	registerSubs(t, store, "u1", 3)

	pusher := &stubPusher{reject: map[string]bool{
		"https://push.example/u1/0": true,
		"https://push.example/u1/1": true,
		"https://push.example/u1/2": true,
	}}
	s := newPushSender(store, pusher)

	outcome, err := s.Send(context.Background(), pushJob("u1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Fulfilled != 0 || outcome.Total != 3 {
		t.Fatalf("expected 0/3, got %d/%d", outcome.Fulfilled, outcome.Total)
	}
}

func TestPushSender_PayloadSerializedOnce(t *testing.T) {
	store := registry.NewMemoryRegistry()
	registerSubs(t, store, "u1", 4)
	pusher := &stubPusher{}
	s := newPushSender(store, pusher)

	if _, err := s.Send(context.Background(), pushJob("u1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(pusher.payloads); i++ {
		if string(pusher.payloads[i]) != string(pusher.payloads[0]) {
			t.Fatal("all endpoints must receive the same serialized payload")
		}
	}
}

func TestPushSender_RegistryErrorPropagates(t *testing.T) {
	store := registry.NewMemoryRegistry()
	store.GetErr = errors.New("store offline")
	s := newPushSender(store, &stubPusher{})

	if _, err := s.Send(context.Background(), pushJob("u1")); err == nil {
		t.Fatal("expected registry lookup error to propagate")
	}
}

func TestPushSender_WrongPayloadArm(t *testing.T) {
	s := newPushSender(registry.NewMemoryRegistry(), &stubPusher{})

	job := &domain.Job{Channel: domain.ChannelPush, Email: &domain.EmailPayload{To: "a@b.com", Subject: "x"}}
	if _, err := s.Send(context.Background(), job); err != domain.ErrPayloadMismatch {
		t.Fatalf("expected ErrPayloadMismatch, got %v", err)
	}
}
