package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/registry"
)

// EndpointPusher delivers one serialized payload to one push endpoint.
// The production implementation is VAPIDPusher; tests inject a stub.
type EndpointPusher interface {
	Push(ctx context.Context, sub domain.Subscription, payload []byte) error
}

// VAPIDPusher performs encrypted Web Push deliveries signed with the
// service's VAPID key pair.
type VAPIDPusher struct {
	opts webpush.Options
}

func NewVAPIDPusher(publicKey, privateKey, subscriber string) *VAPIDPusher {
	return &VAPIDPusher{
		opts: webpush.Options{
			Subscriber:      "mailto:" + subscriber,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             60,
		},
	}
}

func (p *VAPIDPusher) Push(ctx context.Context, sub domain.Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &p.opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push endpoint rejected with status %d", resp.StatusCode)
	}
	return nil
}

// PushSender resolves a push job to the target user's registered endpoints
// and fans the payload out to all of them concurrently.
//
// The fan-out is all-or-nothing-started, never all-or-nothing-succeeded:
// every endpoint gets exactly one attempt, a rejection never cancels or
// blocks siblings, and the aggregate is reported as success with a
// fulfilled/total count regardless of how many endpoints rejected. This
// mirrors the weak reliability contract of browser push itself.
type PushSender struct {
	store   registry.SubscriptionStore
	pusher  EndpointPusher
	timeout time.Duration
	logger  *zap.Logger

	// Metric hook, injected by main so the sender stays metrics-agnostic.
	observe func(fulfilled, total int)
}

// NewPushSender constructs the sender. observe is optional (nil = no-op) and
// receives the aggregate fulfilled/total counts of every fan-out.
func NewPushSender(store registry.SubscriptionStore, pusher EndpointPusher, timeout time.Duration, logger *zap.Logger, observe func(fulfilled, total int)) *PushSender {
	if observe == nil {
		observe = func(int, int) {}
	}
	return &PushSender{store: store, pusher: pusher, timeout: timeout, logger: logger, observe: observe}
}

func (s *PushSender) Send(ctx context.Context, job *domain.Job) (*Outcome, error) {
	p := job.Push
	if p == nil {
		return nil, domain.ErrPayloadMismatch
	}

	subs, err := s.store.Get(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup subscriptions: %w", err)
	}

	// Zero registered endpoints is a trivial success, not an error.
	if len(subs) == 0 {
		s.logger.Info("no push subscriptions for user", zap.String("user_id", p.UserID))
		s.observe(0, 0)
		return &Outcome{Fulfilled: 0, Total: 0}, nil
	}

	// Serialize once, deliver N times.
	payload, err := json.Marshal(map[string]any{
		"title": p.Title,
		"body":  p.Body,
		"data":  p.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal push payload: %w", err)
	}

	var (
		wg        sync.WaitGroup
		fulfilled atomic.Int64
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(sub domain.Subscription) {
			defer wg.Done()

			// Per-endpoint timeout so one slow endpoint cannot stall the join.
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := s.pusher.Push(callCtx, sub, payload); err != nil {
				s.logger.Warn("push endpoint rejected",
					zap.String("user_id", p.UserID),
					zap.String("endpoint", sub.Endpoint),
					zap.Error(err),
				)
				return
			}
			fulfilled.Add(1)
		}(sub)
	}
	wg.Wait()

	s.logger.Info("push fan-out complete",
		zap.String("user_id", p.UserID),
		zap.Int64("fulfilled", fulfilled.Load()),
		zap.Int("total", len(subs)),
	)
	s.observe(int(fulfilled.Load()), len(subs))
	return &Outcome{Fulfilled: int(fulfilled.Load()), Total: len(subs)}, nil
}

var _ Sender = (*PushSender)(nil)
