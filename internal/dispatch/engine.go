package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/sender"
)

// Broker is the slice of the queue broker adapter the engine depends on.
// Keeping it an interface lets tests force the degraded and enqueue-failure
// paths without a Redis instance.
type Broker interface {
	Healthy() bool
	Enqueue(ctx context.Context, job *domain.Job) error
}

// Hooks carries the metric callback functions injected by main.
type Hooks struct {
	OnQueued func(channel domain.Channel)
	OnDirect func(channel domain.Channel, latency time.Duration, err error)
}

// Engine is the single entry point for notification dispatch. Per job it
// decides between the durable queue (asynchronous) and direct synchronous
// execution, and shapes both outcomes identically so callers cannot observe
// which mode served them.
type Engine struct {
	broker  Broker
	senders map[domain.Channel]sender.Sender
	logger  *zap.Logger

	onQueued func(domain.Channel)
	onDirect func(domain.Channel, time.Duration, error)
}

func NewEngine(broker Broker, senders map[domain.Channel]sender.Sender, logger *zap.Logger, hooks Hooks) *Engine {
	if hooks.OnQueued == nil {
		hooks.OnQueued = func(domain.Channel) {}
	}
	if hooks.OnDirect == nil {
		hooks.OnDirect = func(domain.Channel, time.Duration, error) {}
	}
	return &Engine{
		broker:   broker,
		senders:  senders,
		logger:   logger,
		onQueued: hooks.OnQueued,
		onDirect: hooks.OnDirect,
	}
}

// Dispatch routes one job through exactly one execution path: queued when the
// broker is healthy, direct otherwise. If the enqueue attempt itself fails,
// the job falls through to the direct path, so the only way Dispatch stays
// silent about a failure is when the job was already accepted by the queue —
// an explicit at-most-best-effort contract.
func (e *Engine) Dispatch(ctx context.Context, job *domain.Job) (*domain.DispatchResult, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	log := e.logger.With(
		zap.String("job_id", job.ID),
		zap.String("channel", string(job.Channel)),
	)

	if e.broker.Healthy() {
		err := e.broker.Enqueue(ctx, job)
		if err == nil {
			e.onQueued(job.Channel)
			log.Info("job accepted for asynchronous delivery")
			return &domain.DispatchResult{Success: true, Message: "accepted"}, nil
		}
		log.Warn("enqueue failed, falling back to direct delivery", zap.Error(err))
	}

	return e.direct(ctx, job, log)
}

// direct executes the matching channel sender synchronously in the calling
// context. Errors propagate to the caller as a delivery failure.
func (e *Engine) direct(ctx context.Context, job *domain.Job, log *zap.Logger) (*domain.DispatchResult, error) {
	s, ok := e.senders[job.Channel]
	if !ok {
		return nil, domain.ErrSenderUnavailable
	}

	start := time.Now()
	outcome, err := s.Send(ctx, job)
	e.onDirect(job.Channel, time.Since(start), err)
	if err != nil {
		log.Warn("direct delivery failed", zap.Error(err))
		return nil, err
	}

	log.Info("job delivered directly",
		zap.Int("fulfilled", outcome.Fulfilled),
		zap.Int("total", outcome.Total),
	)
	return &domain.DispatchResult{
		Success:   true,
		Message:   "accepted",
		Fulfilled: outcome.Fulfilled,
		Total:     outcome.Total,
	}, nil
}
