package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/ratelimiter"
	"github.com/artistbooking/notification-service/internal/sender"
)

// Dequeuer is the broker slice a worker consumes from.
type Dequeuer interface {
	Dequeue(ctx context.Context, ch domain.Channel) (*domain.Job, bool)
	Enqueue(ctx context.Context, job *domain.Job) error
}

// Worker is a single goroutine bound to one channel topic. It continuously
// pulls jobs from the broker, applies per-channel rate limiting, and delivers
// through the channel's sender. Failures on this path are terminal for the
// original caller (the HTTP response already said "accepted"); the worker
// retries a bounded number of times, then logs the loss.
type Worker struct {
	id          int
	channel     domain.Channel
	broker      Dequeuer
	send        sender.Sender
	limiter     *ratelimiter.ChannelLimiters
	maxAttempts int
	logger      *zap.Logger

	// Hooks for metrics — injected by the pool so the worker stays metrics-agnostic.
	onSent   func(channel domain.Channel, latency time.Duration)
	onFailed func(channel domain.Channel)
}

// NewWorker constructs a worker. onSent and onFailed are optional (nil = no-op).
func NewWorker(
	id int,
	channel domain.Channel,
	broker Dequeuer,
	send sender.Sender,
	limiter *ratelimiter.ChannelLimiters,
	maxAttempts int,
	logger *zap.Logger,
	onSent func(domain.Channel, time.Duration),
	onFailed func(domain.Channel),
) *Worker {
	if onSent == nil {
		onSent = func(domain.Channel, time.Duration) {}
	}
	if onFailed == nil {
		onFailed = func(domain.Channel) {}
	}
	return &Worker{
		id: id, channel: channel, broker: broker, send: send,
		limiter: limiter, maxAttempts: maxAttempts, logger: logger,
		onSent: onSent, onFailed: onFailed,
	}
}

// Run blocks until ctx is cancelled, processing one queued job per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.String("channel", string(w.channel)))
	for {
		job, ok := w.broker.Dequeue(ctx, w.channel)
		if !ok {
			w.logger.Info("worker stopping", zap.String("channel", string(w.channel)))
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *domain.Job) {
	start := time.Now()
	log := w.logger.With(
		zap.String("job_id", job.ID),
		zap.String("channel", string(job.Channel)),
		zap.Int("attempt", job.Attempt),
	)

	// Block here until the per-channel rate limiter grants a token.
	if err := w.limiter.Wait(ctx, job.Channel); err != nil {
		// ctx cancelled while waiting — worker is shutting down. The job is
		// lost, consistent with the no-redelivery contract.
		return
	}

	outcome, err := w.send.Send(ctx, job)
	if err != nil {
		w.handleFailure(ctx, job, err, log)
		return
	}

	elapsed := time.Since(start)
	w.onSent(job.Channel, elapsed)
	log.Info("queued job delivered",
		zap.Int("fulfilled", outcome.Fulfilled),
		zap.Int("total", outcome.Total),
		zap.Duration("latency", elapsed),
	)
}

// handleFailure re-enqueues the job with an advanced attempt counter until
// maxAttempts is reached, then records the loss. Errors here are never
// surfaced to the original caller.
func (w *Worker) handleFailure(ctx context.Context, job *domain.Job, sendErr error, log *zap.Logger) {
	if job.Attempt+1 >= w.maxAttempts {
		w.onFailed(job.Channel)
		log.Error("queued job permanently failed", zap.Error(sendErr))
		return
	}

	retry := job.Retry()
	if err := w.broker.Enqueue(ctx, retry); err != nil {
		// Broker degraded mid-run: no way to retry a queued job.
		w.onFailed(job.Channel)
		log.Error("retry enqueue failed, job lost", zap.Error(err), zap.NamedError("send_error", sendErr))
		return
	}
	log.Warn("queued job failed, retry scheduled", zap.Error(sendErr), zap.Int("next_attempt", retry.Attempt))
}
