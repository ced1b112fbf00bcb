package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/config"
	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/ratelimiter"
	"github.com/artistbooking/notification-service/internal/sender"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnSent   func(channel domain.Channel, latency time.Duration)
	OnFailed func(channel domain.Channel)
}

// Pool manages the lifecycle of all workers. Workers are partitioned by
// channel topic: each worker consumes exactly one topic and drives that
// channel's sender, with per-channel concurrency taken from config.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates (Email + SMS + Push) workers as configured, each bound to
// its channel topic and sender.
func NewPool(
	cfg *config.Config,
	broker Dequeuer,
	senders map[domain.Channel]sender.Sender,
	limiter *ratelimiter.ChannelLimiters,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	counts := map[domain.Channel]int{
		domain.ChannelEmail: cfg.EmailWorkers,
		domain.ChannelSMS:   cfg.SMSWorkers,
		domain.ChannelPush:  cfg.PushWorkers,
	}

	var workers []*Worker
	id := 0
	for _, ch := range domain.Channels() {
		for n := 0; n < counts[ch]; n++ {
			workers = append(workers, NewWorker(
				id, ch, broker, senders[ch], limiter,
				cfg.MaxAttempts,
				logger.With(zap.Int("worker_id", id)),
				hooks.OnSent,
				hooks.OnFailed,
			))
			id++
		}
	}

	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight jobs finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
