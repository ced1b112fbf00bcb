package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

// State is the broker's connection lifecycle. Once Degraded, the broker never
// self-heals within the process lifetime; a restart is required. This is a
// deliberate simplicity trade-off carried over from the source system, not an
// oversight — reconnect logic is explicitly out of scope.
type State int32

const (
	StateUnattempted State = iota
	StateConnecting
	StateHealthy
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateUnattempted:
		return "unattempted"
	case StateConnecting:
		return "connecting"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

// Broker is the durable job queue adapter, backed by one Redis list per
// channel topic. Workers pull jobs by topic; there is no acknowledgment or
// redelivery, so a worker crash loses the in-flight job.
type Broker struct {
	client   *redis.Client
	state    atomic.Int32
	pollWait time.Duration
	logger   *zap.Logger
}

// New builds an unconnected broker. Call Connect before use; Enqueue fails
// closed until the broker reaches Healthy.
func New(pollWait time.Duration, logger *zap.Logger) *Broker {
	return &Broker{pollWait: pollWait, logger: logger}
}

// Connect attempts the single startup connection to Redis. On any failure the
// broker settles in Degraded and the returned error is advisory: callers keep
// running and route jobs through the synchronous path instead.
func (b *Broker) Connect(ctx context.Context, redisURL string, timeout time.Duration) error {
	b.state.Store(int32(StateConnecting))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		b.state.Store(int32(StateDegraded))
		return fmt.Errorf("parse redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		b.state.Store(int32(StateDegraded))
		return fmt.Errorf("ping redis: %w", err)
	}

	b.client = client
	b.state.Store(int32(StateHealthy))
	return nil
}

// State reports the current lifecycle state.
func (b *Broker) State() State {
	return State(b.state.Load())
}

// Healthy reports whether Enqueue may be attempted. Callers must check this
// before enqueueing so a degraded broker is never contacted.
func (b *Broker) Healthy() bool {
	return b.State() == StateHealthy
}

// Enqueue pushes the job onto its channel topic. Only valid while Healthy.
// A runtime push failure trips the broker to Degraded (one-way), so
// subsequent jobs stop attempting the queue entirely.
func (b *Broker) Enqueue(ctx context.Context, job *domain.Job) error {
	switch b.State() {
	case StateHealthy:
	case StateUnattempted, StateConnecting:
		return domain.ErrBrokerNotReady
	default:
		return domain.ErrBrokerDegraded
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if err := b.client.LPush(ctx, topic(job.Channel), payload).Err(); err != nil {
		b.state.Store(int32(StateDegraded))
		b.logger.Warn("broker degraded after enqueue failure", zap.Error(err))
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Dequeue blocks until a job is available on the channel's topic or ctx is
// cancelled. Returns (nil, false) on cancellation (graceful shutdown signal).
// BRPOP is issued with a short poll timeout so shutdown is observed promptly.
// While the broker is not Healthy there is no connection to poll, so Dequeue
// parks until shutdown instead of spinning or touching the client.
func (b *Broker) Dequeue(ctx context.Context, ch domain.Channel) (*domain.Job, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}

		if b.State() != StateHealthy {
			<-ctx.Done()
			return nil, false
		}

		res, err := b.client.BRPop(ctx, b.pollWait, topic(ch)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // poll timeout, nothing queued
			}
			if ctx.Err() != nil {
				return nil, false
			}
			b.logger.Warn("dequeue failed", zap.String("channel", string(ch)), zap.Error(err))
			continue
		}

		// BRPOP returns [key, value].
		var job domain.Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			b.logger.Error("dropping undecodable job", zap.Error(err))
			continue
		}
		return &job, true
	}
}

// Depths returns the number of jobs waiting per channel topic.
// Used by the metrics handler for the queue-depth snapshot.
// Returns zeros when the broker is not healthy.
func (b *Broker) Depths(ctx context.Context) map[domain.Channel]int64 {
	depths := make(map[domain.Channel]int64, 3)
	for _, ch := range domain.Channels() {
		depths[ch] = 0
	}
	if !b.Healthy() {
		return depths
	}
	for _, ch := range domain.Channels() {
		if n, err := b.client.LLen(ctx, topic(ch)).Result(); err == nil {
			depths[ch] = n
		}
	}
	return depths
}

// Close releases the Redis connection if one was established.
func (b *Broker) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func topic(ch domain.Channel) string {
	return "notifications:" + string(ch)
}
