package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/ratelimiter"
	"github.com/artistbooking/notification-service/internal/sender"
	"github.com/artistbooking/notification-service/internal/worker"
)

// fakeBroker hands out a fixed list of jobs, then blocks until ctx cancels.
// Re-enqueued retries are appended so the worker picks them up next.
type fakeBroker struct {
	mu   sync.Mutex
	jobs []*domain.Job

	enqueueErr error
	enqueued   []*domain.Job
}

func (f *fakeBroker) Dequeue(ctx context.Context, _ domain.Channel) (*domain.Job, bool) {
	for {
		f.mu.Lock()
		if len(f.jobs) > 0 {
			job := f.jobs[0]
			f.jobs = f.jobs[1:]
			f.mu.Unlock()
			return job, true
		}
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (f *fakeBroker) Enqueue(_ context.Context, job *domain.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, job)
	f.jobs = append(f.jobs, job)
	return nil
}

// failingSender fails the first failures calls, then succeeds.
type failingSender struct {
	mu       sync.Mutex
	failures int
	calls    []*domain.Job
	done     chan struct{}
	doneAt   int
}

func (f *failingSender) Send(_ context.Context, job *domain.Job) (*sender.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, job)
	if len(f.calls) == f.doneAt {
		close(f.done)
	}
	if len(f.calls) <= f.failures {
		return nil, errors.New("provider hiccup")
	}
	return &sender.Outcome{Fulfilled: 1, Total: 1}, nil
}

func smsJob(attempt int) *domain.Job {
	return &domain.Job{
		ID:      "j1",
		Channel: domain.ChannelSMS,
		Attempt: attempt,
		SMS:     &domain.SMSPayload{To: "+15551234567", Message: "hi"},
	}
}

func runWorker(t *testing.T, b *fakeBroker, s *failingSender, maxAttempts int, onFailed func(domain.Channel)) {
	t.Helper()

	w := worker.NewWorker(0, domain.ChannelSMS, b, s, ratelimiter.New(1000), maxAttempts, zap.NewNop(), nil, onFailed)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for worker to process jobs")
	}
	cancel()
	wg.Wait()
}

// A transient failure on the queued path is retried with an advanced attempt
// counter until the send succeeds.
func TestWorker_RetriesThenSucceeds(t *testing.T) {
	b := &fakeBroker{jobs: []*domain.Job{smsJob(0)}}
	s := &failingSender{failures: 1, done: make(chan struct{}), doneAt: 2}

	runWorker(t, b, s, 3, nil)

	if len(s.calls) != 2 {
		t.Fatalf("expected 2 send attempts, got %d", len(s.calls))
	}
	if len(b.enqueued) != 1 {
		t.Fatalf("expected 1 retry enqueue, got %d", len(b.enqueued))
	}
	if b.enqueued[0].Attempt != 1 {
		t.Fatalf("expected retry attempt=1, got %d", b.enqueued[0].Attempt)
	}
}

// Exhausted retries are terminal: the failure is recorded via the hook and
// never re-enqueued again.
func TestWorker_ExhaustedRetriesAreTerminal(t *testing.T) {
	b := &fakeBroker{jobs: []*domain.Job{smsJob(0)}}
	s := &failingSender{failures: 99, done: make(chan struct{}), doneAt: 3}

	var mu sync.Mutex
	failed := 0
	onFailed := func(domain.Channel) {
		mu.Lock()
		failed++
		mu.Unlock()
	}

	runWorker(t, b, s, 3, onFailed)

	if len(s.calls) != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", len(s.calls))
	}
	mu.Lock()
	defer mu.Unlock()
	if failed != 1 {
		t.Fatalf("expected exactly one permanent failure, got %d", failed)
	}
}

// When the broker degrades mid-run a retry cannot be queued; the job is lost
// and counted as failed rather than retried synchronously.
func TestWorker_RetryEnqueueFailureIsTerminal(t *testing.T) {
	b := &fakeBroker{jobs: []*domain.Job{smsJob(0)}, enqueueErr: domain.ErrBrokerDegraded}
	s := &failingSender{failures: 99, done: make(chan struct{}), doneAt: 1}

	var mu sync.Mutex
	failed := 0
	onFailed := func(domain.Channel) {
		mu.Lock()
		failed++
		mu.Unlock()
	}

	runWorker(t, b, s, 3, onFailed)

	if len(s.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(s.calls))
	}
	mu.Lock()
	defer mu.Unlock()
	if failed != 1 {
		t.Fatalf("expected the job to be counted failed, got %d", failed)
	}
}
