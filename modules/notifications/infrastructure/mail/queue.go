package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"
)

const sendTimeout = time.Minute

// Queue delivers messages in the background through a fixed pool of
// workers. Send only enqueues; delivery failures are retried and then
// logged.
type Queue struct {
	next    Sender
	jobs    chan Message
	logger  *slog.Logger
	retries uint

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(next Sender, size, workers int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		next:    next,
		jobs:    make(chan Message, size),
		logger:  logger,
		retries: 3,
	}
	q.wg.Add(workers)
	for range workers {
		go q.work()
	}
	return q
}

// Send enqueues msg without waiting for delivery.
func (q *Queue) Send(_ context.Context, msg Message) error {
	if len(msg.Recipients()) == 0 {
		return ErrNoRecipients
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits until the queued ones are
// delivered or ctx ends.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for msg := range q.jobs {
		q.deliver(msg)
	}
}

func (q *Queue) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err := retry.Do(
		func() error { return q.next.Send(ctx, msg) },
		retry.Context(ctx),
		retry.Attempts(q.retries),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		q.logger.Error("email delivery failed",
			slog.Any("to", msg.Recipients()),
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)
	}
}

// SendBulk sends msgs concurrently with at most limit in flight and returns
// the first failure.
func SendBulk(ctx context.Context, sender Sender, msgs []Message, limit int) error {
	if limit <= 0 {
		limit = 8
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, msg := range msgs {
		g.Go(func() error { return sender.Send(ctx, msg) })
	}
	return g.Wait()
}
