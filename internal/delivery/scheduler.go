package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"mockabis/internal/abis/models"
	"mockabis/internal/delivery/metrics"
)

const (
	defaultMaxInFlight    = 32
	defaultPublishTimeout = 10 * time.Second
)

// Scheduler holds deliveries until their deadline and hands them to the
// publisher from one background worker. Schedule never publishes on the
// caller's goroutine, even for a zero delay. Publish failures are logged and
// dropped; tasks still queued when Run returns are abandoned.
type Scheduler struct {
	publisher      Publisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	publishTimeout time.Duration
	inFlight       *semaphore.Weighted

	mu    sync.Mutex
	queue delayQueue
	// waiting counts due tasks popped by Run that still wait for a publish slot.
	waiting int
	wake    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithMaxInFlight bounds concurrent publishes.
func WithMaxInFlight(n int64) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.inFlight = semaphore.NewWeighted(n)
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func NewScheduler(publisher Publisher, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		publisher:      publisher,
		logger:         logger,
		publishTimeout: defaultPublishTimeout,
		inFlight:       semaphore.NewWeighted(defaultMaxInFlight),
		wake:           make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Schedule queues d for delivery no earlier than d.Delay from now and
// returns the task id. It only enqueues; it can be called before Run starts.
func (s *Scheduler) Schedule(d models.Delivery) string {
	if d.Delay < 0 {
		d.Delay = 0
	}
	t := &task{
		id:       uuid.NewString(),
		delivery: d,
		due:      time.Now().Add(d.Delay),
	}

	s.mu.Lock()
	s.queue.push(t)
	pending := s.pendingLocked()
	s.mu.Unlock()

	s.metrics.IncScheduled(string(d.MessageType))
	s.metrics.SetPending(pending)
	s.logger.Debug("delivery scheduled",
		"task_id", t.id,
		"request_id", d.Response.RequestID,
		"message_type", d.MessageType,
		"delay", d.Delay.String(),
	)

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return t.id
}

// Pending reports how many deliveries have not been handed to the publisher
// yet, whether waiting for their deadline or for a publish slot.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Scheduler) pendingLocked() int {
	return s.queue.len() + s.waiting
}

// Run drives the queue until ctx is cancelled. In-flight publishes are
// allowed to finish; queued tasks are logged and abandoned.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		now := time.Now()
		s.mu.Lock()
		due, next, hasNext := s.queue.popDue(now)
		s.waiting = len(due)
		pending := s.pendingLocked()
		s.mu.Unlock()
		s.metrics.SetPending(pending)

		for i, t := range due {
			if err := s.inFlight.Acquire(ctx, 1); err != nil {
				s.requeue(due[i:])
				break
			}
			s.handedOff()
			s.metrics.ObserveLateness(time.Since(t.due))
			wg.Add(1)
			go func(t *task) {
				defer wg.Done()
				defer s.inFlight.Release(1)
				s.publish(ctx, t)
			}(t)
		}

		var timerC <-chan time.Time
		if hasNext {
			timer.Reset(time.Until(next))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			wg.Wait()
			s.abandon()
			return nil
		case <-s.wake:
		case <-timerC:
		}
	}
}

func (s *Scheduler) handedOff() {
	s.mu.Lock()
	s.waiting--
	pending := s.pendingLocked()
	s.mu.Unlock()
	s.metrics.SetPending(pending)
}

func (s *Scheduler) requeue(tasks []*task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waiting -= len(tasks)
	for _, t := range tasks {
		s.queue.push(t)
	}
}

func (s *Scheduler) publish(ctx context.Context, t *task) {
	// The worker context only bounds scheduling; a publish already handed
	// off runs to completion under its own timeout.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	err := s.publisher.Publish(pubCtx, t.delivery)
	if err != nil {
		reason := "publish"
		if errors.Is(err, ErrEncoding) {
			reason = "encoding"
		}
		s.metrics.IncDropped(reason)
		s.logger.ErrorContext(ctx, "delivery dropped",
			"task_id", t.id,
			"request_id", t.delivery.Response.RequestID,
			"message_type", t.delivery.MessageType,
			"reason", reason,
			"error", err,
		)
		return
	}

	s.metrics.IncDelivered(string(t.delivery.MessageType))
	s.logger.InfoContext(ctx, "delivery published",
		"task_id", t.id,
		"request_id", t.delivery.Response.RequestID,
		"message_type", t.delivery.MessageType,
		"return_value", t.delivery.Response.ReturnValue,
	)
}

func (s *Scheduler) abandon() {
	s.mu.Lock()
	left := s.queue.drain()
	s.mu.Unlock()
	s.metrics.SetPending(0)

	for _, t := range left {
		s.metrics.IncDropped("shutdown")
		s.logger.Warn("delivery abandoned at shutdown",
			"task_id", t.id,
			"request_id", t.delivery.Response.RequestID,
			"message_type", t.delivery.MessageType,
			"due_in", time.Until(t.due).String(),
		)
	}
}
