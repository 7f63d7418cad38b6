package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxInFlight     = 64
	defaultDeliveryTimeout = 10 * time.Second
)

var (
	ErrNoRecipient      = errors.New("notification has no recipient")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
	ErrSaturated        = errors.New("too many notifications in flight")
)

// Sink receives notifications from the dispatcher. Persisted storage and
// chat relays are both sinks.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

type DispatcherConfig struct {
	// Async hands deliveries to background goroutines and returns immediately.
	Async           bool
	MaxInFlight     int64
	DeliveryTimeout time.Duration
}

// Dispatcher fans a notification out to every sink. In async mode Notify never
// waits on a sink; at most MaxInFlight deliveries run at once and further
// notifications are refused with ErrSaturated. Every delivery admitted before
// Close is waited for by Close.
type Dispatcher struct {
	sinks []Sink
	cfg   DispatcherConfig
	sem   *semaphore.Weighted
	now   func() time.Time

	// mu orders admission (closed check and wg.Add) against Close
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, sinks ...Sink) *Dispatcher {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = defaultMaxInFlight
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}
	return &Dispatcher{
		sinks: sinks,
		cfg:   cfg,
		sem:   semaphore.NewWeighted(cfg.MaxInFlight),
		now:   time.Now,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, n Notification) error {
	if n.RecipientID == "" {
		return ErrNoRecipient
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Kind == "" {
		n.Kind = KindSystem
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	n.UpdatedAt = n.CreatedAt

	if err := d.admit(); err != nil {
		return err
	}

	if !d.cfg.Async {
		defer d.wg.Done()
		deliverCtx, cancel := context.WithTimeout(ctx, d.cfg.DeliveryTimeout)
		defer cancel()
		return d.deliver(deliverCtx, n)
	}

	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)

		// the request that produced n may finish before delivery does
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.DeliveryTimeout)
		defer cancel()

		if err := d.deliver(deliverCtx, n); err != nil {
			slog.Warn("Notification delivery failed",
				slog.String("type", "sys"),
				slog.String("notification_id", n.ID),
				slog.String("recipient_id", n.RecipientID),
				slog.String("kind", string(n.Kind)),
				slog.String("error", err.Error()))
		}
	}()
	return nil
}

// admit registers one delivery with the wait group. Async deliveries also take
// a semaphore slot, released by the delivering goroutine.
func (d *Dispatcher) admit() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	if d.cfg.Async && !d.sem.TryAcquire(1) {
		return ErrSaturated
	}
	d.wg.Add(1)
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) error {
	var g errgroup.Group
	errs := make([]error, len(d.sinks))
	for i, sink := range d.sinks {
		g.Go(func() error {
			if err := sink.Deliver(ctx, n); err != nil {
				errs[i] = fmt.Errorf("sink %d: %w", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Close stops accepting notifications and waits for in-flight deliveries.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to drain notification deliveries: %w", ctx.Err())
	}
}
