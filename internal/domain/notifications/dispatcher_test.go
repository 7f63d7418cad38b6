package notifications

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingSink struct {
	mu    sync.Mutex
	got   []Notification
	err   error
	block chan struct{}
}

func (s *recordingSink) Deliver(ctx context.Context, n Notification) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingSink) received() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.got...)
}

func TestDispatcher_NotifySync(t *testing.T) {
	failing := errors.New("relay down")
	tests := []struct {
		name     string
		n        Notification
		sinkErr  error
		wantErr  error
		wantSink int
	}{
		{
			name:     "Delivered",
			n:        Notification{RecipientID: "u2", Kind: KindTradeOffer, Title: "New Trade Offer"},
			wantSink: 1,
		},
		{
			name:    "No recipient",
			n:       Notification{Kind: KindTradeOffer},
			wantErr: ErrNoRecipient,
		},
		{
			name:     "Sink failure",
			n:        Notification{RecipientID: "u2"},
			sinkErr:  failing,
			wantErr:  failing,
			wantSink: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{err: tt.sinkErr}
			other := &recordingSink{}
			d := NewDispatcher(DispatcherConfig{}, sink, other)

			err := d.Notify(context.Background(), tt.n)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("Dispatcher.Notify() error = %v, want %v", err, tt.wantErr)
			}

			got := sink.received()
			if len(got) != tt.wantSink {
				t.Fatalf("Dispatcher.Notify() delivered = %d, want %d", len(got), tt.wantSink)
			}
			if len(other.received()) != tt.wantSink {
				t.Errorf("Dispatcher.Notify() second sink delivered = %d, want %d", len(other.received()), tt.wantSink)
			}
			if tt.wantSink == 0 {
				return
			}
			if got[0].ID == "" {
				t.Errorf("Dispatcher.Notify() did not assign an id")
			}
			if got[0].CreatedAt.IsZero() {
				t.Errorf("Dispatcher.Notify() did not stamp CreatedAt")
			}
			if tt.n.Kind == "" && got[0].Kind != KindSystem {
				t.Errorf("Dispatcher.Notify() kind = %v, want %v", got[0].Kind, KindSystem)
			}
		})
	}
}

func TestDispatcher_NotifyAsyncDrainsOnClose(t *testing.T) {
	sink := &recordingSink{err: errors.New("ignored")}
	d := NewDispatcher(DispatcherConfig{Async: true}, sink)

	for i := 0; i < 5; i++ {
		if err := d.Notify(context.Background(), Notification{RecipientID: "u1"}); err != nil {
			t.Fatalf("Dispatcher.Notify() error = %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Dispatcher.Close() error = %v", err)
	}
	if got := len(sink.received()); got != 5 {
		t.Errorf("Dispatcher.Close() drained = %d deliveries, want 5", got)
	}

	if err := d.Notify(context.Background(), Notification{RecipientID: "u1"}); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("Dispatcher.Notify() after close error = %v, want %v", err, ErrDispatcherClosed)
	}
}

func TestDispatcher_NotifyAsyncSaturated(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(DispatcherConfig{Async: true, MaxInFlight: 1}, sink)

	if err := d.Notify(context.Background(), Notification{RecipientID: "u1"}); err != nil {
		t.Fatalf("Dispatcher.Notify() error = %v", err)
	}
	if err := d.Notify(context.Background(), Notification{RecipientID: "u1"}); !errors.Is(err, ErrSaturated) {
		t.Errorf("Dispatcher.Notify() error = %v, want %v", err, ErrSaturated)
	}

	close(sink.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Dispatcher.Close() error = %v", err)
	}
	if got := len(sink.received()); got != 1 {
		t.Errorf("Dispatcher delivered = %d, want 1", got)
	}
}

func TestDispatcher_AsyncOutlivesCallerContext(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(DispatcherConfig{Async: true}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Notify(ctx, Notification{RecipientID: "u1"}); err != nil {
		t.Fatalf("Dispatcher.Notify() error = %v", err)
	}
	cancel()
	close(sink.block)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := d.Close(closeCtx); err != nil {
		t.Fatalf("Dispatcher.Close() error = %v", err)
	}
	if got := len(sink.received()); got != 1 {
		t.Errorf("Dispatcher delivered = %d, want 1", got)
	}
}

// closeWatchSink counts deliveries that run after Close has returned.
type closeWatchSink struct {
	closed atomic.Bool
	late   atomic.Int32
}

func (s *closeWatchSink) Deliver(context.Context, Notification) error {
	time.Sleep(time.Millisecond)
	if s.closed.Load() {
		s.late.Add(1)
	}
	return nil
}

func TestDispatcher_CloseWaitsForAdmittedDeliveries(t *testing.T) {
	for _, async := range []bool{true, false} {
		for round := 0; round < 50; round++ {
			sink := &closeWatchSink{}
			d := NewDispatcher(DispatcherConfig{Async: async, MaxInFlight: 1024}, sink)

			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					err := d.Notify(context.Background(), Notification{RecipientID: "u1"})
					if err != nil && !errors.Is(err, ErrDispatcherClosed) {
						t.Errorf("Dispatcher.Notify() error = %v", err)
					}
				}()
			}

			close(start)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := d.Close(ctx); err != nil {
				t.Fatalf("Dispatcher.Close() error = %v", err)
			}
			sink.closed.Store(true)
			cancel()
			wg.Wait()

			if late := sink.late.Load(); late != 0 {
				t.Fatalf("async=%v round %d: %d deliveries ran after Close returned", async, round, late)
			}
		}
	}
}
