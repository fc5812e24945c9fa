package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/inkwell/internal/event/topic"
)

type changed struct {
	N int
}

func TestPublishSync(t *testing.T) {
	bus := NewBus()
	var got []int
	_, err := bus.SubscribeFunc("document.*", func(_ context.Context, ev any) error {
		p, ok := PayloadOf[changed](ev)
		if !ok {
			t.Errorf("PayloadOf() failed for %T", ev)
		}
		got = append(got, p.N)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := bus.Publish(context.Background(), NewEvent("document.operation", changed{N: i}, "test")); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if err := bus.Publish(context.Background(), NewEvent("collab.remote.applied", changed{N: 9}, "test")); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("delivered = %v, want [1 2 3]", got)
	}
	if s := bus.Stats(); s.Published != 4 || s.Delivered != 3 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestPublishErrors(t *testing.T) {
	bus := NewBus()
	if err := bus.Publish(context.Background(), "not an event"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Publish(string) error = %v, want ErrInvalidEvent", err)
	}
	if err := bus.Publish(context.Background(), NewEvent[int]("document.*", 1, "")); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish(pattern) error = %v, want ErrInvalidTopic", err)
	}
	if _, err := bus.Subscribe("document", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Subscribe(nil) error = %v, want ErrNilHandler", err)
	}
	if _, err := bus.SubscribeFunc("", func(context.Context, any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(\"\") error = %v, want ErrInvalidTopic", err)
	}

	boom := errors.New("boom")
	if _, err := bus.SubscribeFunc("document.**", func(context.Context, any) error { return boom }); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.SubscribeFunc("document.**", func(context.Context, any) error { panic("bad") }); err != nil {
		t.Fatal(err)
	}
	err := bus.Publish(context.Background(), NewEvent("document.loaded", 0, ""))
	if !errors.Is(err, boom) {
		t.Errorf("Publish() error = %v, want boom", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "bad" {
		t.Errorf("Publish() error = %v, want PanicError", err)
	}
	if s := bus.Stats(); s.Errors != 1 || s.Panics != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestSubscriptionOptions(t *testing.T) {
	bus := NewBus()
	var once, filtered int
	sub, err := bus.SubscribeFunc("document.operation", func(context.Context, any) error {
		once++
		return nil
	}, Once())
	if err != nil {
		t.Fatal(err)
	}
	_, err = bus.SubscribeFunc("document.operation", func(context.Context, any) error {
		filtered++
		return nil
	}, WithFilter(func(ev any) bool {
		p, _ := PayloadOf[changed](ev)
		return p.N%2 == 0
	}))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		_ = bus.Publish(context.Background(), NewEvent("document.operation", changed{N: i}, ""))
	}
	if once != 1 {
		t.Errorf("once handler ran %d times, want 1", once)
	}
	if filtered != 2 {
		t.Errorf("filtered handler ran %d times, want 2", filtered)
	}
	if sub.IsActive() {
		t.Error("Once subscription still active")
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("Unsubscribe() error = %v, want ErrSubscriptionNotFound", err)
	}
	if got := bus.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", got)
	}
}

func TestAsyncDeliveryOrder(t *testing.T) {
	bus := NewBus(WithQueueSize(16))
	if err := bus.Publish(context.Background(), NewEvent("document.operation", changed{}, "")); err != nil {
		t.Fatalf("Publish() with no subscribers error = %v", err)
	}

	var mu sync.Mutex
	var got []int
	_, err := bus.SubscribeFunc(topic.Join("document", "**"), func(_ context.Context, ev any) error {
		p, _ := PayloadOf[changed](ev)
		mu.Lock()
		got = append(got, p.N)
		mu.Unlock()
		return nil
	}, Async())
	if err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(context.Background(), NewEvent("document.operation", changed{}, "")); !errors.Is(err, ErrBusNotRunning) {
		t.Errorf("Publish() on stopped bus error = %v, want ErrBusNotRunning", err)
	}

	if err := bus.Start(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Start(); !errors.Is(err, ErrBusAlreadyRunning) {
		t.Errorf("Start() twice error = %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := bus.Publish(context.Background(), NewEvent("document.history.back", changed{N: i}, "")); err != nil {
			t.Fatal(err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bus.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := bus.Stop(ctx); !errors.Is(err, ErrBusNotRunning) {
		t.Errorf("Stop() twice error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("delivered %d events, want 10", len(got))
	}
	for i, n := range got {
		if n != i {
			t.Errorf("event %d = %d, want in publish order", i, n)
		}
	}
}

func TestQueueFull(t *testing.T) {
	bus := NewBus(WithQueueSize(1))
	block := make(chan struct{})
	_, err := bus.SubscribeFunc("document.operation", func(context.Context, any) error {
		<-block
		return nil
	}, Async())
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Start(); err != nil {
		t.Fatal(err)
	}

	var full bool
	for i := 0; i < 5; i++ {
		if err := bus.Publish(context.Background(), NewEvent("document.operation", i, "")); errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	close(block)
	if !full {
		t.Error("expected ErrQueueFull")
	}
	if bus.Stats().Dropped == 0 {
		t.Error("Stats().Dropped = 0")
	}
	_ = bus.Stop(context.Background())
}

func TestEventMetadata(t *testing.T) {
	ev := NewEvent("document.loaded", "doc", "engine").WithCorrelation("req-1")
	if ev.Metadata.ID == "" || ev.Metadata.Timestamp.IsZero() {
		t.Errorf("Metadata = %+v", ev.Metadata)
	}
	if ev.EventMetadata().CorrelationID != "req-1" || ev.EventMetadata().Source != "engine" {
		t.Errorf("Metadata = %+v", ev.EventMetadata())
	}
	if _, ok := PayloadOf[int](ev); ok {
		t.Error("PayloadOf[int]() on string event should fail")
	}
	if p, ok := PayloadOf[string](&ev); !ok || p != "doc" {
		t.Errorf("PayloadOf(&ev) = %q, %v", p, ok)
	}
}
