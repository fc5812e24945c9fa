package event

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dshills/inkwell/internal/event/topic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stats counts bus activity.
type Stats struct {
	Published uint64
	Delivered uint64
	Dropped   uint64
	Errors    uint64
	Panics    uint64
}

type delivery struct {
	ctx context.Context
	sub *Subscription
	t   topic.Topic
	ev  any
}

// Bus routes events to subscriptions. Synchronous subscriptions work
// without Start; async subscriptions need a running bus.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	// guards running, queue and done
	runMu   sync.RWMutex
	running bool
	queue   chan delivery
	done    chan struct{}

	queueSize int
	logger    *zap.Logger

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	errors    atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates a stopped bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		queueSize: DefaultQueueSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start launches the async worker.
func (b *Bus) Start() error {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	if b.running {
		return ErrBusAlreadyRunning
	}
	b.queue = make(chan delivery, b.queueSize)
	b.done = make(chan struct{})
	b.running = true
	go b.work(b.queue, b.done)
	return nil
}

// Stop closes the queue and waits for queued events to be handled or ctx
// to end.
func (b *Bus) Stop(ctx context.Context) error {
	b.runMu.Lock()
	if !b.running {
		b.runMu.Unlock()
		return ErrBusNotRunning
	}
	b.running = false
	close(b.queue)
	done := b.done
	b.runMu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the async worker is running.
func (b *Bus) IsRunning() bool {
	b.runMu.RLock()
	defer b.runMu.RUnlock()
	return b.running
}

// Subscribe registers h for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	sub := newSubscription(b, pattern, h, opts)
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// SubscribeFunc registers a handler function.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil || sub.bus != b || !sub.IsActive() {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	return nil
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s *Subscription) bool { return s == sub })
}

// Publish delivers ev to every matching subscription. Synchronous handlers
// run before Publish returns and their errors are combined into the
// result. Async deliveries are queued; a full queue drops the event for
// that subscription and reports ErrQueueFull.
func (b *Bus) Publish(ctx context.Context, ev any) error {
	tp, ok := ev.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsPattern() {
		return ErrInvalidTopic
	}
	b.published.Add(1)

	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	var errs error
	for _, sub := range subs {
		if !sub.accepts(t, ev) {
			continue
		}
		if sub.once {
			sub.Cancel()
		}
		if sub.async {
			errs = multierr.Append(errs, b.enqueue(delivery{ctx: ctx, sub: sub, t: t, ev: ev}))
			continue
		}
		errs = multierr.Append(errs, b.deliver(ctx, sub, t, ev))
	}
	return errs
}

func (b *Bus) enqueue(d delivery) error {
	b.runMu.RLock()
	defer b.runMu.RUnlock()
	if !b.running {
		b.dropped.Add(1)
		return ErrBusNotRunning
	}
	select {
	case b.queue <- d:
		return nil
	default:
		b.dropped.Add(1)
		return ErrQueueFull
	}
}

func (b *Bus) work(queue <-chan delivery, done chan<- struct{}) {
	defer close(done)
	for d := range queue {
		if err := b.deliver(d.ctx, d.sub, d.t, d.ev); err != nil {
			b.logger.Warn("async handler failed",
				zap.String("topic", d.t.String()),
				zap.String("subscription", d.sub.id),
				zap.Error(err))
		}
	}
}

func (b *Bus) deliver(ctx context.Context, sub *Subscription, t topic.Topic, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			err = &PanicError{SubscriptionID: sub.id, Topic: t.String(), Value: r}
		}
	}()
	b.delivered.Add(1)
	if herr := sub.handler.Handle(ctx, ev); herr != nil {
		b.errors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: t.String(), Err: herr}
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Errors:    b.errors.Load(),
		Panics:    b.panics.Load(),
	}
}
