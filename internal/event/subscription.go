package event

import (
	"context"
	"sync/atomic"

	"github.com/dshills/inkwell/internal/event/topic"
	"github.com/google/uuid"
)

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, ev any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev any) error {
	return f(ctx, ev)
}

// FilterFunc decides whether an event reaches a subscription.
type FilterFunc func(ev any) bool

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	async   bool
	once    bool
	filter  FilterFunc

	cancelled atomic.Bool
	fired     atomic.Bool
	bus       *Bus
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// Async delivers events on the bus worker instead of the publisher.
func Async() SubscriptionOption {
	return func(s *Subscription) { s.async = true }
}

// Once cancels the subscription after its first delivery.
func Once() SubscriptionOption {
	return func(s *Subscription) { s.once = true }
}

// WithFilter drops events for which fn returns false.
func WithFilter(fn FilterFunc) SubscriptionOption {
	return func(s *Subscription) { s.filter = fn }
}

func newSubscription(b *Bus, pattern topic.Topic, h Handler, opts []SubscriptionOption) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: h,
		bus:     b,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the subscription ID.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic { return s.pattern }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return !s.cancelled.Load() }

// Cancel removes the subscription from its bus.
func (s *Subscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	s.bus.remove(s)
}

// accepts reports whether ev should be delivered, claiming the single
// delivery of a Once subscription.
func (s *Subscription) accepts(t topic.Topic, ev any) bool {
	if s.cancelled.Load() || !t.Matches(s.pattern) {
		return false
	}
	if s.filter != nil && !s.filter(ev) {
		return false
	}
	if s.once && s.fired.Swap(true) {
		return false
	}
	return true
}
