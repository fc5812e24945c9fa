// Package event provides the typed publish/subscribe bus through which an
// inkwell engine announces document changes.
//
// Events are values of Event[T]. Subscribers register a topic pattern and
// a Handler; synchronous handlers run on the publishing goroutine, async
// handlers run on a single worker in publish order.
//
//	bus := event.NewBus(event.WithLogger(logger))
//	_ = bus.Start()
//	defer bus.Stop(ctx)
//
//	bus.SubscribeFunc("document.**", func(ctx context.Context, ev any) error {
//		...
//	})
package event
