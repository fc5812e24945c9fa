package marker

// Subscription is a registered listener.
type Subscription interface {
	// Cancel removes the listener. Calling it more than once is safe.
	Cancel()
}

type listener[T any] struct {
	id int
	fn func(T)
}

// listeners is an ordered listener list. Markers are used from a single
// writer, so no locking is done here.
type listeners[T any] struct {
	nextID int
	items  []listener[T]
}

func (l *listeners[T]) add(fn func(T)) Subscription {
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener[T]{id: id, fn: fn})
	return cancelFunc(func() { l.remove(id) })
}

func (l *listeners[T]) remove(id int) {
	for i, item := range l.items {
		if item.id == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

func (l *listeners[T]) emit(v T) {
	if len(l.items) == 0 {
		return
	}
	// Snapshot so listeners may cancel themselves while being called.
	items := append([]listener[T](nil), l.items...)
	for _, item := range items {
		item.fn(v)
	}
}

func (l *listeners[T]) clear() {
	l.items = nil
}

type cancelFunc func()

func (f cancelFunc) Cancel() { f() }
