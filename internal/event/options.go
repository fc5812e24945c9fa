package event

import "go.uber.org/zap"

// DefaultQueueSize is the async queue capacity.
const DefaultQueueSize = 1024

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithQueueSize sets the async queue capacity.
func WithQueueSize(size int) BusOption {
	return func(b *Bus) {
		if size > 0 {
			b.queueSize = size
		}
	}
}

// WithLogger sets the logger used for async handler failures.
func WithLogger(l *zap.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}
