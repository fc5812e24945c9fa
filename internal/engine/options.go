package engine

import (
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/dshills/inkwell/internal/engine/tracking"
	"github.com/dshills/inkwell/internal/event"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultMaxHistory = history.DefaultMaxSize
	DefaultMaxChanges = tracking.DefaultMaxChanges
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithRegistry sets the registry used to decode literals. The default
// holds the builtin formatters and components.
func WithRegistry(reg *model.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.reg = reg
		}
	}
}

// WithRoot sets the initial document.
func WithRoot(root *model.Component) Option {
	return func(e *Engine) {
		e.root = root
	}
}

// WithMaxHistory sets the number of undo snapshots kept.
func WithMaxHistory(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHistory = n
		}
	}
}

// WithMaxChanges sets the number of operations kept in the log.
func WithMaxChanges(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxChanges = n
		}
	}
}

// WithBus publishes engine events on bus instead of a private bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithReadOnly rejects local edits. Remote operations are still applied.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
