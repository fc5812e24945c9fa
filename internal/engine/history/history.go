package history

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// DefaultMaxSize is the default number of entries kept.
const DefaultMaxSize = 500

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Option configures a History.
type Option func(*History)

// WithMaxSize sets the maximum number of entries. Non-positive values
// select DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(h *History) {
		if n <= 0 {
			n = DefaultMaxSize
		}
		h.maxSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// History manages undo/redo entries for one document.
type History struct {
	mu sync.Mutex

	root *model.Component
	reg  *model.Registry
	sel  *selection.Selection

	entries []*Entry
	index   int
	pending []*operation.Operation

	paused    int
	replaying bool
	maxSize   int

	sub    marker.Subscription
	logger *zap.Logger
}

// New creates a history for root. Call Listen to start collecting.
func New(root *model.Component, reg *model.Registry, sel *selection.Selection, opts ...Option) *History {
	h := &History{
		root:    root,
		reg:     reg,
		sel:     sel,
		maxSize: DefaultMaxSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Listen starts collecting the root's operations and records the current
// state as the first entry. Existing entries are dropped.
func (h *History) Listen() {
	h.Stop()
	h.Clean()
	h.mu.Lock()
	h.sub = h.root.Marker().OnChange(h.collect)
	h.mu.Unlock()
	h.RecordSnapshot()
}

// Stop stops collecting operations. Entries are kept.
func (h *History) Stop() {
	h.mu.Lock()
	sub := h.sub
	h.sub = nil
	h.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// SetRoot points the history at a new document and drops every entry.
// The selection is expected to follow the same root.
func (h *History) SetRoot(root *model.Component) {
	listening := h.listening()
	h.Stop()
	h.mu.Lock()
	h.root = root
	h.mu.Unlock()
	if listening {
		h.Listen()
		return
	}
	h.Clean()
}

func (h *History) listening() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sub != nil
}

func (h *History) collect(op *operation.Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused > 0 || h.replaying {
		return
	}
	h.pending = append(h.pending, op)
}

// Pause stops collecting operations until the matching Resume. Calls nest.
func (h *History) Pause() {
	h.mu.Lock()
	h.paused++
	h.mu.Unlock()
}

// Resume undoes one Pause.
func (h *History) Resume() {
	h.mu.Lock()
	if h.paused > 0 {
		h.paused--
	}
	h.mu.Unlock()
}

// IsPaused reports whether collection is paused.
func (h *History) IsPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused > 0
}

// HasPending reports whether operations were collected since the last
// entry.
func (h *History) HasPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) > 0
}

// DiscardPending drops the operations collected since the last entry. The
// caller is expected to have reverted them already.
func (h *History) DiscardPending() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = nil
}

// RecordSnapshot records the current tree and selection with the
// operations collected since the last entry. Entries ahead of the pointer
// are discarded and the oldest entry is evicted on overflow.
func (h *History) RecordSnapshot() *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recordLocked()
}

func (h *History) recordLocked() *Entry {
	e := &Entry{
		Literal:    h.root.Literal(),
		Operations: h.pending,
		Timestamp:  time.Now(),
	}
	if h.sel != nil {
		e.Selection = h.sel.Paths()
	}
	h.pending = nil

	if len(h.entries) > 0 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, e)
	if excess := len(h.entries) - h.maxSize; excess > 0 {
		h.entries = h.entries[excess:]
		// The oldest entry is never left, so its operations are unused.
		h.entries[0].Operations = nil
	}
	h.index = len(h.entries) - 1
	return e
}

// CanBack reports whether Back would change the document.
func (h *History) CanBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canBackLocked()
}

func (h *History) canBackLocked() bool {
	if len(h.entries) == 0 {
		return false
	}
	return h.index > 0 || (len(h.pending) > 0 && h.maxSize > 1)
}

// CanForward reports whether Forward would change the document.
func (h *History) CanForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) == 0 && h.index < len(h.entries)-1
}

// Back moves to the previous entry and returns it. Operations collected
// since the last entry are recorded first, so Back undoes them. When there
// is nothing to undo Back returns nil and leaves the document unchanged.
//
// A non-nil error means neither replay nor the literal fallback could
// restore the entry.
func (h *History) Back() (*Entry, error) {
	h.mu.Lock()
	if !h.canBackLocked() {
		h.mu.Unlock()
		return nil, nil
	}
	if len(h.pending) > 0 {
		h.recordLocked()
	}
	if h.index == 0 {
		// A one-entry history keeps only the latest state.
		h.mu.Unlock()
		return nil, nil
	}
	cur, prev := h.entries[h.index], h.entries[h.index-1]
	h.index--
	h.replaying = true
	h.mu.Unlock()

	err := h.replay(cur.Operations, prev, true)
	h.finish(prev)
	return prev, err
}

// Forward moves to the next entry and returns it. When there is nothing
// to redo Forward returns nil and leaves the document unchanged.
func (h *History) Forward() (*Entry, error) {
	h.mu.Lock()
	if len(h.pending) > 0 || h.index >= len(h.entries)-1 {
		h.mu.Unlock()
		return nil, nil
	}
	h.index++
	next := h.entries[h.index]
	h.replaying = true
	h.mu.Unlock()

	err := h.replay(next.Operations, next, false)
	h.finish(next)
	return next, err
}

func (h *History) finish(target *Entry) {
	h.root.ResetMarkers()
	if h.sel != nil {
		if !h.sel.Restore(target.Selection) && !target.Selection.IsZero() {
			h.logger.Debug("selection lost on replay")
		}
	}
	h.mu.Lock()
	h.replaying = false
	h.mu.Unlock()
}

// replay applies ops towards target and falls back to restoring target's
// literal when an operation fails.
func (h *History) replay(ops []*operation.Operation, target *Entry, backward bool) error {
	var errs error
	if backward {
		for i := len(ops) - 1; i >= 0; i-- {
			if err := model.RevertOperation(h.root, ops[i], h.reg); err != nil {
				errs = multierr.Append(errs, err)
				break
			}
		}
	} else {
		for _, op := range ops {
			if err := model.ApplyOperation(h.root, op, h.reg); err != nil {
				errs = multierr.Append(errs, err)
				break
			}
		}
	}
	if errs == nil {
		return nil
	}

	h.logger.Warn("operation replay failed, restoring snapshot",
		zap.Bool("backward", backward),
		zap.Int("operations", len(ops)),
		zap.Error(errs))
	if err := h.root.Restore(target.Literal.Clone(), h.reg); err != nil {
		return multierr.Append(errs, err)
	}
	return nil
}

// Clean drops every entry and pending operation.
func (h *History) Clean() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.pending = nil
	h.index = 0
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the pointer into the entries.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Current returns the entry at the pointer, or nil.
func (h *History) Current() *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[h.index]
}

// UndoInfo summarizes the entries that Back can reach, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Info
	for i := 1; i <= h.index && i < len(h.entries); i++ {
		out = append(out, h.entries[i].info())
	}
	return out
}

// RedoInfo summarizes the entries that Forward can reach, nearest first.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Info
	for i := h.index + 1; i < len(h.entries); i++ {
		out = append(out, h.entries[i].info())
	}
	return out
}

// MaxSize returns the maximum number of entries.
func (h *History) MaxSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxSize
}
