package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/inkwell/internal/engine/builtin"
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/model"
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/engine/tracking"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
	"github.com/dshills/inkwell/internal/event/topic"
	"github.com/dshills/inkwell/internal/logging"
	"go.uber.org/zap"
)

// Re-export commonly used types for convenience.
type (
	// Revision numbers operations in the log.
	Revision = tracking.Revision

	// Record is one logged operation.
	Record = tracking.Record

	// SnapshotID identifies a named snapshot.
	SnapshotID = tracking.SnapshotID

	// Paths is the serializable selection.
	Paths = selection.Paths
)

// source is the event source name.
const source = "engine"

// Engine owns a document and everything that observes it.
// All methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	reg     *model.Registry
	root    *model.Component
	sel     *selection.Selection
	hist    *history.History
	tracker *tracking.Tracker
	bus     *event.Bus
	logger  *zap.Logger

	maxHistory int
	maxChanges int
	readOnly   bool

	sub    marker.Subscription
	origin string
	batch  []*operation.Operation
	outbox []any
}

// New creates an engine. Without WithRoot the document is a root holding
// one empty paragraph.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxHistory: DefaultMaxHistory,
		maxChanges: DefaultMaxChanges,
		logger:     zap.NewNop(),
		origin:     events.OriginLocal,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = builtin.NewRegistry()
	}
	if e.root == nil {
		e.root = builtin.NewRoot()
	}
	if e.bus == nil {
		e.bus = event.NewBus(event.WithLogger(logging.WithComponent(e.logger, "event")))
	}

	e.sel = selection.New(e.root)
	caretToStart(e.sel, e.root)
	e.hist = history.New(e.root, e.reg, e.sel,
		history.WithMaxSize(e.maxHistory),
		history.WithLogger(logging.WithComponent(e.logger, "history")))
	e.tracker = tracking.NewTracker(tracking.WithMaxChanges(e.maxChanges))
	e.logger = logging.WithComponent(e.logger, "engine")

	e.sub = e.root.Marker().OnChange(e.onOperation)
	e.hist.Listen()
	return e
}

// Close stops listening to the document.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hist.Stop()
	if e.sub != nil {
		e.sub.Cancel()
		e.sub = nil
	}
}

// Registry returns the registry used to decode literals.
func (e *Engine) Registry() *model.Registry { return e.reg }

// Bus returns the event bus.
func (e *Engine) Bus() *event.Bus { return e.bus }

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger { return e.logger }

// IsReadOnly reports whether local edits are rejected.
func (e *Engine) IsReadOnly() bool { return e.readOnly }

// View runs fn with read access to the document. fn must not mutate it.
func (e *Engine) View(fn func(root *model.Component, sel *selection.Selection)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.root, e.sel)
}

// Update runs fn as one undoable edit. Operations fn produces are recorded
// as a single history entry. When fn returns an error its operations are
// reverted and the error is returned.
func (e *Engine) Update(fn func(root *model.Component, sel *selection.Selection) error) error {
	if e.readOnly {
		return ErrReadOnly
	}
	return e.write(events.OriginLocal, func() error {
		return e.commit(fn(e.root, e.sel))
	})
}

// commit records the current batch in history, or reverts it when err is
// set. It runs with the lock held.
func (e *Engine) commit(err error) error {
	if err != nil {
		e.rollback(events.OriginRollback)
		return err
	}
	if e.hist.HasPending() {
		entry := e.hist.RecordSnapshot()
		e.queue(events.TopicHistoryRecorded, events.HistoryChanged{
			Index:      e.hist.Index(),
			Length:     e.hist.Len(),
			Operations: len(entry.Operations),
		})
	}
	return nil
}

// rollback reverts the current batch, tagging the reverting operations
// with origin.
func (e *Engine) rollback(origin string) {
	ops := e.batch
	e.origin = origin
	e.hist.Pause()
	for i := len(ops) - 1; i >= 0; i-- {
		if err := model.RevertOperation(e.root, ops[i], e.reg); err != nil {
			e.logger.Error("rollback failed", zap.Int("operation", i), zap.Error(err))
			break
		}
	}
	e.hist.Resume()
	e.hist.DiscardPending()
	e.sel.Validate()
}

// Undo moves one entry back in history.
func (e *Engine) Undo() error {
	return e.write(events.OriginUndo, func() error {
		entry, err := e.hist.Back()
		if entry == nil && err == nil {
			return ErrNothingToUndo
		}
		e.queue(events.TopicHistoryBack, events.HistoryChanged{
			Index:      e.hist.Index(),
			Length:     e.hist.Len(),
			Operations: len(e.batch),
		})
		return err
	})
}

// Redo moves one entry forward in history.
func (e *Engine) Redo() error {
	return e.write(events.OriginRedo, func() error {
		entry, err := e.hist.Forward()
		if entry == nil && err == nil {
			return ErrNothingToRedo
		}
		e.queue(events.TopicHistoryForward, events.HistoryChanged{
			Index:      e.hist.Index(),
			Length:     e.hist.Len(),
			Operations: len(e.batch),
		})
		return err
	})
}

// CanUndo reports whether Undo would change the document.
func (e *Engine) CanUndo() bool { return e.hist.CanBack() }

// CanRedo reports whether Redo would change the document.
func (e *Engine) CanRedo() bool { return e.hist.CanForward() }

// History returns summaries of the entries before and after the pointer.
func (e *Engine) History() (undo, redo []history.Info) {
	return e.hist.UndoInfo(), e.hist.RedoInfo()
}

// ApplyRemote applies operations produced by a peer. They are logged and
// published but never recorded in the local history. The batch applies
// completely or not at all: when an operation fails, everything applied so
// far is reverted and the error is returned.
func (e *Engine) ApplyRemote(ops []*operation.Operation) error {
	return e.write(events.OriginRemote, func() error {
		e.hist.Pause()
		defer e.hist.Resume()
		defer e.sel.Validate()
		defer e.root.ResetMarkers()
		for i, op := range ops {
			if err := model.ApplyOperation(e.root, op, e.reg); err != nil {
				// Peers never saw the partial batch, so its revert stays remote too.
				e.rollback(events.OriginRemote)
				return fmt.Errorf("remote operation %d: %w", i, err)
			}
		}
		return nil
	})
}

// Load replaces the document with one built from lit. History and the
// operation log are reset; revisions keep counting.
func (e *Engine) Load(lit literal.Component) error {
	root, err := e.reg.NewComponent(lit)
	if err != nil {
		return err
	}
	return e.write(events.OriginLocal, func() error {
		e.replaceRoot(root)
		return nil
	})
}

// LoadJSON replaces the document with a JSON component literal.
func (e *Engine) LoadJSON(data []byte) error {
	lit, err := literal.Unmarshal(data)
	if err != nil {
		return err
	}
	return e.Load(lit)
}

// LoadText replaces the document with one paragraph per line of text.
func (e *Engine) LoadText(text string) error {
	root := builtin.FromPlainText(text)
	return e.write(events.OriginLocal, func() error {
		e.replaceRoot(root)
		return nil
	})
}

func (e *Engine) replaceRoot(root *model.Component) {
	if e.sub != nil {
		e.sub.Cancel()
	}
	old := e.root
	e.root = root
	e.sel.SetRoot(root)
	caretToStart(e.sel, root)
	e.tracker.Clear()
	e.hist.SetRoot(root)
	e.sub = root.Marker().OnChange(e.onOperation)
	old.Destroy()
	e.queue(events.TopicLoaded, events.DocumentLoaded{
		Name:     root.Name(),
		Revision: uint64(e.tracker.Revision()),
	})
}

// Literal returns the persisted form of the document.
func (e *Engine) Literal() literal.Component {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.root.Literal()
}

// MarshalJSON encodes the document literal.
func (e *Engine) MarshalJSON() ([]byte, error) {
	return literal.Marshal(e.Literal())
}

// Text returns the plain text of the document.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.root.ToString()
}

// Selection returns the serializable selection.
func (e *Engine) Selection() Paths {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.Paths()
}

// Select restores a serialized selection. It reports false when a path no
// longer resolves, in which case the caret moves to the document start.
func (e *Engine) Select(p Paths) bool {
	var ok bool
	_ = e.write(events.OriginLocal, func() error {
		ok = e.sel.Restore(p)
		return nil
	})
	return ok
}

// Revision returns the revision of the latest logged operation.
func (e *Engine) Revision() Revision { return e.tracker.Revision() }

// ChangesSince returns the logged operations after rev.
func (e *Engine) ChangesSince(rev Revision) ([]Record, error) {
	return e.tracker.Since(rev)
}

// ChangeSet summarizes the operations after rev.
func (e *Engine) ChangeSet(rev Revision) (*tracking.ChangeSet, error) {
	return e.tracker.BuildChangeSet(rev)
}

// Snapshot stores the current document under name.
func (e *Engine) Snapshot(name string) SnapshotID {
	var id SnapshotID
	_ = e.write(events.OriginLocal, func() error {
		id = e.tracker.CreateSnapshot(name, e.root.Literal())
		e.queue(events.TopicSnapshotCreated, events.SnapshotCreated{
			ID:       string(id),
			Name:     name,
			Revision: uint64(e.tracker.Revision()),
		})
		return nil
	})
	return id
}

// RestoreSnapshot brings the document back to a named snapshot as one
// undoable edit.
func (e *Engine) RestoreSnapshot(name string) error {
	snap, err := e.tracker.GetSnapshotByName(name)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}
	return e.Update(func(root *model.Component, sel *selection.Selection) error {
		if err := root.Restore(snap.Literal(), e.reg); err != nil {
			return err
		}
		caretToStart(sel, root)
		return nil
	})
}

// Snapshots lists the named snapshots.
func (e *Engine) Snapshots() []*tracking.Snapshot {
	return e.tracker.ListSnapshots()
}

// onOperation runs for every root operation, always with the lock held.
func (e *Engine) onOperation(op *operation.Operation) {
	rev := e.tracker.Record(op, e.origin)
	e.batch = append(e.batch, op)
	e.queue(events.TopicOperation, events.OperationApplied{
		Operation: op,
		Origin:    e.origin,
		Revision:  uint64(rev),
	})
}

func (e *Engine) queue(t topic.Topic, payload any) {
	e.outbox = append(e.outbox, event.NewEvent(t, payload, source))
}

// write runs fn under the lock with origin attached to every operation,
// then publishes the queued events.
func (e *Engine) write(origin string, fn func() error) error {
	e.mu.Lock()
	before := e.sel.Paths()
	e.origin = origin
	e.batch = nil
	err := fn()
	e.origin = events.OriginLocal
	e.batch = nil
	if after := e.sel.Paths(); !samePaths(before, after) {
		e.queue(events.TopicSelectionChanged, events.SelectionChanged{
			Paths:     after,
			Collapsed: e.sel.IsCollapsed(),
		})
	}
	out := e.outbox
	e.outbox = nil
	e.mu.Unlock()

	e.publish(out)
	return err
}

func (e *Engine) publish(out []any) {
	for _, ev := range out {
		if err := e.bus.Publish(context.Background(), ev); err != nil {
			e.logger.Warn("event delivery failed", zap.Error(err))
		}
	}
}

func samePaths(a, b Paths) bool {
	return slices.Equal(a.Anchor, b.Anchor) && slices.Equal(a.Focus, b.Focus)
}

// caretToStart places the caret at the start of the first slot that takes
// text, or the first root slot.
func caretToStart(sel *selection.Selection, root *model.Component) {
	var target *model.Slot
	model.Walk(root, func(s *model.Slot) bool {
		if s.Allows(model.Text) {
			target = s
			return false
		}
		return true
	})
	if target == nil && root.SlotCount() > 0 {
		target = root.SlotAt(0)
	}
	if target == nil {
		sel.Unselect()
		return
	}
	sel.SetPosition(target, 0)
}
