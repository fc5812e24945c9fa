// Package marker tracks whether a document node needs re-rendering and
// propagates change notifications up the tree.
//
// Every slot, component and observed state container owns a ChangeMarker.
// Markers are linked to their parent marker together with a locate function
// that reports the node's current key within its parent. When a node records
// an operation the marker flags itself, notifies its own listeners, and then
// forwards the operation to the parent with the node's key prepended to the
// operation path. The root marker therefore sees every operation with a path
// relative to the document root.
package marker

import "github.com/dshills/inkwell/internal/engine/operation"

// LocateFunc reports the key of a node within its parent: an int index or a
// string key. It returns false when the node is no longer held by the parent.
type LocateFunc func() (any, bool)

// ChangeMarker holds the changed and dirty flags of one node.
//
// changed means the node or something beneath it changed since the last
// render. dirty means the node itself must be re-rendered. A fresh marker is
// both changed and dirty.
type ChangeMarker struct {
	changed bool
	dirty   bool

	parent *ChangeMarker
	locate LocateFunc

	changeListeners      listeners[*operation.Operation]
	forceChangeListeners listeners[struct{}]
	forceDirtyListeners  listeners[struct{}]
}

// New creates a marker in the changed and dirty state.
func New() *ChangeMarker {
	return &ChangeMarker{changed: true, dirty: true}
}

// Changed reports whether the node or a descendant changed since the last render.
func (m *ChangeMarker) Changed() bool {
	return m.changed
}

// Dirty reports whether the node itself must be re-rendered.
func (m *ChangeMarker) Dirty() bool {
	return m.dirty
}

// Parent returns the parent marker, or nil for a detached or root node.
func (m *ChangeMarker) Parent() *ChangeMarker {
	return m.parent
}

// SetParent links the marker under parent. locate reports the node's key
// within the parent at the time an operation is forwarded.
func (m *ChangeMarker) SetParent(parent *ChangeMarker, locate LocateFunc) {
	m.parent = parent
	m.locate = locate
}

// Detach clears the parent link. Listeners stay registered.
func (m *ChangeMarker) Detach() {
	m.parent = nil
	m.locate = nil
}

// Destroy detaches the marker and drops all listeners.
func (m *ChangeMarker) Destroy() {
	m.Detach()
	m.changeListeners.clear()
	m.forceChangeListeners.clear()
	m.forceDirtyListeners.clear()
}

// MarkAsChanged records an operation that does not require this node to be
// re-rendered. The operation is emitted and forwarded to the parent, which is
// marked changed as well.
func (m *ChangeMarker) MarkAsChanged(op *operation.Operation) {
	m.changed = true
	m.changeListeners.emit(op)
	if next, step, ok := m.up(); ok {
		next.MarkAsChanged(op.WithPrefix(step))
	}
}

// MarkAsDirtied records an operation that requires this node to be
// re-rendered. Ancestors are marked dirty transitively.
func (m *ChangeMarker) MarkAsDirtied(op *operation.Operation) {
	m.changed = true
	m.dirty = true
	m.changeListeners.emit(op)
	if next, step, ok := m.up(); ok {
		next.MarkAsDirtied(op.WithPrefix(step))
	}
}

// ForceMarkChanged flags the node changed without an operation. It is a
// no-op while the node is already changed, so repeated calls between renders
// emit once.
func (m *ChangeMarker) ForceMarkChanged() {
	if m.changed {
		return
	}
	m.changed = true
	m.forceChangeListeners.emit(struct{}{})
	if m.parent != nil {
		m.parent.ForceMarkChanged()
	}
}

// ForceMarkDirtied flags the node dirty without an operation. It is a no-op
// while the node is already dirty.
func (m *ChangeMarker) ForceMarkDirtied() {
	if m.dirty {
		return
	}
	m.dirty = true
	m.changed = true
	m.forceDirtyListeners.emit(struct{}{})
	if m.parent != nil {
		m.parent.ForceMarkDirtied()
	}
}

// Rendered clears both flags. The view layer calls it after drawing the node.
func (m *ChangeMarker) Rendered() {
	m.changed = false
	m.dirty = false
}

// Reset sets both flags, forcing the node to be drawn again.
func (m *ChangeMarker) Reset() {
	m.changed = true
	m.dirty = true
}

// Path returns the node's path from the topmost reachable ancestor.
// It returns false if a locate function reports the node detached.
func (m *ChangeMarker) Path() (operation.Path, bool) {
	path := operation.Path{}
	for cur := m; cur.parent != nil; cur = cur.parent {
		if cur.locate == nil {
			return nil, false
		}
		step, ok := cur.locate()
		if !ok {
			return nil, false
		}
		path = path.Prepend(step)
	}
	return path, true
}

// OnChange registers fn for every operation recorded on or below this node.
func (m *ChangeMarker) OnChange(fn func(*operation.Operation)) Subscription {
	return m.changeListeners.add(fn)
}

// OnForceChange registers fn for ForceMarkChanged notifications.
func (m *ChangeMarker) OnForceChange(fn func()) Subscription {
	return m.forceChangeListeners.add(func(struct{}) { fn() })
}

// OnForceDirty registers fn for ForceMarkDirtied notifications.
func (m *ChangeMarker) OnForceDirty(fn func()) Subscription {
	return m.forceDirtyListeners.add(func(struct{}) { fn() })
}

func (m *ChangeMarker) up() (*ChangeMarker, any, bool) {
	if m.parent == nil || m.locate == nil {
		return nil, nil, false
	}
	step, ok := m.locate()
	if !ok {
		return nil, nil, false
	}
	return m.parent, step, true
}
