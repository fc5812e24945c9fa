package observe

import (
	"fmt"
	"slices"

	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// List is an observed ordered container.
type List struct {
	marker *marker.ChangeMarker
	items  []any
}

// NewList wraps init.
func NewList(init []any) *List {
	l := &List{marker: marker.New()}
	for _, v := range init {
		l.items = append(l.items, l.adopt(v))
	}
	return l
}

// Marker returns the list's change marker.
func (l *List) Marker() *marker.ChangeMarker {
	return l.marker
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the item at index, or nil when out of range.
func (l *List) At(index int) any {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	return l.items[index]
}

// Items returns the items. Nested containers are returned as *Map or *List.
func (l *List) Items() []any {
	return slices.Clone(l.items)
}

// Push appends values.
func (l *List) Push(values ...any) {
	l.Insert(len(l.items), values...)
}

// Pop removes and returns the last item as a plain value.
func (l *List) Pop() (any, bool) {
	if len(l.items) == 0 {
		return nil, false
	}
	return l.Remove(len(l.items)-1, 1)[0], true
}

// Insert inserts values at index. Index is clamped to the list bounds.
func (l *List) Insert(index int, values ...any) {
	if len(values) == 0 {
		return
	}
	index = max(0, min(index, len(l.items)))
	wrapped := make([]any, len(values))
	for i, v := range values {
		wrapped[i] = l.adopt(v)
	}
	l.items = slices.Insert(l.items, index, wrapped...)

	apply := retainTo(index)
	for _, v := range wrapped {
		apply = append(apply, operation.Action{Type: operation.ActionInsertValue, Value: Plain(v)})
	}
	unApply := append(retainTo(index), operation.Delete(len(values)))
	l.marker.MarkAsDirtied(operation.New(apply, unApply))
}

// Remove deletes count items starting at index and returns them as plain
// values.
func (l *List) Remove(index, count int) []any {
	if index < 0 || index >= len(l.items) || count <= 0 {
		return nil
	}
	end := min(index+count, len(l.items))
	removed := make([]any, 0, end-index)
	for _, v := range l.items[index:end] {
		removed = append(removed, Plain(v))
		detach(v)
	}
	l.items = slices.Delete(l.items, index, end)

	apply := append(retainTo(index), operation.Delete(end-index))
	unApply := retainTo(index)
	for _, v := range removed {
		unApply = append(unApply, operation.Action{Type: operation.ActionInsertValue, Value: v})
	}
	l.marker.MarkAsDirtied(operation.New(apply, unApply))
	return removed
}

// Set replaces the item at index. Setting an equal value records nothing.
func (l *List) Set(index int, value any) {
	if index < 0 || index >= len(l.items) {
		return
	}
	old := l.items[index]
	if equal(old, value) {
		return
	}
	oldPlain := Plain(old)
	detach(old)
	l.items[index] = l.adopt(value)

	apply := append(retainTo(index), operation.Delete(1),
		operation.Action{Type: operation.ActionInsertValue, Value: Plain(l.items[index])})
	unApply := append(retainTo(index), operation.Delete(1),
		operation.Action{Type: operation.ActionInsertValue, Value: oldPlain})
	l.marker.MarkAsDirtied(operation.New(apply, unApply))
}

// Filter removes every item for which keep returns false. Each removal is
// recorded separately.
func (l *List) Filter(keep func(v any) bool) {
	for i := len(l.items) - 1; i >= 0; i-- {
		if !keep(l.items[i]) {
			l.Remove(i, 1)
		}
	}
}

// Map replaces every item with fn's result. Each replacement is recorded
// separately.
func (l *List) Map(fn func(v any) any) {
	for i := range l.items {
		l.Set(i, fn(l.items[i]))
	}
}

// ToPlain returns an untracked deep copy.
func (l *List) ToPlain() []any {
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = Plain(v)
	}
	return out
}

// Apply replays retain, insertValue and delete actions. The whole sequence
// is checked against the list length first, so an invalid sequence leaves
// the list untouched.
func (l *List) Apply(actions []operation.Action) error {
	if err := checkListActions(actions, len(l.items)); err != nil {
		return err
	}
	cursor := 0
	for _, a := range actions {
		switch a.Type {
		case operation.ActionRetain:
			cursor += a.Offset
		case operation.ActionInsertValue:
			l.Insert(cursor, a.Value)
			cursor++
		case operation.ActionDelete:
			l.Remove(cursor, a.Count)
		}
	}
	return nil
}

func checkListActions(actions []operation.Action, n int) error {
	cursor := 0
	for _, a := range actions {
		switch a.Type {
		case operation.ActionRetain:
			if a.Offset < 0 || cursor+a.Offset > n {
				return fmt.Errorf("%w: retain %d from %d past end of list", operation.ErrInvalidAction, a.Offset, cursor)
			}
			cursor += a.Offset
		case operation.ActionInsertValue:
			cursor++
			n++
		case operation.ActionDelete:
			if a.Count < 0 || cursor+a.Count > n {
				return fmt.Errorf("%w: delete %d from %d past end of list", operation.ErrInvalidAction, a.Count, cursor)
			}
			n -= a.Count
		default:
			return fmt.Errorf("%w: %s on state list", operation.ErrInvalidAction, a.Type)
		}
	}
	return nil
}

func (l *List) adopt(value any) any {
	v := wrap(value)
	if cm := markerOf(v); cm != nil {
		cm.SetParent(l.marker, func() (any, bool) {
			for i, cur := range l.items {
				if cur == v {
					return i, true
				}
			}
			return nil, false
		})
	}
	return v
}

func retainTo(index int) []operation.Action {
	if index == 0 {
		return nil
	}
	return []operation.Action{operation.Retain(index)}
}
