package observe

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// Map is an observed string-keyed container. Keys keep insertion order.
type Map struct {
	marker *marker.ChangeMarker
	keys   []string
	values map[string]any
}

// NewMap wraps init. Initial keys are taken in sorted order.
func NewMap(init map[string]any) *Map {
	m := &Map{
		marker: marker.New(),
		values: make(map[string]any, len(init)),
	}
	keys := make([]string, 0, len(init))
	for k := range init {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.put(k, init[k])
	}
	return m
}

// Marker returns the map's change marker.
func (m *Map) Marker() *marker.ChangeMarker {
	return m.marker
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return slices.Clone(m.keys)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Get returns the value stored at key. Nested containers are returned as
// *Map or *List.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Map returns the nested map stored at key.
func (m *Map) Map(key string) (*Map, bool) {
	v, ok := m.values[key].(*Map)
	return v, ok
}

// List returns the nested list stored at key.
func (m *Map) List(key string) (*List, bool) {
	v, ok := m.values[key].(*List)
	return v, ok
}

// Set stores value at key and records the change. Setting a value equal to
// the current one records nothing.
func (m *Map) Set(key string, value any) {
	old, had := m.values[key]
	if had && equal(old, value) {
		return
	}
	var oldPlain any
	if had {
		oldPlain = Plain(old)
	}
	m.put(key, value)

	apply := []operation.Action{{Type: operation.ActionPropSet, Name: key, Value: Plain(m.values[key])}}
	unApply := []operation.Action{{Type: operation.ActionPropDelete, Name: key}}
	if had {
		unApply[0] = operation.Action{Type: operation.ActionPropSet, Name: key, Value: oldPlain}
	}
	m.marker.MarkAsDirtied(operation.New(apply, unApply))
}

// Delete removes key and records the change. It reports whether the key
// was present.
func (m *Map) Delete(key string) bool {
	old, had := m.values[key]
	if !had {
		return false
	}
	oldPlain := Plain(old)
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	detach(old)

	m.marker.MarkAsDirtied(operation.New(
		[]operation.Action{{Type: operation.ActionPropDelete, Name: key}},
		[]operation.Action{{Type: operation.ActionPropSet, Name: key, Value: oldPlain}},
	))
	return true
}

// ToPlain returns an untracked deep copy.
func (m *Map) ToPlain() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = Plain(m.values[k])
	}
	return out
}

// Apply replays propSet and propDelete actions.
func (m *Map) Apply(actions []operation.Action) error {
	for _, a := range actions {
		switch a.Type {
		case operation.ActionPropSet:
			m.Set(a.Name, a.Value)
		case operation.ActionPropDelete:
			m.Delete(a.Name)
		default:
			return fmt.Errorf("%w: %s on state map", operation.ErrInvalidAction, a.Type)
		}
	}
	return nil
}

func (m *Map) put(key string, value any) {
	old, had := m.values[key]
	if had {
		detach(old)
	} else {
		m.keys = append(m.keys, key)
	}
	v := wrap(value)
	m.values[key] = v
	if cm := markerOf(v); cm != nil {
		cm.SetParent(m.marker, func() (any, bool) {
			if cur, ok := m.values[key]; ok && cur == v {
				return key, true
			}
			return nil, false
		})
	}
}
