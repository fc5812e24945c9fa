package model

import (
	"slices"
	"sort"
	"strings"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/observe"
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/google/uuid"
)

// Definition describes a kind of component.
type Definition struct {
	// Name is the serialized component name.
	Name string

	// Type is InlineComponent or BlockComponent.
	Type ContentType

	// OnAttach runs when the component, or an ancestor, is inserted into a slot.
	OnAttach func(c *Component)

	// OnDetach runs when the component, or an ancestor, is removed from a slot.
	OnDetach func(c *Component)
}

// Component is a document node owning an ordered list of slots and an
// observed state map. Components are created detached and become part of
// the tree when inserted into a slot.
type Component struct {
	id     string
	def    *Definition
	state  *observe.Map
	slots  []*Slot
	parent *Slot
	marker *marker.ChangeMarker
}

// NewComponent creates a detached component. Slots already owned by another
// component are taken from it.
func NewComponent(def *Definition, state map[string]any, slots ...*Slot) *Component {
	c := &Component{
		id:     uuid.NewString(),
		def:    def,
		marker: marker.New(),
	}
	c.state = observe.NewMap(state)
	c.state.Marker().SetParent(c.marker, func() (any, bool) {
		return operation.StateStep, true
	})
	for _, s := range slots {
		if s == nil {
			continue
		}
		if s.parent != nil {
			s.parent.RemoveSlot(s)
		}
		c.slots = append(c.slots, s)
		c.adoptSlot(s)
	}
	return c
}

// ID returns the instance identifier. It is not serialized.
func (c *Component) ID() string { return c.id }

// Name returns the definition name.
func (c *Component) Name() string { return c.def.Name }

// Type returns InlineComponent or BlockComponent.
func (c *Component) Type() ContentType { return c.def.Type }

// Definition returns the component definition.
func (c *Component) Definition() *Definition { return c.def }

// State returns the observed state map.
func (c *Component) State() *observe.Map { return c.state }

// Parent returns the slot holding the component, or nil.
func (c *Component) Parent() *Slot { return c.parent }

// Marker returns the component's change marker.
func (c *Component) Marker() *marker.ChangeMarker { return c.marker }

// Slots returns the owned slots in order.
func (c *Component) Slots() []*Slot { return slices.Clone(c.slots) }

// SlotCount returns the number of owned slots.
func (c *Component) SlotCount() int { return len(c.slots) }

// SlotAt returns the slot at index, or nil.
func (c *Component) SlotAt(index int) *Slot {
	if index < 0 || index >= len(c.slots) {
		return nil
	}
	return c.slots[index]
}

// IndexOfSlot returns the index of s, or -1.
func (c *Component) IndexOfSlot(s *Slot) int {
	return slices.Index(c.slots, s)
}

// InsertSlot inserts s at index (clamped) and records the change.
// A slot owned elsewhere is taken from its owner first.
func (c *Component) InsertSlot(index int, s *Slot) bool {
	if s == nil || c.isInside(s) {
		return false
	}
	if s.parent != nil {
		s.parent.RemoveSlot(s)
	}
	index = max(0, min(index, len(c.slots)))
	c.slots = slices.Insert(c.slots, index, s)
	c.adoptSlot(s)
	c.record(
		append(retainTo(index), operation.Action{Type: operation.ActionInsertSlot, Content: s.Literal()}),
		append(retainTo(index), operation.Delete(1)),
	)
	return true
}

// AppendSlot adds s after the last slot.
func (c *Component) AppendSlot(s *Slot) bool {
	return c.InsertSlot(len(c.slots), s)
}

// RemoveSlot removes s and records the change.
func (c *Component) RemoveSlot(s *Slot) bool {
	return c.RemoveSlotAt(c.IndexOfSlot(s))
}

// RemoveSlotAt removes the slot at index and records the change.
func (c *Component) RemoveSlotAt(index int) bool {
	if index < 0 || index >= len(c.slots) {
		return false
	}
	s := c.slots[index]
	lit := s.Literal()
	c.slots = slices.Delete(c.slots, index, index+1)
	c.releaseSlot(s)
	c.record(
		append(retainTo(index), operation.Delete(1)),
		append(retainTo(index), operation.Action{Type: operation.ActionInsertSlot, Content: lit}),
	)
	return true
}

// Literal returns the persisted form of the component.
func (c *Component) Literal() literal.Component {
	slots := make([]literal.Slot, len(c.slots))
	for i, s := range c.slots {
		slots[i] = s.Literal()
	}
	return literal.Component{
		Name:  c.def.Name,
		State: c.state.ToPlain(),
		Slots: slots,
	}
}

// Clone returns a detached deep copy with a new ID.
func (c *Component) Clone() *Component {
	slots := make([]*Slot, len(c.slots))
	for i, s := range c.slots {
		slots[i] = s.Clone()
	}
	return NewComponent(c.def, c.state.ToPlain(), slots...)
}

// ToString returns the text of all slots, one line per slot.
func (c *Component) ToString() string {
	parts := make([]string, len(c.slots))
	for i, s := range c.slots {
		parts[i] = s.ToString()
	}
	text := strings.Join(parts, "\n")
	if c.def.Type == BlockComponent && c.parent != nil {
		text += "\n"
	}
	return text
}

// Restore replaces the slots and state with those of lit. The change is
// recorded like any other edit and every marker in the tree is reset.
func (c *Component) Restore(lit literal.Component, reg *Registry) error {
	slots := make([]*Slot, len(lit.Slots))
	for i, sl := range lit.Slots {
		s, err := reg.NewSlot(sl)
		if err != nil {
			return err
		}
		slots[i] = s
	}
	for len(c.slots) > 0 {
		c.RemoveSlotAt(len(c.slots) - 1)
	}
	for i, s := range slots {
		c.InsertSlot(i, s)
	}

	for _, k := range c.state.Keys() {
		if _, ok := lit.State[k]; !ok {
			c.state.Delete(k)
		}
	}
	keys := make([]string, 0, len(lit.State))
	for k := range lit.State {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.state.Set(k, lit.State[k])
	}
	c.ResetMarkers()
	return nil
}

// ResetMarkers resets the markers of the component and its whole subtree.
func (c *Component) ResetMarkers() {
	c.marker.Reset()
	c.state.Marker().Reset()
	for _, s := range c.slots {
		s.marker.Reset()
		for _, child := range s.Components() {
			child.ResetMarkers()
		}
	}
}

// Destroy detaches the component and drops every marker listener in its
// subtree.
func (c *Component) Destroy() {
	if c.parent != nil {
		c.parent.RemoveComponent(c)
	}
	c.destroyMarkers()
}

func (c *Component) destroyMarkers() {
	c.marker.Destroy()
	for _, s := range c.slots {
		s.marker.Destroy()
		for _, child := range s.Components() {
			child.destroyMarkers()
		}
	}
}

func (c *Component) record(apply, unApply []operation.Action) {
	c.marker.MarkAsDirtied(operation.New(apply, unApply))
}

// isInside reports whether c lies within the subtree of s.
func (c *Component) isInside(s *Slot) bool {
	for cur := c.parent; cur != nil; {
		if cur == s {
			return true
		}
		if cur.parent == nil {
			return false
		}
		cur = cur.parent.parent
	}
	return false
}

func (c *Component) adoptSlot(s *Slot) {
	s.parent = c
	s.marker.SetParent(c.marker, func() (any, bool) {
		if s.parent != c {
			return nil, false
		}
		at := c.IndexOfSlot(s)
		return at, at >= 0
	})
	for _, child := range s.Components() {
		child.attachTree()
	}
}

func (c *Component) releaseSlot(s *Slot) {
	s.parent = nil
	s.marker.Detach()
	for _, child := range s.Components() {
		child.detachTree()
	}
}

func (c *Component) attachTree() {
	if c.def.OnAttach != nil {
		c.def.OnAttach(c)
	}
	for _, s := range c.slots {
		for _, child := range s.Components() {
			child.attachTree()
		}
	}
}

func (c *Component) detachTree() {
	for _, s := range c.slots {
		for _, child := range s.Components() {
			child.detachTree()
		}
	}
	if c.def.OnDetach != nil {
		c.def.OnDetach(c)
	}
}
