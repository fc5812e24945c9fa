package model

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/observe"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// Resolve returns the node path addresses below root: a *Slot, a
// *Component, or an observe.Container inside a component's state.
func Resolve(root *Component, path operation.Path) (any, error) {
	comp := root
	var slot *Slot
	for i, step := range path {
		if key, ok := step.(string); ok {
			if slot != nil || key != operation.StateStep {
				return nil, fmt.Errorf("%w: unexpected step %q at %d", ErrPathNotFound, key, i)
			}
			return observe.Resolve(comp.state, path[i+1:])
		}
		idx, ok := step.(int)
		if !ok {
			return nil, fmt.Errorf("%w: invalid step %v at %d", ErrPathNotFound, step, i)
		}
		if slot == nil {
			slot = comp.SlotAt(idx)
			if slot == nil {
				return nil, fmt.Errorf("%w: no slot %d at %d", ErrPathNotFound, idx, i)
			}
			comp = nil
			continue
		}
		child, ok := slot.At(idx).(*Component)
		if !ok {
			return nil, fmt.Errorf("%w: no component at offset %d at %d", ErrPathNotFound, idx, i)
		}
		comp, slot = child, nil
	}
	if slot != nil {
		return slot, nil
	}
	return comp, nil
}

// Apply replays actions on the node path addresses below root. The
// mutations are recorded like local edits, so the root marker emits them.
func Apply(root *Component, path operation.Path, actions []operation.Action, reg *Registry) error {
	target, err := Resolve(root, path)
	if err != nil {
		return &ApplyError{Path: path, Action: -1, Err: err}
	}
	switch t := target.(type) {
	case *Slot:
		err = t.apply(actions, reg)
	case *Component:
		err = t.apply(actions, reg)
	case observe.Container:
		err = t.Apply(actions)
	}
	if err != nil {
		var ae *ApplyError
		if errors.As(err, &ae) {
			ae.Path = path
			return ae
		}
		return &ApplyError{Path: path, Action: -1, Err: err}
	}
	return nil
}

// ApplyOperation replays op.Apply below root.
func ApplyOperation(root *Component, op *operation.Operation, reg *Registry) error {
	return Apply(root, op.Path, op.Apply, reg)
}

// RevertOperation replays op.UnApply below root.
func RevertOperation(root *Component, op *operation.Operation, reg *Registry) error {
	return Apply(root, op.Path, op.UnApply, reg)
}

func (s *Slot) apply(actions []operation.Action, reg *Registry) error {
	s.MoveTo(0)
	for i, a := range actions {
		if err := s.applyAction(a, reg); err != nil {
			return &ApplyError{Action: i, Err: err}
		}
	}
	return nil
}

func (s *Slot) applyAction(a operation.Action, reg *Registry) error {
	switch a.Type {
	case operation.ActionRetain:
		if a.Offset < 0 || s.index+a.Offset > s.Length() {
			return fmt.Errorf("%w: retain %d from %d exceeds length %d", ErrInvalidAction, a.Offset, s.index, s.Length())
		}
		if len(a.Formats) > 0 {
			entries, err := reg.formatEntries(a.Formats)
			if err != nil {
				return err
			}
			s.applyFormats(s.index, s.index+a.Offset, entries, false)
		}
		s.index += a.Offset
	case operation.ActionInsert:
		content, err := s.contentFor(a.Content, reg)
		if err != nil {
			return err
		}
		entries, err := reg.formatEntries(a.Formats)
		if err != nil {
			return err
		}
		if err := s.checkBoundary(s.index); err != nil {
			return err
		}
		if comp, ok := content.(*Component); ok && comp.parent != nil {
			comp.parent.RemoveComponent(comp)
		}
		s.insert(content, entries, true)
	case operation.ActionDelete:
		if a.Count < 0 {
			return fmt.Errorf("%w: delete %d", ErrInvalidAction, a.Count)
		}
		if err := s.checkBoundary(s.index); err != nil {
			return err
		}
		if err := s.checkBoundary(min(s.index+a.Count, s.Length())); err != nil {
			return err
		}
		s.Delete(a.Count)
	case operation.ActionAttrSet, operation.ActionAttrDelete:
		attr, ok := reg.Attribute(a.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAttribute, a.Name)
		}
		if a.Type == operation.ActionAttrSet {
			s.SetAttribute(attr, a.Value)
		} else {
			s.RemoveAttribute(attr)
		}
	default:
		return fmt.Errorf("%w: %s on slot", ErrInvalidAction, a.Type)
	}
	return nil
}

// checkBoundary rejects edits at an offset inside a surrogate pair. Retains
// may stop there since formats are kept per unit.
func (s *Slot) checkBoundary(index int) error {
	if s.content.Boundary(index) != index {
		return fmt.Errorf("%w: offset %d splits a character", ErrInvalidAction, index)
	}
	return nil
}

// contentFor turns an insert payload into insertable content, checking the
// schema.
func (s *Slot) contentFor(payload any, reg *Registry) (any, error) {
	var content any
	var ct ContentType
	switch v := payload.(type) {
	case string:
		content, ct = v, Text
	case *Component:
		content, ct = v, v.Type()
	case literal.Component, *literal.Component:
		comp, err := reg.componentItem(v)
		if err != nil {
			return nil, err
		}
		content, ct = comp, comp.Type()
	default:
		return nil, fmt.Errorf("%w: insert payload %T", ErrInvalidAction, payload)
	}
	if !s.Allows(ct) {
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, ct)
	}
	return content, nil
}

func (c *Component) apply(actions []operation.Action, reg *Registry) error {
	cursor := 0
	for i, a := range actions {
		var err error
		switch a.Type {
		case operation.ActionRetain:
			if a.Offset < 0 || cursor+a.Offset > len(c.slots) {
				err = fmt.Errorf("%w: retain %d past %d slots", ErrInvalidAction, a.Offset, len(c.slots))
				break
			}
			cursor += a.Offset
		case operation.ActionInsertSlot:
			var s *Slot
			s, err = c.slotFor(a.Content, reg)
			if err == nil {
				c.InsertSlot(cursor, s)
				cursor++
			}
		case operation.ActionDelete:
			for n := 0; n < a.Count && cursor < len(c.slots); n++ {
				c.RemoveSlotAt(cursor)
			}
		default:
			err = fmt.Errorf("%w: %s on component", ErrInvalidAction, a.Type)
		}
		if err != nil {
			return &ApplyError{Action: i, Err: err}
		}
	}
	return nil
}

func (c *Component) slotFor(payload any, reg *Registry) (*Slot, error) {
	switch v := payload.(type) {
	case literal.Slot:
		return reg.NewSlot(v)
	case *literal.Slot:
		return reg.NewSlot(*v)
	case *Slot:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: insertSlot payload %T", ErrInvalidAction, payload)
	}
}
