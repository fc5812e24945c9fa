package model

import (
	"fmt"
	"sort"

	"github.com/dshills/inkwell/internal/engine/literal"
)

// Registry maps serialized names to formatters, attributes and component
// definitions. It turns literals back into live model objects.
type Registry struct {
	formatters map[string]*Formatter
	attributes map[string]*Attribute
	components map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]*Formatter),
		attributes: make(map[string]*Attribute),
		components: make(map[string]*Definition),
	}
}

// RegisterFormatter adds formatters. Registering the same formatter twice is
// allowed; a different formatter under a taken name is not.
func (r *Registry) RegisterFormatter(fs ...*Formatter) error {
	for _, f := range fs {
		if cur, ok := r.formatters[f.Name()]; ok && cur != f {
			return fmt.Errorf("%w: formatter %q", ErrDuplicateName, f.Name())
		}
		r.formatters[f.Name()] = f
	}
	return nil
}

// RegisterAttribute adds attributes.
func (r *Registry) RegisterAttribute(as ...*Attribute) error {
	for _, a := range as {
		if cur, ok := r.attributes[a.Name()]; ok && cur != a {
			return fmt.Errorf("%w: attribute %q", ErrDuplicateName, a.Name())
		}
		r.attributes[a.Name()] = a
	}
	return nil
}

// RegisterComponent adds component definitions.
func (r *Registry) RegisterComponent(defs ...*Definition) error {
	for _, d := range defs {
		if cur, ok := r.components[d.Name]; ok && cur != d {
			return fmt.Errorf("%w: component %q", ErrDuplicateName, d.Name)
		}
		r.components[d.Name] = d
	}
	return nil
}

// Formatter looks up a formatter by name.
func (r *Registry) Formatter(name string) (*Formatter, bool) {
	f, ok := r.formatters[name]
	return f, ok
}

// Attribute looks up an attribute by name.
func (r *Registry) Attribute(name string) (*Attribute, bool) {
	a, ok := r.attributes[name]
	return a, ok
}

// Definition looks up a component definition by name.
func (r *Registry) Definition(name string) (*Definition, bool) {
	d, ok := r.components[name]
	return d, ok
}

// NewComponent builds a detached component from its literal.
func (r *Registry) NewComponent(lit literal.Component) (*Component, error) {
	def, ok := r.components[lit.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, lit.Name)
	}
	slots := make([]*Slot, len(lit.Slots))
	for i, sl := range lit.Slots {
		s, err := r.NewSlot(sl)
		if err != nil {
			return nil, fmt.Errorf("component %q slot %d: %w", lit.Name, i, err)
		}
		slots[i] = s
	}
	return NewComponent(def, literal.CloneMap(lit.State), slots...), nil
}

// NewSlot builds a detached slot from its literal.
func (r *Registry) NewSlot(lit literal.Slot) (*Slot, error) {
	s := NewSlot(lit.Schema, WithState(literal.CloneValue(lit.State)))
	if len(lit.Content) > 0 {
		s.content = NewContent()
		for _, item := range lit.Content {
			switch v := item.(type) {
			case string:
				s.content.Append(v)
			case literal.Component, *literal.Component:
				comp, err := r.componentItem(v)
				if err != nil {
					return nil, err
				}
				s.content.Append(comp)
				s.adopt(comp)
			default:
				return nil, fmt.Errorf("%w: %T", literal.ErrInvalidContent, item)
			}
		}
		if s.content.Length() == 0 {
			s.content.Append(Placeholder)
		}
	}
	for _, name := range sortedKeys(lit.Formats) {
		ranges := lit.Formats[name]
		f, ok := r.formatters[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormatter, name)
		}
		for _, rg := range ranges {
			s.format.Apply(f, FormatRange{
				StartIndex: rg.StartIndex,
				EndIndex:   min(rg.EndIndex, s.Length()),
				Value:      literal.CloneValue(rg.Value),
			}, false)
		}
	}
	s.format.Resize(s.Length())
	for _, name := range sortedKeys(lit.Attributes) {
		value := lit.Attributes[name]
		a, ok := r.attributes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
		s.setAttr(a, literal.CloneValue(value))
	}
	return s, nil
}

func (r *Registry) componentItem(v any) (*Component, error) {
	switch lit := v.(type) {
	case literal.Component:
		return r.NewComponent(lit)
	case *literal.Component:
		return r.NewComponent(*lit)
	default:
		return nil, fmt.Errorf("%w: %T", literal.ErrInvalidContent, v)
	}
}

// formatEntries resolves a name-keyed format map.
func (r *Registry) formatEntries(formats map[string]any) ([]FormatEntry, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	out := make([]FormatEntry, 0, len(formats))
	for _, name := range sortedKeys(formats) {
		value := formats[name]
		f, ok := r.formatters[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormatter, name)
		}
		out = append(out, FormatEntry{Formatter: f, Value: literal.CloneValue(value)})
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
