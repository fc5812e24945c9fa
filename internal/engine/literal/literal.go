// Package literal defines the persisted JSON form of a document tree.
//
// A literal is a plain value snapshot of a component or slot. It carries no
// change tracking and no parent links, so it can be copied, stored in a
// history entry, shipped over the wire, and turned back into live model
// objects by a registry.
//
// The shapes mirror the wire format:
//
//	{"name": "paragraph", "state": {...}, "slots": [
//	    {"schema": [1, 2], "state": null, "content": ["he", {...}, "llo"],
//	     "formats": {"bold": [{"startIndex": 0, "endIndex": 2, "value": true}]}}
//	]}
package literal

import (
	"encoding/json"

	"github.com/mitchellh/copystructure"
)

// ContentType classifies what may be stored in a slot.
type ContentType int

const (
	// Text is a run of characters.
	Text ContentType = 1
	// InlineComponent is a component that flows with text.
	InlineComponent ContentType = 2
	// BlockComponent is a component that occupies its own line.
	BlockComponent ContentType = 3
)

// String returns the name of the content type.
func (t ContentType) String() string {
	switch t {
	case Text:
		return "text"
	case InlineComponent:
		return "inline"
	case BlockComponent:
		return "block"
	default:
		return "unknown"
	}
}

// FormatRange is a half-open span [StartIndex, EndIndex) carrying a format value.
type FormatRange struct {
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
	Value      any `json:"value"`
}

// Len returns the number of positions covered by the range.
func (r FormatRange) Len() int {
	return r.EndIndex - r.StartIndex
}

// Component is the persisted form of a component.
type Component struct {
	Name  string         `json:"name"`
	State map[string]any `json:"state,omitempty"`
	Slots []Slot         `json:"slots"`
}

// Slot is the persisted form of a slot.
type Slot struct {
	Schema     []ContentType            `json:"schema"`
	State      any                      `json:"state"`
	Attributes map[string]any           `json:"attributes,omitempty"`
	Content    Content                  `json:"content"`
	Formats    map[string][]FormatRange `json:"formats"`
}

// Clone returns a deep copy of the component literal.
func (c Component) Clone() Component {
	out := Component{
		Name:  c.Name,
		State: CloneMap(c.State),
		Slots: make([]Slot, len(c.Slots)),
	}
	for i, s := range c.Slots {
		out.Slots[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the slot literal.
func (s Slot) Clone() Slot {
	out := Slot{
		Schema:     append([]ContentType(nil), s.Schema...),
		State:      CloneValue(s.State),
		Attributes: CloneMap(s.Attributes),
		Content:    s.Content.Clone(),
	}
	if s.Formats != nil {
		out.Formats = make(map[string][]FormatRange, len(s.Formats))
		for name, ranges := range s.Formats {
			cp := make([]FormatRange, len(ranges))
			for i, r := range ranges {
				cp[i] = FormatRange{StartIndex: r.StartIndex, EndIndex: r.EndIndex, Value: CloneValue(r.Value)}
			}
			out.Formats[name] = cp
		}
	}
	return out
}

// CloneValue deep-copies a plain JSON-like value.
// Values that cannot be copied are returned as is.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}
	cp, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	return cp
}

// CloneMap deep-copies a plain map. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp, ok := CloneValue(m).(map[string]any)
	if !ok {
		return m
	}
	return cp
}

// Marshal encodes a component literal as JSON.
func Marshal(c Component) ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal decodes a component literal from JSON.
func Unmarshal(data []byte) (Component, error) {
	var c Component
	err := json.Unmarshal(data, &c)
	return c, err
}
