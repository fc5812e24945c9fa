package operation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node in the document tree from the root component.
//
// Integer steps alternate between a slot index within a component and a
// component offset within a slot: [slot, component, slot, ...]. A path of
// odd length therefore ends at a slot, a path of even length at a component.
// The string step "state" switches into a component's observed state, after
// which string steps are map keys and integer steps are list indices.
type Path []any

// StateStep marks the switch from tree addressing into component state.
const StateStep = "state"

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Prepend returns a new path with step in front.
func (p Path) Prepend(step any) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, step)
	return append(out, p...)
}

// Equal reports whether two paths address the same node.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the path as "/0/2/state/items".
func (p Path) String() string {
	var b strings.Builder
	for _, step := range p {
		b.WriteByte('/')
		switch v := step.(type) {
		case int:
			b.WriteString(strconv.Itoa(v))
		case string:
			b.WriteString(v)
		default:
			fmt.Fprint(&b, v)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// UnmarshalJSON decodes a path, restoring integer steps.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = nil
		return nil
	}
	out := make(Path, len(raw))
	for i, step := range raw {
		switch v := step.(type) {
		case float64:
			out[i] = int(v)
		case string:
			out[i] = v
		default:
			return fmt.Errorf("invalid path step %v", step)
		}
	}
	*p = out
	return nil
}
