package observe

import (
	"fmt"
	"reflect"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/marker"
	"github.com/dshills/inkwell/internal/engine/operation"
)

// Container is an observed state node that can replay actions.
type Container interface {
	// Marker returns the container's change marker.
	Marker() *marker.ChangeMarker
	// Apply replays an action sequence against the container.
	Apply(actions []operation.Action) error
}

// wrap converts plain maps and slices into observed containers.
// Containers already owned elsewhere are copied.
func wrap(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return NewMap(x)
	case []any:
		return NewList(x)
	case *Map:
		if x.marker.Parent() != nil {
			return NewMap(x.ToPlain())
		}
		return x
	case *List:
		if x.marker.Parent() != nil {
			return NewList(x.ToPlain())
		}
		return x
	default:
		return literal.CloneValue(v)
	}
}

// Plain returns an untracked deep copy of v.
func Plain(v any) any {
	switch x := v.(type) {
	case *Map:
		return x.ToPlain()
	case *List:
		return x.ToPlain()
	default:
		return literal.CloneValue(v)
	}
}

func markerOf(v any) *marker.ChangeMarker {
	if c, ok := v.(Container); ok {
		return c.Marker()
	}
	return nil
}

func detach(v any) {
	if m := markerOf(v); m != nil {
		m.Detach()
	}
}

func equal(a, b any) bool {
	return reflect.DeepEqual(Plain(a), Plain(b))
}

// Resolve walks path from c. String steps select map keys, integer steps
// select list indices. Every step must land on a container.
func Resolve(c Container, path operation.Path) (Container, error) {
	cur := c
	for _, step := range path {
		var next any
		switch node := cur.(type) {
		case *Map:
			key, ok := step.(string)
			if !ok {
				return nil, fmt.Errorf("%w: map step %v", operation.ErrPathNotFound, step)
			}
			next, _ = node.Get(key)
		case *List:
			idx, ok := step.(int)
			if !ok || idx < 0 || idx >= node.Len() {
				return nil, fmt.Errorf("%w: list step %v", operation.ErrPathNotFound, step)
			}
			next = node.At(idx)
		}
		nc, ok := next.(Container)
		if !ok {
			return nil, fmt.Errorf("%w: step %v is not a container", operation.ErrPathNotFound, step)
		}
		cur = nc
	}
	return cur, nil
}
