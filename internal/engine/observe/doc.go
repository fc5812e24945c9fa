// Package observe provides change-tracked containers for component state.
//
// A Map or List wraps plain JSON-like values. Nested maps and slices are
// wrapped on assignment, so every level owns a ChangeMarker linked to its
// container. Each mutation method records a reversible operation on the
// container's marker, which bubbles up with the value's key prepended to the
// path:
//
//	state := observe.NewMap(map[string]any{"todos": []any{}})
//	todos, _ := state.List("todos")
//	todos.Push(map[string]any{"title": "write docs", "done": false})
//	// operation path relative to state: ["todos"]
//
// Reading never records anything. Use ToPlain to obtain an untracked copy.
package observe
