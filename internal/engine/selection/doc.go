// Package selection tracks a document range as two positions, anchor and
// focus, each a slot and an offset inside it.
//
// The anchor is where the range started and the focus where it ends; the
// focus may precede the anchor. Start and End return the two positions in
// document order.
//
// # Scopes
//
// SelectedScopes splits a range into per-slot spans below the closest
// common ancestor slot. Components only partially covered are descended
// into; components fully covered appear as a single unit of their parent
// slot's span. DeepScopes additionally lists every slot inside the fully
// covered components.
//
// # Paths
//
// Paths serializes a selection as index paths. Each path is the slot path
// (slot and component indices alternating) followed by the offset:
//
//	{"anchor": [0, 2, 1, 4], "focus": [0, 5]}
//
// Restore resolves paths against the current tree. A path that no longer
// resolves collapses the selection to the first slot of the document.
package selection
