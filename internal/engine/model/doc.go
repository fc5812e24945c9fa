// Package model implements the document tree: components own slots, slots
// hold text runs and child components with formats and attributes.
//
// # Structure
//
//   - [Content]: ordered text runs and component references; adjacent runs
//     are always merged.
//   - [FormatMap]: per formatter, sorted non-overlapping ranges with values.
//   - [Slot]: content, formats, attributes and a cursor. Every mutation
//     records an operation on the slot's marker.
//   - [Component]: a named node with an observed state map and slots.
//   - [Registry]: resolves serialized names and rebuilds trees from literals.
//
// # Offsets
//
// Offsets count UTF-16 code units. A component is one unit. An empty slot
// holds a single newline placeholder, so a slot's length is never zero.
//
// # Operations
//
// Mutations emit operations whose Apply and UnApply sequences are exact
// inverses. [Apply] replays actions at a path; replaying UnApply right after
// Apply restores the slot's literal exactly:
//
//	slot.MoveTo(0)
//	slot.Insert("hello", model.Format(bold, true))
//	// operation: apply [insert "hello" {bold:true}], unApply [delete 5]
//
// The model is not safe for concurrent use. A document has a single writer.
package model
