// Package history provides undo/redo for a document tree.
//
// History keeps a bounded list of entries and a pointer into it. Each entry
// holds the root literal and the selection paths at the moment it was
// recorded, plus the operations that led there from the previous entry:
//
//	h := history.New(root, registry, sel, history.WithMaxSize(500))
//	h.Listen()          // records the initial entry
//	// ... edits ...
//	h.RecordSnapshot()  // closes the batch of collected operations
//
//	h.Back()    // replays UnApply of the current entry in reverse
//	h.Forward() // replays Apply of the next entry
//
// Replay goes through the same path as any edit. When an operation no
// longer fits the tree (for example after unrecorded remote edits) the
// target entry's literal is restored wholesale instead.
//
// Recording a snapshot after Back discards the entries ahead of the
// pointer. Operations arriving while the history is paused or replaying
// are not collected.
package history
