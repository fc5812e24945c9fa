package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNothingToUndo indicates there is no earlier history entry.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates there is no later history entry.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoSelection indicates an edit needs a selection and none is set.
	ErrNoSelection = errors.New("no selection")

	// ErrRejected indicates the document refused an edit, for example
	// because the slot schema does not accept the content.
	ErrRejected = errors.New("edit rejected")

	// ErrSnapshotNotFound indicates a named snapshot does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrReadOnly indicates a local edit on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)
