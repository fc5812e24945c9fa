// Package events defines the topics and payloads published by an inkwell
// engine.
package events

import (
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/event/topic"
)

// Document topics.
const (
	// TopicOperation is published for every operation applied to the root.
	TopicOperation topic.Topic = "document.operation"

	// TopicLoaded is published after the document is replaced wholesale.
	TopicLoaded topic.Topic = "document.loaded"

	// TopicHistoryRecorded is published when a history entry is recorded.
	TopicHistoryRecorded topic.Topic = "document.history.recorded"

	// TopicHistoryBack is published after an undo.
	TopicHistoryBack topic.Topic = "document.history.back"

	// TopicHistoryForward is published after a redo.
	TopicHistoryForward topic.Topic = "document.history.forward"

	// TopicSelectionChanged is published when the selection moves.
	TopicSelectionChanged topic.Topic = "document.selection.changed"

	// TopicSnapshotCreated is published when a named snapshot is taken.
	TopicSnapshotCreated topic.Topic = "document.snapshot.created"

	// TopicRemoteApplied is published after a batch from a peer is applied.
	TopicRemoteApplied topic.Topic = "collab.remote.applied"
)

// Origins of an operation.
const (
	OriginLocal  = "local"
	OriginRemote = "remote"
	OriginUndo   = "undo"
	OriginRedo   = "redo"

	// OriginRollback marks operations reverting a failed edit.
	OriginRollback = "rollback"
)

// OperationApplied is the payload for TopicOperation.
type OperationApplied struct {
	Operation *operation.Operation
	Origin    string
	Revision  uint64
}

// DocumentLoaded is the payload for TopicLoaded.
type DocumentLoaded struct {
	Name     string
	Revision uint64
}

// HistoryChanged is the payload for the history topics.
type HistoryChanged struct {
	Index      int
	Length     int
	Operations int
}

// SelectionChanged is the payload for TopicSelectionChanged.
type SelectionChanged struct {
	Paths     selection.Paths
	Collapsed bool
}

// SnapshotCreated is the payload for TopicSnapshotCreated.
type SnapshotCreated struct {
	ID       string
	Name     string
	Revision uint64
}

// RemoteApplied is the payload for TopicRemoteApplied.
type RemoteApplied struct {
	ClientID   string
	Sequence   uint64
	Operations int
}
