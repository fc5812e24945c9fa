// Package operation defines the reversible edit records produced by every
// document mutation.
//
// An Operation pairs a forward action sequence (Apply) with its exact inverse
// (UnApply), addressed at a node by Path. Applying Apply and then UnApply to
// the same node restores its serialized form exactly. History replays
// UnApply to undo; collaboration ships Apply to peers.
//
// Operations are immutable once emitted. Helpers that need a variant, such
// as WithPrefix or Invert, return copies.
package operation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Operation is a reversible mutation of one document node.
type Operation struct {
	// ID uniquely identifies the operation.
	ID string `json:"id"`

	// Path addresses the mutated node from the root component.
	Path Path `json:"path"`

	// Apply is the forward action sequence.
	Apply []Action `json:"apply"`

	// UnApply is the exact inverse of Apply.
	UnApply []Action `json:"unApply"`

	// Timestamp is when the operation was produced.
	Timestamp time.Time `json:"timestamp"`
}

// New creates an operation rooted at the mutated node (empty path).
func New(apply, unApply []Action) *Operation {
	return &Operation{
		ID:        uuid.NewString(),
		Path:      Path{},
		Apply:     apply,
		UnApply:   unApply,
		Timestamp: time.Now(),
	}
}

// WithPrefix returns a copy of the operation whose path has step in front.
// Action slices are shared.
func (op *Operation) WithPrefix(step any) *Operation {
	cp := *op
	cp.Path = op.Path.Prepend(step)
	return &cp
}

// Invert returns the inverse operation, with Apply and UnApply swapped.
func (op *Operation) Invert() *Operation {
	return &Operation{
		ID:        uuid.NewString(),
		Path:      op.Path.Clone(),
		Apply:     op.UnApply,
		UnApply:   op.Apply,
		Timestamp: time.Now(),
	}
}

// Clone returns a copy of the operation with its own path and action slices.
func (op *Operation) Clone() *Operation {
	cp := *op
	cp.Path = op.Path.Clone()
	cp.Apply = append([]Action(nil), op.Apply...)
	cp.UnApply = append([]Action(nil), op.UnApply...)
	return &cp
}

// IsEmpty reports whether the operation carries no actions.
func (op *Operation) IsEmpty() bool {
	return len(op.Apply) == 0 && len(op.UnApply) == 0
}

// Marshal encodes the operation as JSON.
func (op *Operation) Marshal() ([]byte, error) {
	return json.Marshal(op)
}

// Unmarshal decodes an operation from JSON.
func Unmarshal(data []byte) (*Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, err
	}
	if op.Path == nil {
		op.Path = Path{}
	}
	return &op, nil
}

// List is an ordered batch of operations.
type List []*Operation

// Invert returns the batch inverted and in reverse order, so that applying
// it undoes the original batch.
func (l List) Invert() List {
	out := make(List, len(l))
	for i, op := range l {
		out[len(l)-1-i] = op.Invert()
	}
	return out
}
