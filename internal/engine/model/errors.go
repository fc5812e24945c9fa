package model

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/operation"
)

// Errors returned when replaying operations or decoding literals. Rejected
// user edits never produce errors; mutation methods report them as false.
var (
	// ErrSchemaViolation is returned when a replayed insert carries content
	// the target slot does not accept.
	ErrSchemaViolation = errors.New("content type not allowed by slot schema")

	// ErrUnknownFormatter is returned for a format name with no registered formatter.
	ErrUnknownFormatter = errors.New("unknown formatter")

	// ErrUnknownAttribute is returned for an attribute name with no registered attribute.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrUnknownComponent is returned for a component name with no registered definition.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrDuplicateName is returned when a registry already holds a different
	// entry under the same name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrPathNotFound is returned when an operation path does not resolve.
	ErrPathNotFound = operation.ErrPathNotFound

	// ErrInvalidAction is returned when an action does not fit its target.
	ErrInvalidAction = operation.ErrInvalidAction
)

// ApplyError describes a failed operation replay.
type ApplyError struct {
	Path   operation.Path
	Action int
	Err    error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply at %s (action %d): %v", e.Path, e.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *ApplyError) Unwrap() error {
	return e.Err
}
