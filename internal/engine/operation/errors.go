package operation

import "errors"

var (
	// ErrInvalidAction is returned when an action cannot be applied to the
	// node its operation addresses.
	ErrInvalidAction = errors.New("invalid action")

	// ErrPathNotFound is returned when an operation path does not resolve
	// to a node.
	ErrPathNotFound = errors.New("path not found")
)
