package undo

import "errors"

// Common errors for undo operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrBatchNotFound = errors.New("batch not on stack")
)
