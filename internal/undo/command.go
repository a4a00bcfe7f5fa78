package undo

import (
	"context"
	"fmt"
)

// Command is a step the editor shell can bind to a key.
type Command interface {
	// Execute performs the step.
	Execute(ctx context.Context) error

	// Enabled reports whether the step would do anything.
	Enabled() bool

	// Description returns a human-readable description of the step.
	Description() string
}

// UndoCommand reverts the newest undo stack entry.
type UndoCommand struct {
	ctrl *Controller
}

// NewUndoCommand creates an undo command bound to the controller.
func NewUndoCommand(ctrl *Controller) *UndoCommand {
	return &UndoCommand{ctrl: ctrl}
}

// Execute performs one undo step.
func (c *UndoCommand) Execute(ctx context.Context) error {
	return c.ctrl.UndoStep(ctx)
}

// Enabled reports whether an undo step is available.
func (c *UndoCommand) Enabled() bool {
	return c.ctrl.CanUndo()
}

// Description returns a human-readable description.
func (c *UndoCommand) Description() string {
	if n := c.ctrl.UndoCount(); n > 1 {
		return fmt.Sprintf("Undo (%d steps available)", n)
	}
	return "Undo"
}

// RedoCommand reverts the newest redo stack entry.
type RedoCommand struct {
	ctrl *Controller
}

// NewRedoCommand creates a redo command bound to the controller.
func NewRedoCommand(ctrl *Controller) *RedoCommand {
	return &RedoCommand{ctrl: ctrl}
}

// Execute performs one redo step.
func (c *RedoCommand) Execute(ctx context.Context) error {
	return c.ctrl.RedoStep(ctx)
}

// Enabled reports whether a redo step is available.
func (c *RedoCommand) Enabled() bool {
	return c.ctrl.CanRedo()
}

// Description returns a human-readable description.
func (c *RedoCommand) Description() string {
	if n := c.ctrl.RedoCount(); n > 1 {
		return fmt.Sprintf("Redo (%d steps available)", n)
	}
	return "Redo"
}
