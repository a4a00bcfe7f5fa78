package undo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/treedoc/internal/event"
	"github.com/dshills/treedoc/internal/model"
	"github.com/google/uuid"
)

// Event topics published by the controller.
const (
	// TopicStackChanged fires when either stack gains or loses an entry.
	TopicStackChanged event.Topic = "undo.stack.changed"

	// TopicUndone fires after an undo step completed.
	TopicUndone event.Topic = "undo.reverted"

	// TopicRedone fires after a redo step completed.
	TopicRedone event.Topic = "redo.reverted"
)

// StackInfo is the payload of an "undo.stack.changed" event.
type StackInfo struct {
	UndoDepth int
	RedoDepth int
}

// StepInfo is the payload of an "undo.reverted" or "redo.reverted" event.
type StepInfo struct {
	BatchID uuid.UUID
}

// Controller owns the twin stacks and routes applied batches to them by
// kind: user batches feed the undo stack and clear the redo stack, batches
// produced by an undo step feed the redo stack, and batches produced by a
// redo step feed the undo stack again. The routing happens entirely through
// the change stream, so the controller observes its own revert batches the
// same way it observes user edits.
type Controller struct {
	doc       *model.Document
	bus       event.Bus
	undoStack *Stack
	redoStack *Stack
	reverter  *Reverter
	log       *slog.Logger
	sub       event.Subscription
}

// Options configures a controller.
type Options struct {
	// RestoreSelection re-applies the recorded selection after a step.
	RestoreSelection bool

	// Logger receives controller diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewController creates a controller and subscribes it to the document's
// change stream.
func NewController(doc *model.Document, hist model.History, bus event.Bus, opts Options) (*Controller, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		doc:       doc,
		bus:       bus,
		undoStack: NewStack(),
		redoStack: NewStack(),
		reverter:  NewReverter(doc, hist, opts.RestoreSelection, log),
		log:       log,
	}
	sub, err := bus.SubscribeFunc(model.TopicApplied, c.onApplied, event.WithPriority(event.PriorityCritical))
	if err != nil {
		return nil, fmt.Errorf("subscribe to change stream: %w", err)
	}
	c.sub = sub
	return c, nil
}

// Close detaches the controller from the change stream.
func (c *Controller) Close() error {
	if c.sub == nil {
		return nil
	}
	err := c.bus.Unsubscribe(c.sub)
	c.sub = nil
	return err
}

// onApplied routes one applied batch to a stack by its kind.
func (c *Controller) onApplied(ctx context.Context, e any) error {
	info, ok := event.PayloadOf[model.ApplyInfo](e)
	if !ok {
		return nil
	}
	switch info.Batch.Kind {
	case model.KindUser:
		c.undoStack.Push(info.Batch, info.SelectionBefore)
		c.redoStack.Clear()
	case model.KindUndo:
		c.redoStack.Push(info.Batch, info.SelectionBefore)
	case model.KindRedo:
		c.undoStack.Push(info.Batch, info.SelectionBefore)
	}
	c.log.Debug("batch routed",
		"kind", info.Batch.Kind.String(),
		"undo_depth", c.undoStack.Len(),
		"redo_depth", c.redoStack.Len())
	return c.publishStackChanged(ctx)
}

func (c *Controller) publishStackChanged(ctx context.Context) error {
	info := StackInfo{UndoDepth: c.undoStack.Len(), RedoDepth: c.redoStack.Len()}
	return c.bus.Publish(ctx, event.NewEvent(TopicStackChanged, info, "undo"))
}

// UndoStep reverts the most recent entry of the undo stack. The revert
// batch re-enters the change stream tagged as an undo batch, which lands
// it on the redo stack.
func (c *Controller) UndoStep(ctx context.Context) error {
	item, ok := c.undoStack.Pop()
	if !ok {
		return ErrNothingToUndo
	}
	if err := c.reverter.Revert(ctx, item, model.KindUndo); err != nil {
		c.undoStack.Restore(item)
		return fmt.Errorf("undo step: %w", err)
	}
	return c.bus.Publish(ctx, event.NewEvent(TopicUndone, StepInfo{BatchID: item.Batch.ID()}, "undo"))
}

// RedoStep reverts the most recent entry of the redo stack. The revert
// batch re-enters the change stream tagged as a redo batch, which lands it
// back on the undo stack.
func (c *Controller) RedoStep(ctx context.Context) error {
	item, ok := c.redoStack.Pop()
	if !ok {
		return ErrNothingToRedo
	}
	if err := c.reverter.Revert(ctx, item, model.KindRedo); err != nil {
		c.redoStack.Restore(item)
		return fmt.Errorf("redo step: %w", err)
	}
	return c.bus.Publish(ctx, event.NewEvent(TopicRedone, StepInfo{BatchID: item.Batch.ID()}, "undo"))
}

// UndoBatch reverts a specific batch off the undo stack, wherever it sits.
func (c *Controller) UndoBatch(ctx context.Context, id uuid.UUID) error {
	item, ok := c.undoStack.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	if err := c.reverter.Revert(ctx, item, model.KindUndo); err != nil {
		c.undoStack.Restore(item)
		return fmt.Errorf("undo batch %s: %w", id, err)
	}
	return c.bus.Publish(ctx, event.NewEvent(TopicUndone, StepInfo{BatchID: id}, "undo"))
}

// CanUndo reports whether the undo stack has entries.
func (c *Controller) CanUndo() bool { return !c.undoStack.IsEmpty() }

// CanRedo reports whether the redo stack has entries.
func (c *Controller) CanRedo() bool { return !c.redoStack.IsEmpty() }

// UndoCount returns the undo stack depth.
func (c *Controller) UndoCount() int { return c.undoStack.Len() }

// RedoCount returns the redo stack depth.
func (c *Controller) RedoCount() int { return c.redoStack.Len() }

// Clear drops both stacks.
func (c *Controller) Clear(ctx context.Context) error {
	c.undoStack.Clear()
	c.redoStack.Clear()
	return c.publishStackChanged(ctx)
}
