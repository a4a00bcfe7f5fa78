// Package model implements the tree-structured document that the undo
// machinery operates on: nodes, positions, ranges, the primitive edit
// operations, deltas, batches, and the document itself with its
// enqueued-change scope.
//
// # Coordinate model
//
// A Position is a path of child offsets below a named root. The last path
// entry is an offset into the parent's child list, so Position{Root: "main",
// Path: []int{3}} is the gap before the fourth child of the main root. The
// special root "$graveyard" holds content that has been removed from the
// document; positions and ranges that end up there are logically dead.
//
// Move-family operations carry their source in pre-move coordinates and
// their target in post-removal coordinates, i.e. the target is the exact
// landing spot of the moved nodes. This makes Reversed a pure swap of
// source and target.
//
// # Change flow
//
// All mutation goes through Document.Enqueue, which hands the caller a
// Writer, collects every delta produced inside the scope into a single
// Batch, appends document deltas to the history log, and publishes one
// "document.applied" event after the scope exits. Nested Enqueue calls join
// the outer scope's batch. If the scope returns an error, every applied
// operation is rolled back and no event is published.
package model
