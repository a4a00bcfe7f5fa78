// Package undo implements multi-step undo and redo over the document's
// change stream.
//
// The Controller keeps two stacks. Batches tagged as user edits land on
// the undo stack and clear the redo stack. When a step reverts a batch,
// the revert itself is applied as a new batch tagged undo or redo; that
// batch flows back through the change stream and the controller routes it
// to the opposite stack. Undoing therefore never rewrites history, it only
// appends inverse changes.
//
// The Reverter makes a step correct in the presence of edits made after
// the batch being reverted. Each delta of the batch is reversed and then
// rebased over every delta applied since, so the inverse operations act on
// where the content lives now rather than where it lived then. Content
// that later edits relocated is followed; content they removed is found in
// the graveyard; a delta whose every operation became irrelevant is
// skipped. A dedicated pass resolves the one ambiguity rebasing cannot,
// two moves landing in the same gap, by the original order of the moved
// blocks. Finally the selection recorded with the stack entry is carried
// over the same deltas and restored, keeping for each recorded range the
// first piece that is still outside the graveyard.
package undo
