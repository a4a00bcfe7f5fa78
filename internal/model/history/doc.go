// Package history keeps the append-only log of applied document deltas and
// implements the rebase transform that brings an old delta up to date with
// everything applied after it.
//
// The transform is what lets an undo step work after further edits: the
// reversed delta of a stack entry is rewritten, operation by operation,
// over every logged delta with a higher base version. Operations whose
// content has been relocated follow it; operations whose source range was
// broken apart split into one operation per surviving piece; operations
// left with nothing to do in the live document are dropped, and a delta
// that loses all of its operations reports model.ErrDeltaObsoleted.
package history
