package model

import "github.com/google/uuid"

// BatchKind tags the intent of a batch so the undo machinery can route it
// to the right stack.
type BatchKind int

// Batch kinds. User batches come from direct editing; Undo and Redo batches
// are produced by reverting entries off the respective stacks.
const (
	KindUser BatchKind = iota
	KindUndo
	KindRedo
)

// String returns the batch kind name.
func (k BatchKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindUndo:
		return "undo"
	case KindRedo:
		return "redo"
	default:
		return "unknown"
	}
}

// Batch groups the deltas produced inside one enqueued-change scope. All
// deltas of a batch are treated as a single step by the undo machinery.
type Batch struct {
	id     uuid.UUID
	Kind   BatchKind
	Deltas []*Delta
}

// NewBatch creates an empty batch of the given kind.
func NewBatch(kind BatchKind) *Batch {
	return &Batch{id: uuid.New(), Kind: kind}
}

// ID returns the batch identifier.
func (b *Batch) ID() uuid.UUID { return b.id }

// AddDelta appends a delta to the batch and links it back.
func (b *Batch) AddDelta(d *Delta) {
	d.batch = b
	b.Deltas = append(b.Deltas, d)
}

// IsEmpty reports whether the batch carries no operations at all.
func (b *Batch) IsEmpty() bool {
	for _, d := range b.Deltas {
		if !d.IsEmpty() {
			return false
		}
	}
	return true
}

// BaseVersion returns the document version the batch started at, or -1 for
// a batch with no document deltas.
func (b *Batch) BaseVersion() int {
	for _, d := range b.Deltas {
		if d.IsDocumentDelta() {
			return d.BaseVersion
		}
	}
	return -1
}

// TouchesDocument reports whether any delta of the batch changed a document
// root as opposed to a detached fragment.
func (b *Batch) TouchesDocument() bool {
	for _, d := range b.Deltas {
		if d.IsDocumentDelta() && !d.IsEmpty() {
			return true
		}
	}
	return false
}
