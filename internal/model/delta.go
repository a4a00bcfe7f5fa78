package model

// Delta is an ordered group of operations applied atomically against one
// document version. BaseVersion is the document version the first
// operation was applied at.
type Delta struct {
	BaseVersion int
	Ops         []Operation

	batch    *Batch
	origin   *Delta
	document bool
}

// NewDelta creates a delta with the given operations.
func NewDelta(ops ...Operation) *Delta {
	return &Delta{Ops: ops}
}

// Batch returns the batch the delta was applied in, or nil for deltas that
// were never applied.
func (d *Delta) Batch() *Batch { return d.batch }

// Origin returns the delta this one was derived from by reversal, or nil.
func (d *Delta) Origin() *Delta { return d.origin }

// SetOrigin records the delta this one was derived from.
func (d *Delta) SetOrigin(origin *Delta) { d.origin = origin }

// IsDocumentDelta reports whether the delta was applied to a document root
// rather than a detached fragment.
func (d *Delta) IsDocumentDelta() bool { return d.document }

// IsEmpty reports whether the delta carries no operations.
func (d *Delta) IsEmpty() bool { return len(d.Ops) == 0 }

// SingleMove returns the delta's only operation when it consists of exactly
// one move-family operation.
func (d *Delta) SingleMove() (Operation, bool) {
	if len(d.Ops) == 1 && d.Ops[0].IsMoveLike() {
		return d.Ops[0], true
	}
	return Operation{}, false
}

// Reversed returns the delta that undoes this one: each operation reversed,
// in reverse order, based on the version reached after this delta applied.
func (d *Delta) Reversed() *Delta {
	ops := make([]Operation, 0, len(d.Ops))
	for i := len(d.Ops) - 1; i >= 0; i-- {
		ops = append(ops, d.Ops[i].Reversed())
	}
	return &Delta{BaseVersion: d.BaseVersion + len(d.Ops), Ops: ops}
}

// Clone returns a copy of the delta with its own operation slice.
func (d *Delta) Clone() *Delta {
	ops := make([]Operation, len(d.Ops))
	copy(ops, d.Ops)
	return &Delta{
		BaseVersion: d.BaseVersion,
		Ops:         ops,
		batch:       d.batch,
		origin:      d.origin,
		document:    d.document,
	}
}
