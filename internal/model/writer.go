package model

// Writer mutates the document inside an enqueued-change scope. Each
// mutating call produces one delta, applies it, and adds it to the scope's
// batch. A writer is only valid while its scope is active.
type Writer struct {
	doc   *Document
	scope *changeScope
}

func (w *Writer) apply(d *Delta) error {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	if w.doc.scope != w.scope {
		return ErrNoActiveScope
	}
	return w.doc.applyDeltaLocked(w.scope, d)
}

// Insert splices nodes into the tree at pos. Inserting nothing is a no-op
// and produces no delta.
func (w *Writer) Insert(pos Position, nodes ...*Node) error {
	if len(nodes) == 0 {
		return nil
	}
	return w.apply(NewDelta(NewInsert(pos, nodes)))
}

// InsertText inserts one text node per rune of s at pos.
func (w *Writer) InsertText(pos Position, s string) error {
	return w.Insert(pos, NewTextRun(s)...)
}

// Move relocates howMany nodes from src to tgt, where tgt is the landing
// spot in post-removal coordinates.
func (w *Writer) Move(src, tgt Position, howMany int) error {
	return w.apply(NewDelta(NewMove(src, tgt, howMany)))
}

// Remove relocates howMany nodes at src to the front of the graveyard.
func (w *Writer) Remove(src Position, howMany int) error {
	return w.apply(NewDelta(NewRemove(src, GraveyardPosition(), howMany)))
}

// Reinsert brings howMany nodes back from src, normally a graveyard
// position, to tgt.
func (w *Writer) Reinsert(src, tgt Position, howMany int) error {
	return w.apply(NewDelta(NewReinsert(src, tgt, howMany)))
}

// ApplyDelta applies a pre-built delta, one operation at a time.
func (w *Writer) ApplyDelta(d *Delta) error {
	return w.apply(d)
}

// SetSelection replaces the document selection. Selection changes produce
// no delta and are not undoable on their own.
func (w *Writer) SetSelection(sel *Selection) error {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	if w.doc.scope != w.scope {
		return ErrNoActiveScope
	}
	w.doc.selection = sel.Clone()
	return nil
}

// SetBatchKind tags the scope's batch so the undo machinery can route it.
func (w *Writer) SetBatchKind(kind BatchKind) error {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	if w.doc.scope != w.scope {
		return ErrNoActiveScope
	}
	w.scope.batch.Kind = kind
	return nil
}
