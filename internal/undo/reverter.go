package undo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/treedoc/internal/model"
)

// Reverter applies the inverse of a stack entry's batch to the live
// document. Each delta of the batch is reversed, rebased over everything
// applied after it, checked for move ordering conflicts, applied, and
// finally the entry's recorded selection is carried forward to where its
// content now lives.
type Reverter struct {
	doc              *model.Document
	hist             model.History
	restoreSelection bool
	log              *slog.Logger
}

// NewReverter creates a reverter for the document and its history.
func NewReverter(doc *model.Document, hist model.History, restoreSelection bool, log *slog.Logger) *Reverter {
	if log == nil {
		log = slog.Default()
	}
	return &Reverter{doc: doc, hist: hist, restoreSelection: restoreSelection, log: log}
}

// Revert undoes item's batch inside one change scope tagged with kind. The
// produced batch flows back through the change stream like any other, so
// the controller routes it to the opposite stack.
func (r *Reverter) Revert(ctx context.Context, item *Item, kind model.BatchKind) error {
	return r.doc.Enqueue(ctx, func(w *model.Writer) error {
		if err := w.SetBatchKind(kind); err != nil {
			return err
		}
		for i := len(item.Batch.Deltas) - 1; i >= 0; i-- {
			d := item.Batch.Deltas[i]
			if !d.IsDocumentDelta() || d.IsEmpty() {
				continue
			}
			reversed := d.Reversed()
			reversed.SetOrigin(d)
			rebased, err := r.hist.TransformDelta(reversed)
			if errors.Is(err, model.ErrDeltaObsoleted) {
				r.log.Debug("delta obsoleted by later edits", "base", d.BaseVersion)
				continue
			}
			if err != nil {
				return fmt.Errorf("rebase delta at version %d: %w", d.BaseVersion, err)
			}
			r.fixMoveConflicts(rebased, reversed.BaseVersion)
			if err := w.ApplyDelta(rebased); err != nil {
				return fmt.Errorf("apply reverted delta: %w", err)
			}
		}
		if r.restoreSelection && !item.Selection.IsEmpty() {
			if sel := r.transformSelection(item.Selection, item.Batch.BaseVersion()); sel != nil {
				if err := w.SetSelection(sel); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// fixMoveConflicts resolves the ordering ambiguity left when a rebased
// move lands at the same gap where an earlier undo or redo step already
// put content. The rebase deliberately leaves both targets equal in that
// case; here the original document order of the two blocks decides which
// one sits first.
func (r *Reverter) fixMoveConflicts(u *model.Delta, since int) {
	uop, ok := u.SingleMove()
	if !ok {
		return
	}
	upos, ok := originPosition(u)
	if !ok {
		return
	}
	for _, h := range r.hist.Deltas(since) {
		hb := h.Batch()
		if hb == nil || hb.Kind == model.KindUser {
			continue
		}
		hop, hok := h.SingleMove()
		if !hok || !uop.Target.IsEqual(hop.Target) {
			continue
		}
		hpos, hok := originPosition(h)
		if !hok {
			continue
		}
		if upos.IsAfter(hpos) {
			uop.Target = uop.Target.ShiftedBy(hop.HowMany)
		}
	}
	u.Ops[0] = uop
}

// originPosition returns the position the delta's origin touched first:
// the insertion point of an insert or the source of a move.
func originPosition(d *model.Delta) (model.Position, bool) {
	origin := d.Origin()
	if origin == nil || len(origin.Ops) == 0 {
		return model.Position{}, false
	}
	op := origin.Ops[0]
	switch op.Kind {
	case model.OpInsert:
		return op.Position, true
	case model.OpMove, model.OpRemove, model.OpReinsert:
		return op.Source, true
	default:
		return model.Position{}, false
	}
}

// transformSelection carries a recorded selection over every delta applied
// since the recording, including the reversion deltas applied by this very
// step. Ranges whose content ended up in the graveyard are dropped; when a
// range split, the first surviving piece wins.
func (r *Reverter) transformSelection(sel *model.Selection, since int) *model.Selection {
	deltas := r.hist.Deltas(since)
	out := &model.Selection{IsBackward: sel.IsBackward}
	for _, orig := range sel.Ranges {
		ranges := []model.Range{orig}
		for _, d := range deltas {
			for _, op := range d.Ops {
				ranges = transformRanges(ranges, op)
			}
		}
		sortByStart(ranges)
		ranges = coalesce(ranges)
		for _, rg := range ranges {
			if !rg.InGraveyard() {
				out.Ranges = append(out.Ranges, rg)
				break
			}
		}
	}
	if len(out.Ranges) == 0 {
		return nil
	}
	return out
}

// transformRanges rewrites every range over one applied operation,
// splicing in the pieces a spread transform produces.
func transformRanges(ranges []model.Range, op model.Operation) []model.Range {
	for i := 0; i < len(ranges); i++ {
		var result []model.Range
		switch op.Kind {
		case model.OpInsert:
			result = ranges[i].TransformedByInsertion(op.Position, len(op.Nodes), true)
		case model.OpMove, model.OpRemove, model.OpReinsert:
			result = ranges[i].TransformedByMove(op.Source, op.Target, op.HowMany, true)
		default:
			continue
		}
		ranges = append(ranges[:i], append(result, ranges[i+1:]...)...)
		i += len(result) - 1
	}
	return ranges
}

func sortByStart(ranges []model.Range) {
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0 && ranges[j].Start.IsBefore(ranges[j-1].Start); j-- {
			ranges[j], ranges[j-1] = ranges[j-1], ranges[j]
		}
	}
}

func coalesce(ranges []model.Range) []model.Range {
	out := make([]model.Range, 0, len(ranges))
	for _, rg := range ranges {
		if len(out) > 0 && out[len(out)-1].IsTouching(rg) {
			last := &out[len(out)-1]
			if last.End.IsBefore(rg.End) {
				last.End = rg.End
			}
			continue
		}
		out = append(out, rg)
	}
	return out
}
