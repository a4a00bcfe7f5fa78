package history

import "github.com/dshills/treedoc/internal/model"

// transformOver folds d over each later delta in application order and
// returns the rebased delta, or model.ErrDeltaObsoleted when nothing
// survives.
func transformOver(d *model.Delta, later []*model.Delta) (*model.Delta, error) {
	ops := make([]model.Operation, len(d.Ops))
	copy(ops, d.Ops)
	base := d.BaseVersion
	for _, h := range later {
		kind := model.KindUser
		if h.Batch() != nil {
			kind = h.Batch().Kind
		}
		for _, hop := range h.Ops {
			next := make([]model.Operation, 0, len(ops))
			for _, op := range ops {
				next = append(next, transformOp(op, hop, kind)...)
			}
			ops = next
		}
		base = h.BaseVersion + len(h.Ops)
	}
	live := make([]model.Operation, 0, len(ops))
	for _, op := range ops {
		if !isDead(op) {
			live = append(live, op)
		}
	}
	if len(live) == 0 {
		return nil, model.ErrDeltaObsoleted
	}
	out := &model.Delta{BaseVersion: base, Ops: live}
	out.SetOrigin(d.Origin())
	return out, nil
}

// transformOp rewrites one operation of the rebased delta over one applied
// operation. Move-family operations whose source range was broken apart by
// the applied operation split into one operation per surviving piece.
func transformOp(u, h model.Operation, hKind model.BatchKind) []model.Operation {
	switch u.Kind {
	case model.OpInsert:
		switch h.Kind {
		case model.OpInsert:
			u.Position = u.Position.TransformedByInsertion(h.Position, len(h.Nodes), true)
		case model.OpMove, model.OpRemove, model.OpReinsert:
			u.Position = u.Position.TransformedByMove(h.Source, h.Target, h.HowMany, true)
		}
		return []model.Operation{u}
	case model.OpMove, model.OpRemove, model.OpReinsert:
		return transformMoveLike(u, h, hKind)
	default:
		return []model.Operation{u}
	}
}

func transformMoveLike(u, h model.Operation, hKind model.BatchKind) []model.Operation {
	srcRange := model.NewRange(u.Source, u.Source.ShiftedBy(u.HowMany))
	var pieces []model.Range
	switch h.Kind {
	case model.OpInsert:
		u.Target = u.Target.TransformedByInsertion(h.Position, len(h.Nodes), true)
		pieces = srcRange.TransformedByInsertion(h.Position, len(h.Nodes), true)
	case model.OpMove, model.OpRemove, model.OpReinsert:
		// A target gap that coincides with where an undo or redo step just
		// put content stays put, so the ambiguity is still visible to the
		// move conflict check downstream.
		u.Target = u.Target.TransformedByMove(h.Source, h.Target, h.HowMany, hKind == model.KindUser)
		pieces = srcRange.TransformedByMove(h.Source, h.Target, h.HowMany, true)
	default:
		return []model.Operation{u}
	}
	return splitMove(u.Kind, pieces, u.Target)
}

// splitMove emits one move-family operation per source piece, landing the
// pieces back to back at tgt in document order. Each emitted operation is
// applied to the coordinates of the pieces still waiting.
func splitMove(kind model.OpKind, pieces []model.Range, tgt model.Position) []model.Operation {
	ops := make([]model.Operation, 0, len(pieces))
	cur := tgt
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		count := p.End.Offset() - p.Start.Offset()
		if count <= 0 {
			continue
		}
		op := model.Operation{Kind: kind, Source: p.Start, Target: cur, HowMany: count}
		ops = append(ops, op)
		for j := i + 1; j < len(pieces); j++ {
			if moved := pieces[j].TransformedByMove(op.Source, op.Target, count, false); len(moved) > 0 {
				pieces[j] = moved[0]
			}
		}
		cur = op.Target.ShiftedBy(count)
	}
	return ops
}

// isDead reports whether a transformed operation no longer touches live
// content and can be dropped.
func isDead(op model.Operation) bool {
	switch op.Kind {
	case model.OpInsert:
		return op.Position.Root == model.RootGraveyard
	case model.OpMove, model.OpRemove, model.OpReinsert:
		if op.HowMany <= 0 {
			return true
		}
		return op.Source.Root == model.RootGraveyard && op.Target.Root == model.RootGraveyard
	default:
		return true
	}
}
