package history

import (
	"errors"
	"testing"

	"github.com/dshills/treedoc/internal/model"
)

func mainAt(offsets ...int) model.Position {
	return model.NewPosition(model.RootMain, offsets...)
}

func graveAt(offset int) model.Position {
	return model.NewPosition(model.RootGraveyard, offset)
}

func userDelta(base int, ops ...model.Operation) *model.Delta {
	d := &model.Delta{BaseVersion: base, Ops: ops}
	b := model.NewBatch(model.KindUser)
	b.AddDelta(d)
	return d
}

func TestTransformInsertOverInsert(t *testing.T) {
	log := NewLog()
	log.Add(userDelta(2, model.NewInsert(mainAt(1), model.NewTextRun("xy"))))

	u := &model.Delta{BaseVersion: 2, Ops: []model.Operation{
		model.NewInsert(mainAt(3), model.NewTextRun("a")),
	}}
	got, err := log.TransformDelta(u)
	if err != nil {
		t.Fatalf("TransformDelta: %v", err)
	}
	if got.BaseVersion != 3 {
		t.Errorf("base = %d, want 3", got.BaseVersion)
	}
	if pos := got.Ops[0].Position; pos.Compare(mainAt(5)) != model.Same {
		t.Errorf("position = %v, want [5]", pos)
	}
}

func TestTransformInsertOverRemove(t *testing.T) {
	log := NewLog()
	log.Add(userDelta(0, model.NewRemove(mainAt(0), graveAt(0), 1)))

	u := &model.Delta{BaseVersion: 0, Ops: []model.Operation{
		model.NewInsert(mainAt(2), model.NewTextRun("a")),
	}}
	got, err := log.TransformDelta(u)
	if err != nil {
		t.Fatalf("TransformDelta: %v", err)
	}
	if pos := got.Ops[0].Position; pos.Compare(mainAt(1)) != model.Same {
		t.Errorf("position = %v, want [1]", pos)
	}
}

func TestTransformSplitsRemoveAroundInsertion(t *testing.T) {
	// A removal of three nodes rebased over an insertion that landed in the
	// middle of them comes back as two removals around the inserted content,
	// stacking the pieces back to back in the graveyard.
	log := NewLog()
	log.Add(userDelta(5, model.NewInsert(mainAt(1), model.NewTextRun("x"))))

	u := &model.Delta{BaseVersion: 5, Ops: []model.Operation{
		model.NewRemove(mainAt(0), graveAt(0), 3),
	}}
	got, err := log.TransformDelta(u)
	if err != nil {
		t.Fatalf("TransformDelta: %v", err)
	}
	if len(got.Ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(got.Ops))
	}

	first, second := got.Ops[0], got.Ops[1]
	if first.Source.Compare(mainAt(0)) != model.Same || first.HowMany != 1 {
		t.Errorf("first = %v x%d, want source [0] x1", first.Source, first.HowMany)
	}
	if first.Target.Compare(graveAt(0)) != model.Same {
		t.Errorf("first target = %v, want graveyard [0]", first.Target)
	}
	if second.Source.Compare(mainAt(1)) != model.Same || second.HowMany != 2 {
		t.Errorf("second = %v x%d, want source [1] x2", second.Source, second.HowMany)
	}
	if second.Target.Compare(graveAt(1)) != model.Same {
		t.Errorf("second target = %v, want graveyard [1]", second.Target)
	}
}

func TestTransformObsoletesRemoveOfRemovedContent(t *testing.T) {
	// Undoing an insert after the user already removed the inserted content
	// leaves nothing to do.
	log := NewLog()
	log.Add(userDelta(3, model.NewRemove(mainAt(0), graveAt(0), 1)))

	u := &model.Delta{BaseVersion: 3, Ops: []model.Operation{
		model.NewRemove(mainAt(0), graveAt(0), 1),
	}}
	_, err := log.TransformDelta(u)
	if !errors.Is(err, model.ErrDeltaObsoleted) {
		t.Errorf("err = %v, want ErrDeltaObsoleted", err)
	}
}

func TestTransformObsoletesInsertIntoRemovedSubtree(t *testing.T) {
	log := NewLog()
	log.Add(userDelta(0, model.NewRemove(mainAt(1), graveAt(0), 1)))

	u := &model.Delta{BaseVersion: 0, Ops: []model.Operation{
		model.NewInsert(mainAt(1, 0), model.NewTextRun("a")),
	}}
	_, err := log.TransformDelta(u)
	if !errors.Is(err, model.ErrDeltaObsoleted) {
		t.Errorf("err = %v, want ErrDeltaObsoleted", err)
	}
}

func TestTransformTargetTieDependsOnBatchKind(t *testing.T) {
	// A reinsert landing where a user move just put content slides past it;
	// landing where an undo step put content stays put so the move conflict
	// pass can still see the collision.
	u := func() *model.Delta {
		return &model.Delta{BaseVersion: 4, Ops: []model.Operation{
			model.NewReinsert(graveAt(0), mainAt(1), 1),
		}}
	}

	t.Run("user history shifts the target", func(t *testing.T) {
		h := userDelta(4, model.NewReinsert(graveAt(1), mainAt(1), 1))
		got, err := transformOver(u(), []*model.Delta{h})
		if err != nil {
			t.Fatalf("transformOver: %v", err)
		}
		if tgt := got.Ops[0].Target; tgt.Compare(mainAt(2)) != model.Same {
			t.Errorf("target = %v, want [2]", tgt)
		}
	})

	t.Run("undo history leaves the target", func(t *testing.T) {
		h := &model.Delta{BaseVersion: 4, Ops: []model.Operation{
			model.NewReinsert(graveAt(1), mainAt(1), 1),
		}}
		b := model.NewBatch(model.KindUndo)
		b.AddDelta(h)
		got, err := transformOver(u(), []*model.Delta{h})
		if err != nil {
			t.Fatalf("transformOver: %v", err)
		}
		if tgt := got.Ops[0].Target; tgt.Compare(mainAt(1)) != model.Same {
			t.Errorf("target = %v, want [1]", tgt)
		}
	})
}

func TestTransformPreservesOrigin(t *testing.T) {
	orig := &model.Delta{BaseVersion: 0, Ops: []model.Operation{
		model.NewInsert(mainAt(0), model.NewTextRun("a")),
	}}
	u := orig.Reversed()
	u.SetOrigin(orig)

	log := NewLog()
	log.Add(userDelta(1, model.NewInsert(mainAt(2), model.NewTextRun("b"))))

	got, err := log.TransformDelta(u)
	if err != nil {
		t.Fatalf("TransformDelta: %v", err)
	}
	if got.Origin() != orig {
		t.Error("origin lost across the rebase")
	}
}
