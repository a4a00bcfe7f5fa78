package undo

import (
	"testing"

	"github.com/dshills/treedoc/internal/model"
	"github.com/google/uuid"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	if !s.IsEmpty() {
		t.Fatal("new stack should be empty")
	}

	b1 := model.NewBatch(model.KindUser)
	b2 := model.NewBatch(model.KindUser)
	s.Push(b1, nil)
	s.Push(b2, nil)
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	item, ok := s.Pop()
	if !ok || item.Batch.ID() != b2.ID() {
		t.Errorf("Pop = %v, want most recent batch", item)
	}
	item, ok = s.Pop()
	if !ok || item.Batch.ID() != b1.ID() {
		t.Errorf("Pop = %v, want first batch", item)
	}
	if _, ok := s.Pop(); ok {
		t.Error("Pop on empty stack should report false")
	}
}

func TestStackPushDeduplicates(t *testing.T) {
	s := NewStack()
	b := model.NewBatch(model.KindUser)
	s.Push(b, nil)
	s.Push(b, nil)
	if s.Len() != 1 {
		t.Errorf("Len = %d after double push, want 1", s.Len())
	}
}

func TestStackClonesSelection(t *testing.T) {
	s := NewStack()
	sel := model.CaretAt(model.NewPosition(model.RootMain, 1))
	s.Push(model.NewBatch(model.KindUser), sel)

	sel.Ranges[0].Start = model.NewPosition(model.RootMain, 9)
	item, _ := s.Peek()
	if item.Selection.Ranges[0].Start.Offset() != 1 {
		t.Error("stack entry shares the caller's selection")
	}
}

func TestStackRemove(t *testing.T) {
	s := NewStack()
	b1 := model.NewBatch(model.KindUser)
	b2 := model.NewBatch(model.KindUser)
	b3 := model.NewBatch(model.KindUser)
	s.Push(b1, nil)
	s.Push(b2, nil)
	s.Push(b3, nil)

	item, ok := s.Remove(b2.ID())
	if !ok || item.Batch.ID() != b2.ID() {
		t.Fatalf("Remove mid-stack entry failed")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d after remove, want 2", s.Len())
	}
	if _, ok := s.Remove(uuid.New()); ok {
		t.Error("Remove of unknown batch should report false")
	}

	top, _ := s.Pop()
	if top.Batch.ID() != b3.ID() {
		t.Error("remove disturbed stack order")
	}
}

func TestStackRestore(t *testing.T) {
	s := NewStack()
	b := model.NewBatch(model.KindUser)
	s.Push(b, nil)
	item, _ := s.Pop()
	s.Restore(item)
	if top, ok := s.Peek(); !ok || top.Batch.ID() != b.ID() {
		t.Error("Restore did not put the entry back on top")
	}
}
