package undo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dshills/treedoc/internal/event"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/model/history"
	"github.com/google/uuid"
)

type fixture struct {
	doc  *model.Document
	ctrl *Controller
	bus  event.Bus
	ids  []uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := event.NewBus()
	hist := history.NewLog()
	doc := model.NewDocument(bus, hist)
	ctrl, err := NewController(doc, hist, bus, Options{
		RestoreSelection: true,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(func() { ctrl.Close() })

	f := &fixture{doc: doc, ctrl: ctrl, bus: bus}
	if _, err := bus.SubscribeFunc(model.TopicApplied, func(ctx context.Context, e any) error {
		if info, ok := event.PayloadOf[model.ApplyInfo](e); ok {
			f.ids = append(f.ids, info.Batch.ID())
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) typeText(t *testing.T, at int, s string) {
	t.Helper()
	if err := f.doc.Enqueue(context.Background(), func(w *model.Writer) error {
		if err := w.InsertText(model.NewPosition(model.RootMain, at), s); err != nil {
			return err
		}
		return w.SetSelection(model.CaretAt(model.NewPosition(model.RootMain, at+len(s))))
	}); err != nil {
		t.Fatalf("type %q at %d: %v", s, at, err)
	}
}

func (f *fixture) move(t *testing.T, src, tgt, howMany int) {
	t.Helper()
	if err := f.doc.Enqueue(context.Background(), func(w *model.Writer) error {
		return w.Move(model.NewPosition(model.RootMain, src), model.NewPosition(model.RootMain, tgt), howMany)
	}); err != nil {
		t.Fatalf("move [%d]->%d x%d: %v", src, tgt, howMany, err)
	}
}

func (f *fixture) text(t *testing.T, root string) string {
	t.Helper()
	s, err := f.doc.Text(root)
	if err != nil {
		t.Fatalf("Text(%q): %v", root, err)
	}
	return s
}

func TestUndoRedoTyping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "a")
	f.typeText(t, 1, "b")
	f.typeText(t, 2, "c")
	if f.ctrl.UndoCount() != 3 {
		t.Fatalf("undo count = %d, want 3", f.ctrl.UndoCount())
	}

	for i, want := range []string{"ab", "a", ""} {
		if err := f.ctrl.UndoStep(ctx); err != nil {
			t.Fatalf("undo %d: %v", i+1, err)
		}
		if got := f.text(t, model.RootMain); got != want {
			t.Fatalf("after undo %d text = %q, want %q", i+1, got, want)
		}
	}
	if got := f.text(t, model.RootGraveyard); got != "abc" {
		t.Errorf("graveyard = %q, want abc", got)
	}
	if f.ctrl.CanUndo() {
		t.Error("CanUndo after full unwind")
	}
	if f.ctrl.RedoCount() != 3 {
		t.Fatalf("redo count = %d, want 3", f.ctrl.RedoCount())
	}
	if err := f.ctrl.UndoStep(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}

	for i, want := range []string{"a", "ab", "abc"} {
		if err := f.ctrl.RedoStep(ctx); err != nil {
			t.Fatalf("redo %d: %v", i+1, err)
		}
		if got := f.text(t, model.RootMain); got != want {
			t.Fatalf("after redo %d text = %q, want %q", i+1, got, want)
		}
	}
	if got := f.text(t, model.RootGraveyard); got != "" {
		t.Errorf("graveyard = %q, want empty after full replay", got)
	}
	if f.ctrl.UndoCount() != 3 || f.ctrl.RedoCount() != 0 {
		t.Errorf("stacks = %d/%d, want 3/0", f.ctrl.UndoCount(), f.ctrl.RedoCount())
	}
	if err := f.ctrl.RedoStep(ctx); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("err = %v, want ErrNothingToRedo", err)
	}
}

func TestUndoRedoMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "abc")
	f.move(t, 1, 2, 1) // abc -> acb
	f.move(t, 0, 2, 1) // acb -> cba
	if got := f.text(t, model.RootMain); got != "cba" {
		t.Fatalf("text = %q, want cba", got)
	}

	for i, want := range []string{"acb", "abc"} {
		if err := f.ctrl.UndoStep(ctx); err != nil {
			t.Fatalf("undo %d: %v", i+1, err)
		}
		if got := f.text(t, model.RootMain); got != want {
			t.Fatalf("after undo %d text = %q, want %q", i+1, got, want)
		}
	}

	for i, want := range []string{"acb", "cba"} {
		if err := f.ctrl.RedoStep(ctx); err != nil {
			t.Fatalf("redo %d: %v", i+1, err)
		}
		if got := f.text(t, model.RootMain); got != want {
			t.Fatalf("after redo %d text = %q, want %q", i+1, got, want)
		}
	}
}

// TestUndoRevertsMoveConflict walks back two overlapping moves whose
// reversions land blocks at the same gap. Original document order decides
// which block sits first, so the second undo must restore the exact
// starting text rather than a permutation of it.
func TestUndoRevertsMoveConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "foobar")
	f.move(t, 3, 1, 3) // foobar -> fbaroo
	f.move(t, 1, 0, 4) // fbaroo -> barofo
	if got := f.text(t, model.RootMain); got != "barofo" {
		t.Fatalf("text = %q, want barofo", got)
	}

	for i, want := range []string{"fbaroo", "foobar"} {
		if err := f.ctrl.UndoStep(ctx); err != nil {
			t.Fatalf("undo %d: %v", i+1, err)
		}
		if got := f.text(t, model.RootMain); got != want {
			t.Fatalf("after undo %d text = %q, want %q", i+1, got, want)
		}
	}
}

func TestUndoBatchOutOfOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "a")
	f.typeText(t, 1, "b")

	if err := f.ctrl.UndoBatch(ctx, f.ids[0]); err != nil {
		t.Fatalf("UndoBatch: %v", err)
	}
	if got := f.text(t, model.RootMain); got != "b" {
		t.Errorf("text = %q, want b", got)
	}
	if f.ctrl.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", f.ctrl.UndoCount())
	}
	if f.ctrl.RedoCount() != 1 {
		t.Errorf("redo count = %d, want 1", f.ctrl.RedoCount())
	}

	if err := f.ctrl.UndoBatch(ctx, uuid.New()); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("err = %v, want ErrBatchNotFound", err)
	}
}

func TestUndoObsoletedBatchIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "a")
	if err := f.doc.Enqueue(ctx, func(w *model.Writer) error {
		return w.Remove(model.NewPosition(model.RootMain, 0), 1)
	}); err != nil {
		t.Fatal(err)
	}

	if err := f.ctrl.UndoBatch(ctx, f.ids[0]); err != nil {
		t.Fatalf("UndoBatch: %v", err)
	}
	if got := f.text(t, model.RootMain); got != "" {
		t.Errorf("text = %q, want empty", got)
	}
	// An undo that applied nothing must not produce a redo entry.
	if f.ctrl.RedoCount() != 0 {
		t.Errorf("redo count = %d, want 0", f.ctrl.RedoCount())
	}
}

func TestUserEditClearsRedoStack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "a")
	f.typeText(t, 1, "b")
	if err := f.ctrl.UndoStep(ctx); err != nil {
		t.Fatal(err)
	}
	if f.ctrl.RedoCount() != 1 {
		t.Fatalf("redo count = %d, want 1", f.ctrl.RedoCount())
	}

	f.typeText(t, 1, "x")
	if f.ctrl.RedoCount() != 0 {
		t.Errorf("redo count = %d after new edit, want 0", f.ctrl.RedoCount())
	}
	if f.ctrl.CanRedo() {
		t.Error("CanRedo after new edit")
	}
}

func TestUndoRestoresSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.typeText(t, 0, "ab")
	f.typeText(t, 2, "c")

	if err := f.ctrl.UndoStep(ctx); err != nil {
		t.Fatal(err)
	}
	sel := f.doc.Selection()
	if sel.IsEmpty() {
		t.Fatal("no selection after undo")
	}
	if off := sel.Ranges[0].Start.Offset(); off != 2 {
		t.Errorf("caret at %d, want 2", off)
	}
}

func TestStackChangedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last StackInfo
	fired := 0
	if _, err := f.bus.SubscribeFunc(TopicStackChanged, func(ctx context.Context, e any) error {
		if info, ok := event.PayloadOf[StackInfo](e); ok {
			last = info
			fired++
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	f.typeText(t, 0, "a")
	if fired != 1 || last.UndoDepth != 1 || last.RedoDepth != 0 {
		t.Fatalf("after edit: fired=%d info=%+v", fired, last)
	}

	if err := f.ctrl.UndoStep(ctx); err != nil {
		t.Fatal(err)
	}
	if last.UndoDepth != 0 || last.RedoDepth != 1 {
		t.Errorf("after undo: info=%+v", last)
	}

	if err := f.ctrl.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if last.UndoDepth != 0 || last.RedoDepth != 0 {
		t.Errorf("after clear: info=%+v", last)
	}
}

func TestCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	undoCmd := NewUndoCommand(f.ctrl)
	redoCmd := NewRedoCommand(f.ctrl)
	if undoCmd.Enabled() || redoCmd.Enabled() {
		t.Error("commands enabled on empty stacks")
	}

	f.typeText(t, 0, "a")
	if !undoCmd.Enabled() {
		t.Error("undo command disabled with work on the stack")
	}
	if err := undoCmd.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.text(t, model.RootMain); got != "" {
		t.Errorf("text = %q, want empty", got)
	}
	if !redoCmd.Enabled() {
		t.Error("redo command disabled after undo")
	}
	if err := redoCmd.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.text(t, model.RootMain); got != "a" {
		t.Errorf("text = %q, want a", got)
	}
}
