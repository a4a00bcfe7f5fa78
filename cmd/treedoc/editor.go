package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/treedoc/internal/config"
	"github.com/dshills/treedoc/internal/event"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/undo"
)

// editor is a single-line demo shell around the document and the undo
// controller. Every keystroke becomes one batch, so Ctrl-Z walks back one
// keystroke at a time.
type editor struct {
	screen tcell.Screen
	doc    *model.Document
	ctrl   *undo.Controller
	bus    event.Bus
	root   string
	caret  int
	status string
}

func newEditor(doc *model.Document, ctrl *undo.Controller, bus event.Bus, cfg *config.Config) (*editor, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &editor{
		screen: screen,
		doc:    doc,
		ctrl:   ctrl,
		bus:    bus,
		root:   cfg.Editor.RootName,
		status: "Ctrl-Z undo, Ctrl-Y redo, Ctrl-Q quit",
	}, nil
}

// Run drives the event loop until quit.
func (e *editor) Run() error {
	defer e.screen.Fini()

	sub, err := e.bus.SubscribeFunc(undo.TopicStackChanged, func(ctx context.Context, ev any) error {
		if info, ok := event.PayloadOf[undo.StackInfo](ev); ok {
			e.status = fmt.Sprintf("undo: %d  redo: %d", info.UndoDepth, info.RedoDepth)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer e.bus.Unsubscribe(sub)

	ctx := context.Background()
	for {
		e.draw()
		ev := e.screen.PollEvent()
		switch tev := ev.(type) {
		case *tcell.EventResize:
			e.screen.Sync()
		case *tcell.EventKey:
			quit, err := e.handleKey(ctx, tev)
			if err != nil {
				e.status = err.Error()
			}
			if quit {
				return nil
			}
		}
	}
}

func (e *editor) handleKey(ctx context.Context, ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyEscape:
		return true, nil
	case tcell.KeyCtrlZ:
		return false, e.step(ctx, e.ctrl.UndoStep)
	case tcell.KeyCtrlY:
		return false, e.step(ctx, e.ctrl.RedoStep)
	case tcell.KeyLeft:
		if e.caret > 0 {
			e.caret--
		}
	case tcell.KeyRight:
		if e.caret < e.docLen() {
			e.caret++
		}
	case tcell.KeyHome:
		e.caret = 0
	case tcell.KeyEnd:
		e.caret = e.docLen()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.caret > 0 {
			return false, e.remove(ctx, e.caret-1, e.caret-1)
		}
	case tcell.KeyDelete:
		if e.caret < e.docLen() {
			return false, e.remove(ctx, e.caret, e.caret)
		}
	case tcell.KeyRune:
		return false, e.insert(ctx, string(ev.Rune()))
	}
	return false, nil
}

func (e *editor) insert(ctx context.Context, s string) error {
	at := e.caret
	return e.doc.Enqueue(ctx, func(w *model.Writer) error {
		if err := w.InsertText(model.NewPosition(e.root, at), s); err != nil {
			return err
		}
		e.caret = at + len([]rune(s))
		return w.SetSelection(model.CaretAt(model.NewPosition(e.root, e.caret)))
	})
}

func (e *editor) remove(ctx context.Context, at, caretAfter int) error {
	return e.doc.Enqueue(ctx, func(w *model.Writer) error {
		if err := w.Remove(model.NewPosition(e.root, at), 1); err != nil {
			return err
		}
		e.caret = caretAfter
		return w.SetSelection(model.CaretAt(model.NewPosition(e.root, e.caret)))
	})
}

// step runs an undo or redo step and snaps the caret to the restored
// selection.
func (e *editor) step(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if errors.Is(err, undo.ErrNothingToUndo) || errors.Is(err, undo.ErrNothingToRedo) {
		return nil
	}
	if err != nil {
		return err
	}
	if sel := e.doc.Selection(); !sel.IsEmpty() {
		pos := sel.Ranges[0].Start
		if pos.Root == e.root && len(pos.Path) == 1 {
			e.caret = pos.Offset()
		}
	}
	if e.caret > e.docLen() {
		e.caret = e.docLen()
	}
	return nil
}

func (e *editor) docLen() int {
	root, err := e.doc.Root(e.root)
	if err != nil {
		return 0
	}
	return root.ChildCount()
}

func (e *editor) draw() {
	e.screen.Clear()
	text, _ := e.doc.Text(e.root)
	style := tcell.StyleDefault

	x := 0
	caretX := -1
	col := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		if col == e.caret {
			caretX = x
		}
		runes := gr.Runes()
		width := gr.Width()
		e.screen.SetContent(x, 0, runes[0], runes[1:], style)
		x += width
		col += len(runes)
	}
	if caretX < 0 {
		caretX = x
	}
	e.screen.ShowCursor(caretX, 0)

	_, h := e.screen.Size()
	sx := 0
	for _, r := range e.status {
		e.screen.SetContent(sx, h-1, r, nil, style.Reverse(true))
		sx++
	}
	e.screen.Show()
}
