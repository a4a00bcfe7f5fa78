package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/treedoc/internal/event"
)

// TopicApplied is published after an enqueued-change scope exits with at
// least one document delta applied.
const TopicApplied event.Topic = "document.applied"

// ApplyInfo is the payload of a "document.applied" event.
type ApplyInfo struct {
	// Batch holds every delta the scope produced.
	Batch *Batch

	// SelectionBefore is the selection captured when the scope was entered,
	// before any of the batch's operations ran.
	SelectionBefore *Selection
}

// History receives every applied document delta and can replay or rebase
// them. The document appends and truncates; the undo machinery reads.
type History interface {
	// Add appends a delta to the log.
	Add(d *Delta)

	// Deltas returns the logged deltas whose base version is at or after
	// since, in application order.
	Deltas(since int) []*Delta

	// TransformDelta rebases a delta produced against an older document
	// version over every logged delta that applied after it.
	TransformDelta(d *Delta) (*Delta, error)

	// Truncate drops every logged delta whose base version is at or after
	// version.
	Truncate(version int)
}

// Document is the tree-structured document: named roots, a version counter
// incremented per applied operation, the current selection, and the
// enqueued-change scope that funnels all mutation.
type Document struct {
	mu        sync.Mutex
	roots     map[string]*Node
	fragments map[string]*Node
	version   int
	selection *Selection
	hist      History
	bus       event.Bus
	scope     *changeScope
}

// changeScope tracks one Enqueue invocation: the batch being filled, the
// state to restore on failure, and the applied operations for rollback.
type changeScope struct {
	batch        *Batch
	startVersion int
	selBefore    *Selection
	applied      []appliedOp
	depth        int
}

type appliedOp struct {
	op       Operation
	document bool
}

// NewDocument creates a document with the main and graveyard roots.
func NewDocument(bus event.Bus, hist History) *Document {
	return &Document{
		roots: map[string]*Node{
			RootMain:      NewElement(RootMain),
			RootGraveyard: NewElement(RootGraveyard),
		},
		fragments: make(map[string]*Node),
		hist:      hist,
		bus:       bus,
	}
}

// Version returns the number of operations applied to document roots.
func (doc *Document) Version() int {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.version
}

// Root returns the named document root.
func (doc *Document) Root(name string) (*Node, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if n, ok := doc.roots[name]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRoot, name)
}

// CreateRoot registers an additional document root.
func (doc *Document) CreateRoot(name string) (*Node, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if _, ok := doc.roots[name]; ok {
		return nil, fmt.Errorf("root %q already exists", name)
	}
	if _, ok := doc.fragments[name]; ok {
		return nil, fmt.Errorf("root %q already exists as a fragment", name)
	}
	n := NewElement(name)
	doc.roots[name] = n
	return n, nil
}

// CreateFragment registers a detached scratch root. Edits to fragments flow
// through the same writer but are invisible to history and the undo stacks.
func (doc *Document) CreateFragment(name string, children ...*Node) (*Node, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if _, ok := doc.roots[name]; ok {
		return nil, fmt.Errorf("fragment %q already exists as a root", name)
	}
	if _, ok := doc.fragments[name]; ok {
		return nil, fmt.Errorf("fragment %q already exists", name)
	}
	n := NewElement(name, children...)
	doc.fragments[name] = n
	return n, nil
}

// Text returns the concatenated text of the named root.
func (doc *Document) Text(root string) (string, error) {
	n, err := doc.Root(root)
	if err != nil {
		return "", err
	}
	return n.Text(), nil
}

// Selection returns a copy of the current selection, or nil.
func (doc *Document) Selection() *Selection {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.selection.Clone()
}

// Enqueue opens a change scope, hands fn a writer, and publishes a single
// "document.applied" event after the scope exits when the batch touched a
// document root. Nested calls join the outer scope's batch and publish
// nothing themselves. When fn returns an error every operation applied
// inside the scope is rolled back and no event is published.
func (doc *Document) Enqueue(ctx context.Context, fn func(w *Writer) error) error {
	doc.mu.Lock()
	if doc.scope != nil {
		doc.scope.depth++
		scope := doc.scope
		doc.mu.Unlock()
		err := fn(&Writer{doc: doc, scope: scope})
		doc.mu.Lock()
		scope.depth--
		doc.mu.Unlock()
		return err
	}
	scope := &changeScope{
		batch:        NewBatch(KindUser),
		startVersion: doc.version,
		selBefore:    doc.selection.Clone(),
	}
	doc.scope = scope
	doc.mu.Unlock()

	err := fn(&Writer{doc: doc, scope: scope})

	doc.mu.Lock()
	doc.scope = nil
	if err != nil {
		doc.rollbackLocked(scope)
		doc.mu.Unlock()
		return err
	}
	publish := scope.batch.TouchesDocument()
	doc.mu.Unlock()

	if publish && doc.bus != nil {
		info := ApplyInfo{Batch: scope.batch, SelectionBefore: scope.selBefore}
		return doc.bus.Publish(ctx, event.NewEvent(TopicApplied, info, "document"))
	}
	return nil
}

// rollbackLocked undoes every operation the scope applied, drops the
// scope's history entries, and restores version and selection.
func (doc *Document) rollbackLocked(scope *changeScope) {
	for i := len(scope.applied) - 1; i >= 0; i-- {
		op := scope.applied[i].op
		if op.Kind == OpInsert {
			// Inserted nodes are detached outright so the graveyard does not
			// keep content the failed scope created.
			parent, err := doc.nodeAt(op.Position.Root, op.Position.ParentPath())
			if err != nil {
				panic(fmt.Sprintf("rollback failed: %v", err))
			}
			parent.removeChildren(op.Position.Offset(), len(op.Nodes))
			continue
		}
		// Landing-spot targets make the structural inverse exact.
		if err := doc.applyOpLocked(op.Reversed()); err != nil {
			panic(fmt.Sprintf("rollback failed: %v", err))
		}
	}
	if doc.hist != nil {
		doc.hist.Truncate(scope.startVersion)
	}
	doc.version = scope.startVersion
	doc.selection = scope.selBefore
}

// resolveRoot returns the tree for a root name and whether it is a
// document root as opposed to a fragment.
func (doc *Document) resolveRoot(name string) (*Node, bool, error) {
	if n, ok := doc.roots[name]; ok {
		return n, true, nil
	}
	if n, ok := doc.fragments[name]; ok {
		return n, false, nil
	}
	return nil, false, fmt.Errorf("%w: %q", ErrUnknownRoot, name)
}

// nodeAt walks a child-offset path below the named root.
func (doc *Document) nodeAt(root string, path []int) (*Node, error) {
	n, _, err := doc.resolveRoot(root)
	if err != nil {
		return nil, err
	}
	for _, offset := range path {
		n = n.Child(offset)
		if n == nil {
			return nil, fmt.Errorf("%w: %v under %q", ErrInvalidPath, path, root)
		}
	}
	return n, nil
}

// applyDeltaLocked stamps the delta's base version, applies its operations
// in order, and logs document deltas to history. The scope records each
// applied operation for rollback.
func (doc *Document) applyDeltaLocked(scope *changeScope, d *Delta) error {
	document := true
	for _, op := range d.Ops {
		if isDoc, err := doc.opTouchesDocument(op); err != nil {
			return err
		} else if !isDoc {
			document = false
		}
	}
	d.document = document
	if document {
		d.BaseVersion = doc.version
	}
	for _, op := range d.Ops {
		if err := doc.applyOpLocked(op); err != nil {
			return err
		}
		scope.applied = append(scope.applied, appliedOp{op: op, document: document})
		if document {
			doc.version++
		}
	}
	scope.batch.AddDelta(d)
	if document && doc.hist != nil && !d.IsEmpty() {
		doc.hist.Add(d)
	}
	return nil
}

func (doc *Document) opTouchesDocument(op Operation) (bool, error) {
	rootOf := func(name string) (bool, error) {
		_, isDoc, err := doc.resolveRoot(name)
		return isDoc, err
	}
	switch op.Kind {
	case OpInsert:
		return rootOf(op.Position.Root)
	case OpMove, OpRemove, OpReinsert:
		srcDoc, err := rootOf(op.Source.Root)
		if err != nil {
			return false, err
		}
		tgtDoc, err := rootOf(op.Target.Root)
		if err != nil {
			return false, err
		}
		return srcDoc || tgtDoc, nil
	default:
		return false, nil
	}
}

// applyOpLocked mutates the tree for a single operation.
func (doc *Document) applyOpLocked(op Operation) error {
	switch op.Kind {
	case OpNoOp:
		return nil
	case OpInsert:
		parent, err := doc.nodeAt(op.Position.Root, op.Position.ParentPath())
		if err != nil {
			return err
		}
		offset := op.Position.Offset()
		if offset < 0 || offset > parent.ChildCount() {
			return fmt.Errorf("%w: insert at %d of %d", ErrInvalidOffset, offset, parent.ChildCount())
		}
		parent.insertChildren(offset, op.Nodes)
		return nil
	case OpMove, OpRemove, OpReinsert:
		return doc.applyMoveLocked(op)
	default:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	}
}

func (doc *Document) applyMoveLocked(op Operation) error {
	if op.HowMany <= 0 {
		return ErrNothingToMove
	}
	if err := checkMoveTarget(op); err != nil {
		return err
	}
	srcParent, err := doc.nodeAt(op.Source.Root, op.Source.ParentPath())
	if err != nil {
		return err
	}
	so := op.Source.Offset()
	if so < 0 || so+op.HowMany > srcParent.ChildCount() {
		return fmt.Errorf("%w: [%d,%d) of %d", ErrInvalidMoveRange, so, so+op.HowMany, srcParent.ChildCount())
	}
	nodes := srcParent.removeChildren(so, op.HowMany)

	tgtParent, err := doc.nodeAt(op.Target.Root, op.Target.ParentPath())
	if err != nil {
		srcParent.insertChildren(so, nodes)
		return err
	}
	to := op.Target.Offset()
	if to < 0 || to > tgtParent.ChildCount() {
		srcParent.insertChildren(so, nodes)
		return fmt.Errorf("%w: move target at %d of %d", ErrInvalidOffset, to, tgtParent.ChildCount())
	}
	tgtParent.insertChildren(to, nodes)
	return nil
}

// checkMoveTarget rejects a target path that descends into the moved span.
func checkMoveTarget(op Operation) error {
	if op.Target.Root != op.Source.Root {
		return nil
	}
	level := len(op.Source.Path) - 1
	if len(op.Target.Path) <= level+1 {
		return nil
	}
	if !pathsEqual(op.Target.Path[:level], op.Source.Path[:level]) {
		return nil
	}
	to, so := op.Target.Path[level], op.Source.Path[level]
	if to >= so && to < so+op.HowMany {
		return ErrMoveInsideMovedRange
	}
	return nil
}
