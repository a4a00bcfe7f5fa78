package undo

import (
	"sync"
	"time"

	"github.com/dshills/treedoc/internal/model"
	"github.com/google/uuid"
)

// Item is one stack entry: a batch plus the selection the user had before
// the batch applied, so a revert can put the caret back.
type Item struct {
	Batch     *model.Batch
	Selection *model.Selection
	Timestamp time.Time
}

// Stack is an unbounded LIFO of revertible batches.
type Stack struct {
	mu    sync.Mutex
	items []*Item
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push adds a batch to the stack. Pushing a batch that is already on the
// stack is ignored, so a batch re-reported through the change stream never
// produces a duplicate entry.
func (s *Stack) Push(batch *model.Batch, selection *model.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Batch.ID() == batch.ID() {
			return
		}
	}
	s.items = append(s.items, &Item{
		Batch:     batch,
		Selection: selection.Clone(),
		Timestamp: time.Now(),
	})
}

// Pop removes and returns the most recent entry.
func (s *Stack) Pop() (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, false
	}
	item := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return item, true
}

// Remove removes and returns the entry for the given batch, wherever it
// sits on the stack.
func (s *Stack) Remove(id uuid.UUID) (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.Batch.ID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return item, true
		}
	}
	return nil, false
}

// Restore puts an entry back on top. Used when a revert fails after the
// entry was popped.
func (s *Stack) Restore(item *Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// Peek returns the most recent entry without removing it.
func (s *Stack) Peek() (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the stack has no entries.
func (s *Stack) IsEmpty() bool {
	return s.Len() == 0
}

// Clear removes all entries.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
