package history

import (
	"sync"

	"github.com/dshills/treedoc/internal/model"
)

// Log is the append-only record of applied document deltas, ordered by
// base version. It implements model.History.
type Log struct {
	mu     sync.Mutex
	deltas []*model.Delta
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a delta. Deltas arrive in application order, so base
// versions are monotonic.
func (l *Log) Add(d *model.Delta) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deltas = append(l.deltas, d)
}

// Deltas returns the logged deltas with base version at or after since.
func (l *Log) Deltas(since int) []*model.Delta {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := 0
	for i < len(l.deltas) && l.deltas[i].BaseVersion < since {
		i++
	}
	out := make([]*model.Delta, len(l.deltas)-i)
	copy(out, l.deltas[i:])
	return out
}

// Len returns the number of logged deltas.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.deltas)
}

// Truncate drops every delta with base version at or after version. The
// document uses this to unwind a failed change scope.
func (l *Log) Truncate(version int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := len(l.deltas)
	for i > 0 && l.deltas[i-1].BaseVersion >= version {
		i--
	}
	l.deltas = l.deltas[:i]
}

// TransformDelta rebases d over every logged delta applied after d's base
// version and returns the rewritten delta. It returns
// model.ErrDeltaObsoleted when no operation survives.
func (l *Log) TransformDelta(d *model.Delta) (*model.Delta, error) {
	l.mu.Lock()
	later := make([]*model.Delta, 0)
	for _, h := range l.deltas {
		if h.BaseVersion >= d.BaseVersion {
			later = append(later, h)
		}
	}
	l.mu.Unlock()
	return transformOver(d, later)
}
