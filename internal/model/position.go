package model

// Comparison is the result of comparing two positions.
type Comparison int

// Comparison values.
const (
	Before Comparison = iota
	Same
	After
	Different
)

// String returns a human-readable comparison name.
func (c Comparison) String() string {
	switch c {
	case Before:
		return "before"
	case Same:
		return "same"
	case After:
		return "after"
	case Different:
		return "different"
	default:
		return "unknown"
	}
}

// RootMain is the default document root name.
const RootMain = "main"

// RootGraveyard is the root that holds logically deleted content.
const RootGraveyard = "$graveyard"

// Position is a location in the document tree: a root name plus a path of
// child offsets. The last path entry is the offset in the parent reached by
// walking the earlier entries, so the position denotes the gap before the
// child at that offset.
type Position struct {
	Root string
	Path []int
}

// NewPosition creates a position under the given root.
func NewPosition(root string, path ...int) Position {
	return Position{Root: root, Path: path}
}

// GraveyardPosition returns the canonical drop point for removed content:
// the front of the graveyard root.
func GraveyardPosition() Position {
	return Position{Root: RootGraveyard, Path: []int{0}}
}

// Offset returns the last path entry.
func (p Position) Offset() int {
	return p.Path[len(p.Path)-1]
}

// ParentPath returns the path without its last entry.
func (p Position) ParentPath() []int {
	return p.Path[:len(p.Path)-1]
}

// WithOffset returns a copy of the position with the last path entry
// replaced.
func (p Position) WithOffset(offset int) Position {
	path := clonePath(p.Path)
	path[len(path)-1] = offset
	return Position{Root: p.Root, Path: path}
}

// ShiftedBy returns a copy of the position with the last path entry shifted
// by delta.
func (p Position) ShiftedBy(delta int) Position {
	return p.WithOffset(p.Offset() + delta)
}

// Compare orders two positions in document order. Positions under different
// roots are Different. A position that is a path prefix of another comes
// first: the gap before a node precedes everything inside it.
func (p Position) Compare(other Position) Comparison {
	if p.Root != other.Root {
		return Different
	}
	for i := 0; i < len(p.Path) && i < len(other.Path); i++ {
		switch {
		case p.Path[i] < other.Path[i]:
			return Before
		case p.Path[i] > other.Path[i]:
			return After
		}
	}
	switch {
	case len(p.Path) < len(other.Path):
		return Before
	case len(p.Path) > len(other.Path):
		return After
	default:
		return Same
	}
}

// IsBefore reports whether p strictly precedes other in the same root.
func (p Position) IsBefore(other Position) bool { return p.Compare(other) == Before }

// IsAfter reports whether p strictly follows other in the same root.
func (p Position) IsAfter(other Position) bool { return p.Compare(other) == After }

// IsEqual reports whether the positions are identical.
func (p Position) IsEqual(other Position) bool { return p.Compare(other) == Same }

// IsTouching reports whether the positions denote the same gap. With
// single-slot coordinates this is position equality.
func (p Position) IsTouching(other Position) bool { return p.IsEqual(other) }

// TransformedByInsertion returns the position after an insertion of howMany
// nodes at ins. insertBefore controls the tie when the position sits exactly
// at the insertion point: true moves it after the inserted nodes.
func (p Position) TransformedByInsertion(ins Position, howMany int, insertBefore bool) Position {
	if p.Root != ins.Root {
		return p
	}
	level := len(ins.Path) - 1
	if len(p.Path) <= level || !pathsEqual(p.Path[:level], ins.Path[:level]) {
		return p
	}
	po, io := p.Path[level], ins.Path[level]
	switch {
	case po > io:
		return p.shiftedAt(level, howMany)
	case po == io:
		// A deeper path points inside the node that occupied this slot;
		// the insertion pushed it right.
		if len(p.Path) > level+1 || insertBefore {
			return p.shiftedAt(level, howMany)
		}
	}
	return p
}

// TransformedByDeletion returns the position after howMany nodes are
// detached at src. The boolean reports that the position was inside the
// detached range and must be re-homed by the caller. A gap strictly between
// detached nodes counts as inside; the boundary gaps stay put.
func (p Position) TransformedByDeletion(src Position, howMany int) (Position, bool) {
	if p.Root != src.Root {
		return p, false
	}
	level := len(src.Path) - 1
	if len(p.Path) <= level || !pathsEqual(p.Path[:level], src.Path[:level]) {
		return p, false
	}
	po, so := p.Path[level], src.Path[level]
	deeper := len(p.Path) > level+1
	if deeper {
		switch {
		case po < so:
			return p, false
		case po < so+howMany:
			return p, true
		default:
			return p.shiftedAt(level, -howMany), false
		}
	}
	switch {
	case po <= so:
		return p, false
	case po < so+howMany:
		return p, true
	default:
		return p.shiftedAt(level, -howMany), false
	}
}

// TransformedByMove returns the position after howMany nodes are moved from
// src to tgt, where tgt is the landing spot in post-removal coordinates.
// Positions inside the moved range travel with it; everything else is
// shifted by the removal and then by the insertion.
func (p Position) TransformedByMove(src, tgt Position, howMany int, insertBefore bool) Position {
	moved, inside := p.TransformedByDeletion(src, howMany)
	if inside {
		level := len(src.Path) - 1
		rel := p.Path[level] - src.Path[level]
		path := clonePath(tgt.Path)
		path[len(path)-1] += rel
		path = append(path, p.Path[level+1:]...)
		return Position{Root: tgt.Root, Path: path}
	}
	return moved.TransformedByInsertion(tgt, howMany, insertBefore)
}

func (p Position) shiftedAt(level, delta int) Position {
	path := clonePath(p.Path)
	path[level] += delta
	return Position{Root: p.Root, Path: path}
}

func clonePath(path []int) []int {
	out := make([]int, len(path))
	copy(out, path)
	return out
}

func pathsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
