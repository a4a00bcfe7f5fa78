package model

// Range is a span of the document between two positions under the same root.
// Start and End denote gaps, so a range covers the child slots in
// [Start.Offset, End.Offset) when both sit at the same level. A range whose
// positions coincide is collapsed and behaves like a caret.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range between start and end.
func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// CollapsedRange creates a collapsed range at pos.
func CollapsedRange(pos Position) Range {
	return Range{Start: pos, End: pos}
}

// IsCollapsed reports whether the range covers no content.
func (r Range) IsCollapsed() bool { return r.Start.IsEqual(r.End) }

// InGraveyard reports whether the range lives under the graveyard root.
func (r Range) InGraveyard() bool { return r.Start.Root == RootGraveyard }

// ContainsPosition reports whether pos falls strictly inside the range.
func (r Range) ContainsPosition(pos Position) bool {
	return r.Start.IsBefore(pos) && r.End.IsAfter(pos)
}

// IsTouching reports whether other shares a boundary gap with or overlaps r.
func (r Range) IsTouching(other Range) bool {
	if r.Start.Root != other.Start.Root {
		return false
	}
	return r.Start.Compare(other.End) != After && other.Start.Compare(r.End) != After
}

// sameLevel reports whether both endpoints sit in the same parent as pos.
func (r Range) sameLevel(pos Position) bool {
	level := len(pos.Path) - 1
	return r.Start.Root == pos.Root && r.End.Root == pos.Root &&
		len(r.Start.Path) == level+1 && len(r.End.Path) == level+1 &&
		pathsEqual(r.Start.ParentPath(), pos.ParentPath()) &&
		pathsEqual(r.End.ParentPath(), pos.ParentPath())
}

// TransformedByInsertion returns the range after an insertion of howMany
// nodes at ins. With spread true, an insertion strictly inside the range
// splits it into the pieces on either side of the inserted content; the
// pieces keep document order. With spread false the range stays contiguous
// and grows to cover the insertion.
func (r Range) TransformedByInsertion(ins Position, howMany int, spread bool) []Range {
	if r.Start.Root != ins.Root {
		return []Range{r}
	}
	if spread && r.sameLevel(ins) {
		s, e, io := r.Start.Offset(), r.End.Offset(), ins.Offset()
		if s < io && io < e {
			return []Range{
				{Start: r.Start, End: r.Start.WithOffset(io)},
				{Start: r.Start.WithOffset(io + howMany), End: r.End.WithOffset(e + howMany)},
			}
		}
	}
	start := r.Start.TransformedByInsertion(ins, howMany, true)
	end := r.End.TransformedByInsertion(ins, howMany, r.IsCollapsed())
	return []Range{{Start: start, End: end}}
}

// TransformedByDeletion returns the range after howMany nodes are detached
// at src, or an empty slice when the whole range was inside the detached
// content. Endpoints caught inside the detachment clamp to its boundary.
func (r Range) TransformedByDeletion(src Position, howMany int) []Range {
	if r.Start.Root != src.Root {
		return []Range{r}
	}
	start, startIn := r.Start.TransformedByDeletion(src, howMany)
	end, endIn := r.End.TransformedByDeletion(src, howMany)
	if startIn && endIn {
		return nil
	}
	if startIn {
		start = clampToLevel(r.Start, src)
	}
	if endIn {
		end = clampToLevel(r.End, src)
	}
	return []Range{{Start: start, End: end}}
}

// clampToLevel snaps a position caught inside a detached span to the gap
// left behind at the detachment site.
func clampToLevel(p, src Position) Position {
	level := len(src.Path) - 1
	path := clonePath(src.Path)
	_ = p
	return Position{Root: src.Root, Path: path[:level+1]}
}

// TransformedByMove returns the range after howMany nodes move from src to
// tgt, where tgt is the landing spot in post-removal coordinates. Content
// inside the moved span travels with it. With spread true a range that
// partially overlaps the moved span splits into the pieces left behind and
// the piece that travelled; with spread false the surviving pieces merge
// back into one contiguous range where possible.
func (r Range) TransformedByMove(src, tgt Position, howMany int, spread bool) []Range {
	if r.Start.Root != src.Root && r.Start.Root != tgt.Root {
		return []Range{r}
	}
	if r.Start.Root == src.Root && r.sameLevel(src) {
		s, e := r.Start.Offset(), r.End.Offset()
		so := src.Offset()
		ovS, ovE := maxInt(s, so), minInt(e, so+howMany)
		if ovS < ovE {
			return r.moveOverlap(src, tgt, howMany, s, e, so, ovS, ovE, spread)
		}
	}
	start := r.Start.TransformedByMove(src, tgt, howMany, true)
	end := r.End.TransformedByMove(src, tgt, howMany, r.IsCollapsed())
	return []Range{{Start: start, End: end}}
}

func (r Range) moveOverlap(src, tgt Position, howMany, s, e, so, ovS, ovE int, spread bool) []Range {
	moved := Range{
		Start: tgt.WithOffset(tgt.Offset() + ovS - so),
		End:   tgt.WithOffset(tgt.Offset() + ovE - so),
	}
	if s >= so && e <= so+howMany {
		// Fully contained: the whole range travels.
		return []Range{moved}
	}
	var out []Range
	if s < ovS {
		left := Range{Start: r.Start, End: r.Start.WithOffset(ovS)}
		out = append(out, left.transformOutside(src, tgt, howMany)...)
	}
	out = append(out, moved)
	if e > ovE {
		right := Range{Start: r.Start.WithOffset(ovE), End: r.Start.WithOffset(e)}
		out = append(out, right.transformOutside(src, tgt, howMany)...)
	}
	if !spread {
		out = coalesceRanges(out)
	}
	sortRanges(out)
	return out
}

// transformOutside carries a range that lies entirely outside the moved
// span through the removal and the insertion.
func (r Range) transformOutside(src, tgt Position, howMany int) []Range {
	pieces := r.TransformedByDeletion(src, howMany)
	var out []Range
	for _, p := range pieces {
		out = append(out, p.TransformedByInsertion(tgt, howMany, false)...)
	}
	return out
}

// coalesceRanges merges touching ranges in place and returns the result.
func coalesceRanges(ranges []Range) []Range {
	sortRanges(ranges)
	out := ranges[:0]
	for _, r := range ranges {
		if len(out) > 0 && out[len(out)-1].IsTouching(r) {
			last := &out[len(out)-1]
			if last.End.IsBefore(r.End) {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortRanges(ranges []Range) {
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0 && ranges[j].Start.IsBefore(ranges[j-1].Start); j-- {
			ranges[j], ranges[j-1] = ranges[j-1], ranges[j]
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
