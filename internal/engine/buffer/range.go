package buffer

import "errors"

// ErrEmptyRange indicates a range with zero length where content was
// required.
var ErrEmptyRange = errors.New("empty range")

// Range is an ordered pair of positions interpreted as the half-open
// byte interval [Start.Offset, End.Offset).
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range from two positions, swapping them if needed
// so that Start <= End.
func NewRange(a, b Position) Range {
	if b.Offset < a.Offset {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Len returns the byte length of the range.
func (r Range) Len() int {
	return r.End.Offset - r.Start.Offset
}

// Empty reports whether the range has zero length.
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start.Offset && offset < r.End.Offset
}

// OffsetInRange reports whether the byte at offset lies inside [start, end)
// for raw offsets, without position bookkeeping.
func OffsetInRange(start, end, offset int) bool {
	return offset >= start && offset < end
}
