// Package mark keeps externally owned positions consistent across buffer
// edits. Every live observer of the document (cursor, selection anchor,
// screen start, stream endpoints) registers its position here; the
// document walks the registry after each mutation. No other component may
// adjust a registered position behind the buffer's back.
package mark

import (
	"errors"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Errors returned by registry operations.
var (
	// ErrAlreadyTracked indicates the position is already registered.
	ErrAlreadyTracked = errors.New("position already tracked by a mark")

	// ErrNotTracked indicates the position has no mark.
	ErrNotTracked = errors.New("position not tracked by a mark")
)

// Property is a bitset of mark behaviors.
type Property uint8

const (
	// AdjustOffsetOnly skips line/column maintenance after edits. Used by
	// stream endpoints that only need a byte window.
	AdjustOffsetOnly Property = 1 << iota

	// NoAdjustOnBufferPos leaves a mark in place when an edit lands
	// exactly on it. Used by the screen start so inserting at the top of
	// the viewport does not push it down.
	NoAdjustOnBufferPos
)

// Has reports whether the property set contains prop.
func (p Property) Has(prop Property) bool {
	return p&prop != 0
}

// Mark pairs a reference to an externally owned position with its
// adjustment properties.
type Mark struct {
	pos   *buffer.Position
	props Property
}

// Position returns the tracked position.
func (m *Mark) Position() *buffer.Position {
	return m.pos
}

// Properties returns the mark's property set.
func (m *Mark) Properties() Property {
	return m.props
}

// ChangeKind distinguishes the two mutation shapes a registry reacts to.
type ChangeKind uint8

const (
	ChangeInsert ChangeKind = iota
	ChangeDelete
)

// Registry tracks marks keyed by the identity of their position slot.
type Registry struct {
	marks map[*buffer.Position]*Mark
}

// NewRegistry creates an empty mark registry.
func NewRegistry() *Registry {
	return &Registry{marks: make(map[*buffer.Position]*Mark)}
}

// Add registers pos with the given properties. Registering the same
// position slot twice is an error.
func (r *Registry) Add(pos *buffer.Position, props Property) error {
	if _, ok := r.marks[pos]; ok {
		return ErrAlreadyTracked
	}
	r.marks[pos] = &Mark{pos: pos, props: props}
	return nil
}

// Remove drops the mark for pos.
func (r *Registry) Remove(pos *buffer.Position) error {
	if _, ok := r.marks[pos]; !ok {
		return ErrNotTracked
	}
	delete(r.marks, pos)
	return nil
}

// Tracked reports whether pos has a mark.
func (r *Registry) Tracked(pos *buffer.Position) bool {
	_, ok := r.marks[pos]
	return ok
}

// Len returns the number of registered marks.
func (r *Registry) Len() int {
	return len(r.marks)
}

// Update walks every mark after an edit. The change is described by its
// kind, the position it originated at, its byte length and its net
// newline delta.
func (r *Registry) Update(kind ChangeKind, origin buffer.Position, length, newlines int) {
	for _, m := range r.marks {
		m.update(kind, origin, length, newlines)
	}
}

// update applies the adjustment contract to a single mark.
func (m *Mark) update(kind ChangeKind, origin buffer.Position, length, newlines int) {
	pos := m.pos

	if pos.Line == 0 || length == 0 || pos.Offset < origin.Offset ||
		(m.props.Has(NoAdjustOnBufferPos) && pos.Offset == origin.Offset) {
		return
	}

	switch kind {
	case ChangeInsert:
		pos.Offset += length

		if !m.props.Has(AdjustOffsetOnly) {
			if pos.Line == origin.Line {
				pos.RecalcCol()
			}
			pos.Line += newlines
		}
	case ChangeDelete:
		if pos.Offset < origin.Offset+length {
			// The mark fell inside the deleted region.
			pos.Offset = origin.Offset
			pos.Line = origin.Line
			pos.Col = origin.Col
		} else {
			pos.Offset -= length

			if !m.props.Has(AdjustOffsetOnly) {
				if pos.Line <= origin.Line+newlines {
					pos.RecalcCol()
				}
				pos.Line -= newlines
			}
		}
	}
}
