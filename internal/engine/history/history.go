// Package history implements the undo/redo log for a document.
//
// The log records text changes as they are applied, folds rapid
// keystrokes into single entries (coalescing) and brackets compound
// operations into groups that undo in one step. Inversion of a change is
// delegated to an Applier so the log never mutates a buffer directly.
package history

import (
	"errors"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Errors returned by log operations.
var (
	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// ChangeKind distinguishes insertions from deletions.
type ChangeKind uint8

const (
	KindInsert ChangeKind = iota
	KindDelete
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	if k == KindDelete {
		return "delete"
	}
	return "insert"
}

// TextChange is a single recorded insertion or deletion.
//
// For an insertion the affected bytes are live in the buffer, so only
// the origin and length are kept (plus the final byte, which drives the
// word-boundary coalescing rule). For a deletion the removed bytes are
// stored so the change can be reversed.
type TextChange struct {
	Kind   ChangeKind
	Origin buffer.Position
	Length int
	Bytes  []byte

	lastByte byte
	version  uint64
}

// GroupedChange is an ordered list of child changes that undo and redo
// as a single step.
type GroupedChange struct {
	Children []Change
}

// Change is either a *TextChange or a *GroupedChange.
type Change interface {
	isChange()
}

func (*TextChange) isChange()    {}
func (*GroupedChange) isChange() {}

// Applier performs the buffer mutations needed to invert a change. The
// document implements this; the log drives it during undo and redo.
type Applier interface {
	// ApplyInsert reinserts previously deleted bytes at origin.
	ApplyInsert(origin buffer.Position, text []byte) error

	// ApplyDelete removes length bytes at origin and returns them.
	ApplyDelete(origin buffer.Position, length int) ([]byte, error)
}

// ChangeState identifies the top undo entry and its coalesce generation.
// Equal states imply unchanged content, which is how saved/dirty is
// decided. The converse does not hold: an edit reverted by hand rather
// than by undo leaves a different state.
type ChangeState struct {
	top     Change
	version uint64
}

// Equal reports whether two change states identify the same content.
func (s ChangeState) Equal(other ChangeState) bool {
	return s.top == other.top && s.version == other.version
}

// Log is the pair of undo/redo stacks for one document.
type Log struct {
	undo []Change
	redo []Change

	group     *GroupedChange
	groupOpen bool

	applying bool
	disabled bool
}

// NewLog creates an empty undo log.
func NewLog() *Log {
	return &Log{}
}

// Disable suppresses recording, e.g. while loading a file.
func (l *Log) Disable() {
	l.disabled = true
}

// Enable resumes recording.
func (l *Log) Enable() {
	l.disabled = false
}

// Clear discards all recorded changes and any open group.
func (l *Log) Clear() {
	l.undo = nil
	l.redo = nil
	l.group = nil
	l.groupOpen = false
}

// CanUndo reports whether an undo step is available.
func (l *Log) CanUndo() bool {
	return len(l.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (l *Log) CanRedo() bool {
	return len(l.redo) > 0
}

// Applying reports whether the log is currently replaying a change.
// Recording is suppressed for the duration.
func (l *Log) Applying() bool {
	return l.applying
}

// State captures the identity of the top undo entry and its coalesce
// generation.
func (l *Log) State() ChangeState {
	if len(l.undo) == 0 {
		return ChangeState{}
	}
	top := l.undo[len(l.undo)-1]
	state := ChangeState{top: top}
	if tc, ok := top.(*TextChange); ok {
		state.version = tc.version
	}
	return state
}

// RecordInsert records an insertion of text at origin.
func (l *Log) RecordInsert(origin buffer.Position, text []byte) {
	if l.applying || l.disabled || len(text) == 0 {
		return
	}

	change := &TextChange{
		Kind:     KindInsert,
		Origin:   origin,
		Length:   len(text),
		lastByte: text[len(text)-1],
	}

	if l.groupOpen {
		l.group.Children = append(l.group.Children, change)
		return
	}

	if top := l.topText(); top != nil && top.coalesceInsert(change, text[0]) {
		l.redo = nil
		return
	}

	l.push(change)
}

// RecordDelete records a deletion of text at origin. The removed bytes
// are retained for undo.
func (l *Log) RecordDelete(origin buffer.Position, text []byte) {
	if l.applying || l.disabled || len(text) == 0 {
		return
	}

	change := &TextChange{
		Kind:   KindDelete,
		Origin: origin,
		Length: len(text),
		Bytes:  append([]byte(nil), text...),
	}

	if l.groupOpen {
		l.group.Children = append(l.group.Children, change)
		return
	}

	if top := l.topText(); top != nil && top.coalesceDelete(change) {
		l.redo = nil
		return
	}

	l.push(change)
}

// topText returns the top undo entry when it is a TextChange.
func (l *Log) topText() *TextChange {
	if len(l.undo) == 0 {
		return nil
	}
	tc, _ := l.undo[len(l.undo)-1].(*TextChange)
	return tc
}

// coalesceInsert folds next into the receiver when it continues the same
// typing run. A run breaks when the previous chunk ended in whitespace
// and the new chunk does not start with it, which yields one word per
// undo step.
func (tc *TextChange) coalesceInsert(next *TextChange, firstByte byte) bool {
	if tc.Kind != KindInsert || next.Kind != KindInsert {
		return false
	}
	if next.Origin.Offset != tc.Origin.Offset+tc.Length {
		return false
	}
	if isWhitespace(tc.lastByte) && !isWhitespace(firstByte) {
		return false
	}
	tc.Length += next.Length
	tc.lastByte = next.lastByte
	tc.version++
	return true
}

// coalesceDelete folds next into the receiver when both delete at the
// same origin, as repeated presses of the delete key do.
func (tc *TextChange) coalesceDelete(next *TextChange) bool {
	if tc.Kind != KindDelete || next.Kind != KindDelete {
		return false
	}
	if next.Origin.Offset != tc.Origin.Offset {
		return false
	}
	tc.Bytes = append(tc.Bytes, next.Bytes...)
	tc.Length += next.Length
	tc.version++
	return true
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// push appends a change to the undo stack and clears the redo stack.
func (l *Log) push(c Change) {
	l.undo = append(l.undo, c)
	l.redo = nil
}

// StartGroup opens a group. Subsequent records are appended to it until
// EndGroup. Calling StartGroup while a group is open is a no-op.
func (l *Log) StartGroup() {
	if l.groupOpen || l.applying || l.disabled {
		return
	}
	l.group = &GroupedChange{}
	l.groupOpen = true
}

// EndGroup closes the open group. A group that recorded no children is
// discarded.
func (l *Log) EndGroup() {
	if !l.groupOpen {
		return
	}
	l.groupOpen = false
	group := l.group
	l.group = nil
	if len(group.Children) == 0 {
		return
	}
	l.push(group)
}

// GroupOpen reports whether a group is currently collecting changes.
func (l *Log) GroupOpen() bool {
	return l.groupOpen
}

// Undo reverses the most recent change, moving it to the redo stack.
func (l *Log) Undo(a Applier) error {
	if len(l.undo) == 0 {
		return ErrNothingToUndo
	}

	top := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]

	l.applying = true
	err := invert(top, a, true)
	l.applying = false

	if err != nil {
		l.undo = append(l.undo, top)
		return err
	}

	l.redo = append(l.redo, top)
	return nil
}

// Redo re-applies the most recently undone change.
func (l *Log) Redo(a Applier) error {
	if len(l.redo) == 0 {
		return ErrNothingToRedo
	}

	top := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]

	l.applying = true
	err := invert(top, a, false)
	l.applying = false

	if err != nil {
		l.redo = append(l.redo, top)
		return err
	}

	l.undo = append(l.undo, top)
	return nil
}

// invert reverses a change in place. Grouped children invert in reverse
// order on undo and forward order on redo.
func invert(c Change, a Applier, reverse bool) error {
	switch change := c.(type) {
	case *TextChange:
		return change.invert(a)
	case *GroupedChange:
		if reverse {
			for i := len(change.Children) - 1; i >= 0; i-- {
				if err := invert(change.Children[i], a, reverse); err != nil {
					return err
				}
			}
			return nil
		}
		for _, child := range change.Children {
			if err := invert(child, a, reverse); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// invert flips a text change: an insert becomes a delete capturing the
// removed bytes, a delete reinserts its stored bytes.
func (tc *TextChange) invert(a Applier) error {
	if tc.Kind == KindInsert {
		removed, err := a.ApplyDelete(tc.Origin, tc.Length)
		if err != nil {
			return err
		}
		tc.Kind = KindDelete
		tc.Bytes = removed
		return nil
	}

	if err := a.ApplyInsert(tc.Origin, tc.Bytes); err != nil {
		return err
	}
	tc.Kind = KindInsert
	tc.Bytes = nil
	return nil
}
