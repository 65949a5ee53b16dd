package engine

import (
	"regexp"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/engine/mark"
)

// Document owns a gap-buffered byte sequence together with everything
// that must stay consistent with it: the cursor, the selection anchor,
// the mark registry, the undo log and the search state.
//
// A Document is owned by a single editor goroutine. Editing operations
// run to completion; no locking is performed.
type Document struct {
	cfg  *config.Config
	gb   *buffer.GapBuffer
	log  *history.Log
	regs *mark.Registry

	cursor buffer.Position
	anchor buffer.Position

	format    buffer.LineEnding
	fileInfo  FileInfo
	drawDirty bool

	// lineColOffset preserves the display column across vertical moves
	// over lines of uneven length.
	lineColOffset int

	mask   *regexp.Regexp
	regex  RegexEngine
	search SearchState

	saved history.ChangeState
}

// NewDocument creates a document for the given file. The file is not
// read until LoadFile.
func NewDocument(info FileInfo, cfg *config.Config) *Document {
	if cfg == nil {
		cfg = config.Default()
	}

	gb := buffer.NewGapBuffer(0)

	d := &Document{
		cfg:      cfg,
		gb:       gb,
		log:      history.NewLog(),
		regs:     mark.NewRegistry(),
		format:   buffer.LineEndingLF,
		fileInfo: info,
		regex:    NewStdRegexEngine(),
	}

	d.cursor = buffer.NewPosition(gb, d.format, cfg.TabWidth())
	d.anchor = buffer.NewPosition(gb, d.format, cfg.TabWidth())
	d.anchor.Deactivate()

	// The cursor and anchor observe edits through the registry like any
	// other position; pinning them at the edit point lets operations
	// control cursor placement explicitly.
	d.regs.Add(&d.cursor, mark.NoAdjustOnBufferPos)
	d.regs.Add(&d.anchor, mark.NoAdjustOnBufferPos)

	d.saved = d.log.State()
	return d
}

// NewDocumentFromString creates an in-memory document with initial
// content, for callers that do not load from disk.
func NewDocumentFromString(text string, cfg *config.Config) *Document {
	d := NewDocument(FileInfo{}, cfg)
	d.log.Disable()
	d.gb.SetPoint(0)
	d.gb.Insert([]byte(text))
	d.format = buffer.DetectLineEnding([]byte(text))
	d.applyFormat()
	d.log.Enable()
	d.saved = d.log.State()
	return d
}

// Config returns the document's option snapshot.
func (d *Document) Config() *config.Config {
	return d.cfg
}

// Buffer returns the underlying gap buffer. The view projector reads
// through it; mutating it directly bypasses every consistency guarantee.
func (d *Document) Buffer() *buffer.GapBuffer {
	return d.gb
}

// FileInfo returns the file this document is bound to.
func (d *Document) FileInfo() FileInfo {
	return d.fileInfo
}

// Format returns the document's line ending format.
func (d *Document) Format() buffer.LineEnding {
	return d.format
}

// SetFormat changes the line ending format. Existing buffer content is
// not rewritten; subsequent inserts and pasted text use the new format.
func (d *Document) SetFormat(name string) error {
	le, err := buffer.ParseLineEnding(name)
	if err != nil {
		return wrapError(KindInvalidArgument, err, "file format %q", name)
	}
	d.format = le
	d.applyFormat()
	return nil
}

// applyFormat pushes the current format into the document's positions.
func (d *Document) applyFormat() {
	d.cursor.SetLineEnding(d.format)
	d.anchor.SetLineEnding(d.format)
}

// Cursor returns a copy of the cursor position.
func (d *Document) Cursor() buffer.Position {
	return d.cursor
}

// LineColOffset returns the persisted display column used by vertical
// movement.
func (d *Document) LineColOffset() int {
	return d.lineColOffset
}

// DrawDirty reports whether the document changed since the last frame.
func (d *Document) DrawDirty() bool {
	return d.drawDirty
}

// ClearDrawDirty resets the draw-dirty flag, typically after a frame is
// produced.
func (d *Document) ClearDrawDirty() {
	d.drawDirty = false
}

// MarkDrawDirty forces a redraw on the next frame.
func (d *Document) MarkDrawDirty() {
	d.drawDirty = true
}

// AddMark registers an externally owned position with the document so it
// is kept consistent across edits. The position must reference this
// document's buffer.
func (d *Document) AddMark(pos *buffer.Position, props mark.Property) error {
	if pos.Buffer() != d.gb {
		return newError(KindInvalidState, "position does not belong to this document")
	}
	if err := d.regs.Add(pos, props); err != nil {
		return wrapError(KindInvalidState, err, "add mark")
	}
	return nil
}

// RemoveMark releases a registered position.
func (d *Document) RemoveMark(pos *buffer.Position) error {
	if err := d.regs.Remove(pos); err != nil {
		return wrapError(KindInvalidState, err, "remove mark")
	}
	return nil
}

// SetInputMask restricts inserts to text matching the given pattern. An
// empty pattern clears the mask.
func (d *Document) SetInputMask(pattern string) error {
	if pattern == "" {
		d.mask = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return wrapError(KindRegex, err, "input mask %q", pattern)
	}
	d.mask = re
	return nil
}

// SetRegexEngine replaces the regex engine used for search and the
// replace machinery.
func (d *Document) SetRegexEngine(engine RegexEngine) {
	if engine != nil {
		d.regex = engine
	}
}

// Undo reverses the most recent change. Undoing an insertion leaves the
// cursor at the change origin; undoing a deletion leaves the reinserted
// text selected with the cursor after it.
func (d *Document) Undo() error {
	d.selectionReset()
	if err := d.log.Undo(d); err != nil {
		if err == history.ErrNothingToUndo {
			return nil
		}
		return err
	}
	d.drawDirty = true
	return nil
}

// Redo re-applies the most recently undone change.
func (d *Document) Redo() error {
	d.selectionReset()
	if err := d.log.Redo(d); err != nil {
		if err == history.ErrNothingToRedo {
			return nil
		}
		return err
	}
	d.drawDirty = true
	return nil
}

// Log exposes the undo log for grouping control by compound operations.
func (d *Document) Log() *history.Log {
	return d.log
}

// IsDirty reports whether the content differs from the last saved state.
func (d *Document) IsDirty() bool {
	return !d.saved.Equal(d.log.State())
}

// markSaved records the current change state as the saved state.
func (d *Document) markSaved() {
	d.saved = d.log.State()
}

// ApplyInsert implements history.Applier: it reinserts previously
// deleted bytes during undo/redo.
func (d *Document) ApplyInsert(origin buffer.Position, text []byte) error {
	if err := d.insertRaw(origin, text); err != nil {
		return err
	}
	// Reinserted text is left selected so an undone deletion shows what
	// came back.
	d.anchor = d.cursor
	d.anchor.AdvanceToOffset(origin.Offset)
	d.cursorToOffset(origin.Offset + len(text))
	return nil
}

// ApplyDelete implements history.Applier: it removes a recorded insert
// during undo/redo, returning the removed bytes.
func (d *Document) ApplyDelete(origin buffer.Position, length int) ([]byte, error) {
	removed, err := d.deleteRaw(origin, length)
	if err != nil {
		return nil, err
	}
	d.cursorToOffset(origin.Offset)
	return removed, nil
}

// insertRaw is the single mutation path for insertion: gap buffer
// mutation, then mark walk, then undo record, then draw-dirty.
func (d *Document) insertRaw(origin buffer.Position, text []byte) error {
	if len(text) == 0 {
		return nil
	}
	if err := d.gb.SetPoint(origin.Offset); err != nil {
		return wrapError(KindInvalidState, err, "insert at %d", origin.Offset)
	}

	linesBefore := d.gb.Lines()
	if err := d.gb.Insert(text); err != nil {
		return wrapError(KindOutOfMemory, err, "insert %d bytes", len(text))
	}

	d.regs.Update(mark.ChangeInsert, origin, len(text), d.gb.Lines()-linesBefore)
	d.log.RecordInsert(origin, text)
	d.drawDirty = true
	return nil
}

// deleteRaw is the single mutation path for deletion. The removed bytes
// are returned and recorded for undo.
func (d *Document) deleteRaw(origin buffer.Position, length int) ([]byte, error) {
	if remaining := d.gb.Len() - origin.Offset; length > remaining {
		length = remaining
	}
	if length <= 0 {
		return nil, nil
	}

	removed := d.gb.Bytes(origin.Offset, origin.Offset+length)

	if err := d.gb.SetPoint(origin.Offset); err != nil {
		return nil, wrapError(KindInvalidState, err, "delete at %d", origin.Offset)
	}

	linesBefore := d.gb.Lines()
	if err := d.gb.Delete(length); err != nil {
		return nil, wrapError(KindInvalidState, err, "delete %d bytes", length)
	}

	d.regs.Update(mark.ChangeDelete, origin, length, linesBefore-d.gb.Lines())
	d.log.RecordDelete(origin, removed)
	d.drawDirty = true
	return removed, nil
}

// cursorToOffset jumps the cursor to an offset, recomputing line and
// column in bulk.
func (d *Document) cursorToOffset(offset int) {
	d.cursor.AdvanceToOffset(offset)
	d.updateLineColOffset()
}

// updateLineColOffset persists the cursor's display column for vertical
// movement.
func (d *Document) updateLineColOffset() {
	d.lineColOffset = d.cursor.Col
}
