package engine

import "github.com/dshills/quill/internal/engine/buffer"

// SelectionActive reports whether a selection anchor is set and spans at
// least one byte.
func (d *Document) SelectionActive() bool {
	_, ok := d.SelectionRange()
	return ok
}

// SelectionRange resolves the current selection as an ordered range. An
// anchor equal to the cursor yields no range and resets the selection,
// since empty ranges are forbidden.
func (d *Document) SelectionRange() (buffer.Range, bool) {
	if !d.anchor.Active() {
		return buffer.Range{}, false
	}
	if d.anchor.Offset == d.cursor.Offset {
		d.selectionReset()
		return buffer.Range{}, false
	}
	return buffer.NewRange(d.anchor, d.cursor), true
}

// SelectionText returns the selected bytes, if any.
func (d *Document) SelectionText() ([]byte, bool) {
	r, ok := d.SelectionRange()
	if !ok {
		return nil, false
	}
	return d.gb.Bytes(r.Start.Offset, r.End.Offset), true
}

// selectionReset deactivates the selection anchor.
func (d *Document) selectionReset() {
	d.anchor.Deactivate()
}

// SelectionReset clears any active selection.
func (d *Document) SelectionReset() {
	d.selectionReset()
	d.drawDirty = true
}

// beginMove prepares the anchor for a movement operation: when
// selecting, the anchor activates at the cursor; otherwise any selection
// is dropped.
func (d *Document) beginMove(selecting bool) {
	if selecting {
		if !d.anchor.Active() {
			d.anchor = d.cursor
		}
	} else if d.anchor.Active() {
		d.selectionReset()
	}
	d.drawDirty = true
}

// SelectAll selects the entire buffer, leaving the cursor at the end.
func (d *Document) SelectAll() {
	d.anchor = d.cursor
	d.anchor.ToBufferStart()
	d.cursor.ToBufferEnd()
	d.updateLineColOffset()
	d.drawDirty = true
}

// MoveCursorRight moves the cursor one character right.
func (d *Document) MoveCursorRight(selecting bool) {
	d.beginMove(selecting)
	d.cursor.NextChar()
	d.updateLineColOffset()
}

// MoveCursorLeft moves the cursor one character left.
func (d *Document) MoveCursorLeft(selecting bool) {
	d.beginMove(selecting)
	d.cursor.PrevChar()
	d.updateLineColOffset()
}

// MoveCursorDown moves the cursor one logical line down, re-applying the
// persisted display column.
func (d *Document) MoveCursorDown(selecting bool) {
	d.beginMove(selecting)
	if d.cursor.NextLine() {
		d.cursor.AdvanceToCol(d.lineColOffset)
	} else {
		d.cursor.ToLineEnd()
		d.updateLineColOffset()
	}
}

// MoveCursorUp moves the cursor one logical line up, re-applying the
// persisted display column.
func (d *Document) MoveCursorUp(selecting bool) {
	d.beginMove(selecting)
	if d.cursor.PrevLine() {
		d.cursor.AdvanceToCol(d.lineColOffset)
	} else {
		d.cursor.ToBufferStart()
		d.updateLineColOffset()
	}
}

// MoveCursorScreenDown moves the cursor one screen line down when line
// wrap is enabled, preserving the display column modulo the wrap width.
// cols is the viewport width.
func (d *Document) MoveCursorScreenDown(cols int, selecting bool) {
	d.beginMove(selecting)
	colInRow := (d.lineColOffset - 1) % cols
	if d.cursor.NextScreenLine(cols) {
		d.cursor.AdvanceToCol(d.cursor.Col + colInRow)
	} else {
		d.cursor.ToLineEnd()
	}
}

// MoveCursorScreenUp moves the cursor one screen line up when line wrap
// is enabled, preserving the display column modulo the wrap width.
func (d *Document) MoveCursorScreenUp(cols int, selecting bool) {
	d.beginMove(selecting)
	colInRow := (d.lineColOffset - 1) % cols
	if d.cursor.PrevScreenLine(cols) {
		d.cursor.AdvanceToCol(d.cursor.Col + colInRow)
	} else {
		d.cursor.ToBufferStart()
		d.updateLineColOffset()
	}
}

// MoveCursorLineStart moves the cursor to column one.
func (d *Document) MoveCursorLineStart(selecting bool) {
	d.beginMove(selecting)
	d.cursor.ToLineStart()
	d.updateLineColOffset()
}

// MoveCursorLineEnd moves the cursor onto the line ending.
func (d *Document) MoveCursorLineEnd(selecting bool) {
	d.beginMove(selecting)
	d.cursor.ToLineEnd()
	d.updateLineColOffset()
}

// MoveCursorBufferStart moves the cursor to the first byte.
func (d *Document) MoveCursorBufferStart(selecting bool) {
	d.beginMove(selecting)
	d.cursor.ToBufferStart()
	d.updateLineColOffset()
}

// MoveCursorBufferEnd moves the cursor past the last byte.
func (d *Document) MoveCursorBufferEnd(selecting bool) {
	d.beginMove(selecting)
	d.cursor.ToBufferEnd()
	d.updateLineColOffset()
}

// MoveCursorNextWord moves the cursor to the next word start.
func (d *Document) MoveCursorNextWord(selecting bool) {
	d.beginMove(selecting)
	d.cursor.NextWord(selecting)
	d.updateLineColOffset()
}

// MoveCursorPrevWord moves the cursor to the previous word start.
func (d *Document) MoveCursorPrevWord(selecting bool) {
	d.beginMove(selecting)
	d.cursor.PrevWord()
	d.updateLineColOffset()
}

// MoveCursorNextParagraph moves the cursor past the next blank line run,
// re-applying the persisted display column.
func (d *Document) MoveCursorNextParagraph(selecting bool) {
	d.beginMove(selecting)
	d.cursor.NextParagraph()
	d.cursor.AdvanceToCol(d.lineColOffset)
}

// MoveCursorPrevParagraph moves the cursor before the previous blank
// line run, re-applying the persisted display column.
func (d *Document) MoveCursorPrevParagraph(selecting bool) {
	d.beginMove(selecting)
	d.cursor.PrevParagraph()
	d.cursor.AdvanceToCol(d.lineColOffset)
}

// GotoLine places the cursor at the start of the 1-based line number,
// clamped to the buffer.
func (d *Document) GotoLine(line int) {
	d.beginMove(false)
	if line < 1 {
		line = 1
	}
	if max := d.gb.Lines() + 1; line > max {
		line = max
	}
	d.cursor.ToBufferStart()
	for d.cursor.Line < line {
		if !d.cursor.NextLine() {
			break
		}
	}
	d.updateLineColOffset()
}
