package engine

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/buffer"
)

// bulkInsertThreshold is the insert size above which the cursor jumps by
// offset instead of stepping character by character.
const bulkInsertThreshold = 100

// grouped runs fn inside an undo group unless one is already open, so
// nested compound operations collapse into their caller's group.
func (d *Document) grouped(fn func() error) error {
	started := false
	if !d.log.GroupOpen() {
		d.log.StartGroup()
		started = true
	}
	err := fn()
	if started {
		d.log.EndGroup()
	}
	return err
}

// maskAllows checks the input mask, if any, against text.
func (d *Document) maskAllows(text []byte) bool {
	if d.mask == nil {
		return true
	}
	return d.mask.Match(text)
}

// convertNewlines rewrites bare line feeds to the document's line ending
// sequence. Used for pasted and piped-in text.
func (d *Document) convertNewlines(text string) string {
	if d.format != buffer.LineEndingCRLF {
		return text
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}

// InsertString inserts text at the cursor, deleting any selection first.
// The implicit selection delete and the insert share one undo group so a
// single undo reverts both. Text rejected by the input mask is ignored.
func (d *Document) InsertString(text string) error {
	if len(text) == 0 {
		return nil
	}
	if !d.maskAllows([]byte(text)) {
		return nil
	}

	// Plain typing records bare changes so keystrokes coalesce; only an
	// implicit selection delete brackets the pair in a group.
	startedGroup := false
	if r, ok := d.SelectionRange(); ok {
		if !d.log.GroupOpen() {
			d.log.StartGroup()
			startedGroup = true
		}
		if err := d.deleteRange(r); err != nil {
			if startedGroup {
				d.log.EndGroup()
			}
			d.selectionReset()
			return err
		}
	}

	origin := d.cursor
	err := d.insertRaw(origin, []byte(text))
	if err != nil {
		d.selectionReset()
	} else {
		d.advanceCursorOver(origin, len(text))
	}

	if startedGroup {
		d.log.EndGroup()
	}
	return err
}

// advanceCursorOver moves the cursor from origin past length inserted
// bytes: character stepping for short inserts, one bulk jump for long
// ones.
func (d *Document) advanceCursorOver(origin buffer.Position, length int) {
	target := origin.Offset + length
	if length > bulkInsertThreshold {
		d.cursorToOffset(target)
		return
	}
	d.cursor = origin
	for d.cursor.Offset < target {
		if !d.cursor.NextChar() {
			break
		}
	}
	d.updateLineColOffset()
}

// InsertChar inserts a single character at the cursor, honoring
// expandtab, autoindent and the document's line ending format.
func (d *Document) InsertChar(r rune) error {
	if r == utf8.RuneError || !utf8.ValidRune(r) {
		return newError(KindInvalidArgument, "invalid character %#x", r)
	}

	switch {
	case r == '\n':
		return d.insertNewline()
	case r == '\t' && d.cfg.ExpandTab():
		width := d.cfg.TabWidth() - ((d.cursor.Col - 1) % d.cfg.TabWidth())
		return d.InsertString(strings.Repeat(" ", width))
	default:
		return d.InsertString(string(r))
	}
}

// insertNewline inserts a line ending, replicating the current line's
// leading whitespace when autoindent is on.
func (d *Document) insertNewline() error {
	text := d.format.Sequence()

	if d.cfg.AutoIndent() {
		tmp := d.cursor
		tmp.ToLineStart()
		start := tmp.Offset
		for !tmp.AtLineEnd() && tmp.Offset < d.cursor.Offset && tmp.CharClass() == buffer.ClassWhitespace {
			tmp.NextChar()
		}
		if tmp.Offset > start {
			text += string(d.gb.Bytes(start, tmp.Offset))
		}
	}

	return d.InsertString(text)
}

// deleteRange removes a range, leaving the cursor at its start and
// clearing the selection.
func (d *Document) deleteRange(r buffer.Range) error {
	if r.Empty() {
		return nil
	}
	if _, err := d.deleteRaw(r.Start, r.Len()); err != nil {
		return err
	}
	d.selectionReset()
	d.cursorToOffset(r.Start.Offset)
	return nil
}

// DeleteChar deletes the selection, or the character under the cursor.
func (d *Document) DeleteChar() error {
	if r, ok := d.SelectionRange(); ok {
		return d.deleteRange(r)
	}
	if d.cursor.AtBufferEnd() {
		return nil
	}
	_, size := d.cursor.CurrentChar()
	_, err := d.deleteRaw(d.cursor, size)
	return err
}

// Backspace deletes the selection, or the character before the cursor.
func (d *Document) Backspace() error {
	if r, ok := d.SelectionRange(); ok {
		return d.deleteRange(r)
	}
	if d.cursor.AtBufferStart() {
		return nil
	}
	tmp := d.cursor
	tmp.PrevChar()
	_, err := d.deleteRaw(tmp, d.cursor.Offset-tmp.Offset)
	d.updateLineColOffset()
	return err
}

// DeleteWord deletes the selection, or from the cursor to the next word
// start.
func (d *Document) DeleteWord() error {
	if r, ok := d.SelectionRange(); ok {
		return d.deleteRange(r)
	}
	tmp := d.cursor
	tmp.NextWord(false)
	if tmp.Offset == d.cursor.Offset {
		return nil
	}
	_, err := d.deleteRaw(d.cursor, tmp.Offset-d.cursor.Offset)
	return err
}

// DeleteWordBack deletes the selection, or from the previous word start
// to the cursor.
func (d *Document) DeleteWordBack() error {
	if r, ok := d.SelectionRange(); ok {
		return d.deleteRange(r)
	}
	tmp := d.cursor
	tmp.PrevWord()
	if tmp.Offset == d.cursor.Offset {
		return nil
	}
	_, err := d.deleteRaw(tmp, d.cursor.Offset-tmp.Offset)
	d.updateLineColOffset()
	return err
}

// selectedLineSpan returns positions at the start of the first selected
// line and the number of lines covered. With no selection it covers the
// cursor line.
func (d *Document) selectedLineSpan() (buffer.Position, int) {
	r, ok := d.SelectionRange()
	if !ok {
		start := d.cursor
		start.ToLineStart()
		return start, 1
	}
	start := r.Start
	start.ToLineStart()
	lines := r.End.Line - r.Start.Line + 1
	if r.End.AtLineStart() && lines > 1 {
		lines--
	}
	return start, lines
}

// Indent prepends one tab stop to every selected line as a single undo
// group. With no selection a tab is inserted at the cursor.
func (d *Document) Indent() error {
	if !d.SelectionActive() {
		return d.InsertChar('\t')
	}

	indent := "\t"
	if d.cfg.ExpandTab() {
		indent = strings.Repeat(" ", d.cfg.TabWidth())
	}

	pos, lines := d.selectedLineSpan()
	return d.grouped(func() error {
		for i := 0; i < lines; i++ {
			if err := d.insertRaw(pos, []byte(indent)); err != nil {
				return err
			}
			if !pos.NextLine() {
				break
			}
		}
		return nil
	})
}

// Unindent removes up to one tab stop of leading whitespace from every
// selected line as a single undo group.
func (d *Document) Unindent() error {
	pos, lines := d.selectedLineSpan()
	tabWidth := d.cfg.TabWidth()

	return d.grouped(func() error {
		for i := 0; i < lines; i++ {
			n := leadingIndentBytes(&pos, tabWidth)
			if n > 0 {
				if _, err := d.deleteRaw(pos, n); err != nil {
					return err
				}
			}
			if !pos.NextLine() {
				break
			}
		}
		return nil
	})
}

// leadingIndentBytes counts the bytes of leading whitespace on pos's
// line covering at most tabWidth screen columns.
func leadingIndentBytes(pos *buffer.Position, tabWidth int) int {
	gb := pos.Buffer()
	offset := pos.Offset
	cols, count := 0, 0
	for cols < tabWidth {
		b, ok := gb.Get(offset + count)
		if !ok {
			break
		}
		switch b {
		case ' ':
			cols++
		case '\t':
			cols += tabWidth - (cols % tabWidth)
		default:
			return count
		}
		count++
	}
	return count
}

// DuplicateLineOrSelection duplicates the selection after itself, or the
// cursor line below itself, as a single undo group.
func (d *Document) DuplicateLineOrSelection() error {
	if r, ok := d.SelectionRange(); ok {
		text := d.gb.Bytes(r.Start.Offset, r.End.Offset)
		return d.grouped(func() error {
			return d.insertRaw(r.End, text)
		})
	}

	start := d.cursor
	start.ToLineStart()
	end := start
	hasNewline := end.NextLine()
	if !hasNewline {
		end.ToLineEnd()
	}

	text := d.gb.Bytes(start.Offset, end.Offset)
	if !hasNewline {
		text = append([]byte(d.format.Sequence()), text...)
	}

	return d.grouped(func() error {
		return d.insertRaw(end, text)
	})
}

// JoinLines joins each selected line with the next, replacing the line
// ending and the following leading whitespace with sep, as one group.
// With no selection the cursor line is joined with its successor.
func (d *Document) JoinLines(sep string) error {
	pos, lines := d.selectedLineSpan()
	joins := lines - 1
	if joins < 1 {
		joins = 1
	}

	return d.grouped(func() error {
		for i := 0; i < joins; i++ {
			pos.ToLineEnd()
			if pos.AtBufferEnd() {
				return nil
			}

			n := d.lineBreakLen(pos.Offset)
			gb := pos.Buffer()
			for {
				b, ok := gb.Get(pos.Offset + n)
				if !ok || (b != ' ' && b != '\t') {
					break
				}
				n++
			}

			if _, err := d.deleteRaw(pos, n); err != nil {
				return err
			}
			if err := d.insertRaw(pos, []byte(sep)); err != nil {
				return err
			}
		}
		return nil
	})
}

// lineBreakLen returns the byte length of the line ending at offset.
func (d *Document) lineBreakLen(offset int) int {
	if b, ok := d.gb.Get(offset); ok && b == '\r' {
		if nb, ok := d.gb.Get(offset + 1); ok && nb == '\n' {
			return 2
		}
	}
	return 1
}

// MoveLinesUp moves the selected full lines (or the cursor line) above
// the preceding line as a single undo group.
func (d *Document) MoveLinesUp() error {
	start, lines := d.selectedLineSpan()
	if start.AtBufferStart() {
		return nil
	}

	end := start
	for i := 0; i < lines; i++ {
		if !end.NextLine() {
			end.ToLineEnd()
			break
		}
	}

	target := start
	target.PrevLine()

	return d.moveLineBlock(start, end, target)
}

// MoveLinesDown moves the selected full lines (or the cursor line) below
// the following line as a single undo group.
func (d *Document) MoveLinesDown() error {
	start, lines := d.selectedLineSpan()

	end := start
	for i := 0; i < lines; i++ {
		if !end.NextLine() {
			return nil // already the last line
		}
	}

	return d.moveLineBlock(start, end, buffer.Position{})
}

// moveLineBlock cuts [start, end) and reinserts it at target (move up)
// or after the line following start (move down, signalled by a zero
// target).
func (d *Document) moveLineBlock(start, end, target buffer.Position) error {
	block := d.gb.Bytes(start.Offset, end.Offset)
	if len(block) == 0 {
		return nil
	}
	hadNewline := block[len(block)-1] == '\n'
	down := target.Buffer() == nil

	return d.grouped(func() error {
		if _, err := d.deleteRaw(start, len(block)); err != nil {
			return err
		}

		insertAt := target
		if down {
			insertAt = start
			if !insertAt.NextLine() {
				// The destination is now the unterminated last line:
				// carry the block's line break to its front instead.
				insertAt.ToLineEnd()
				stripped := bytes.TrimSuffix(bytes.TrimSuffix(block, []byte("\n")), []byte("\r"))
				block = append([]byte(d.format.Sequence()), stripped...)
				if err := d.insertRaw(insertAt, block); err != nil {
					return err
				}
				d.reselectBlock(insertAt, len(block))
				return nil
			}
		}

		if !hadNewline {
			block = append(block, []byte(d.format.Sequence())...)
		}

		if err := d.insertRaw(insertAt, block); err != nil {
			return err
		}

		if !hadNewline {
			// The buffer gained a trailing line break; drop it to keep
			// content length stable.
			tail := d.gb.Len() - len(d.format.Sequence())
			endPos := insertAt
			endPos.AdvanceToOffset(tail)
			if _, err := d.deleteRaw(endPos, len(d.format.Sequence())); err != nil {
				return err
			}
		}

		d.reselectBlock(insertAt, len(block))
		return nil
	})
}

// reselectBlock places the selection over a moved block.
func (d *Document) reselectBlock(start buffer.Position, length int) {
	if length > d.gb.Len()-start.Offset {
		length = d.gb.Len() - start.Offset
	}
	d.anchor = start
	d.anchor.AdvanceToOffset(start.Offset)
	d.cursorToOffset(start.Offset + length)
}

// bracketPairs maps opening brackets to closers and vice versa.
var bracketPairs = map[byte]struct {
	match   byte
	forward bool
}{
	'(': {')', true},
	'[': {']', true},
	'{': {'}', true},
	'<': {'>', true},
	')': {'(', false},
	']': {'[', false},
	'}': {'{', false},
	'>': {'<', false},
}

// MatchingBracket scans from the cursor for the bracket matching the
// character under it, tracking nesting. Token context (strings,
// comments) is not consulted.
func (d *Document) MatchingBracket() (int, bool) {
	b, ok := d.gb.Get(d.cursor.Offset)
	if !ok {
		return 0, false
	}
	pair, ok := bracketPairs[b]
	if !ok {
		return 0, false
	}

	depth := 1
	if pair.forward {
		for i := d.cursor.Offset + 1; i < d.gb.Len(); i++ {
			c, _ := d.gb.Get(i)
			switch c {
			case b:
				depth++
			case pair.match:
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
		return 0, false
	}

	for i := d.cursor.Offset - 1; i >= 0; i-- {
		c, _ := d.gb.Get(i)
		switch c {
		case b:
			depth++
		case pair.match:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// MoveToMatchingBracket jumps the cursor to the bracket matching the one
// under it, if any.
func (d *Document) MoveToMatchingBracket() bool {
	offset, ok := d.MatchingBracket()
	if !ok {
		return false
	}
	d.beginMove(false)
	d.cursorToOffset(offset)
	return true
}

// ReplaceRange substitutes text for the byte range r as a single undo
// group, leaving the cursor after the inserted text.
func (d *Document) ReplaceRange(r buffer.Range, text string) error {
	return d.grouped(func() error {
		if !r.Empty() {
			if _, err := d.deleteRaw(r.Start, r.Len()); err != nil {
				d.selectionReset()
				return err
			}
		}
		if err := d.insertRaw(r.Start, []byte(text)); err != nil {
			d.selectionReset()
			return err
		}
		d.cursorToOffset(r.Start.Offset + len(text))
		return nil
	})
}

// SetText replaces the entire content as a single undo group and
// re-detects the line ending format from the new text.
func (d *Document) SetText(text string) error {
	start := d.cursor
	start.ToBufferStart()
	end := d.cursor
	end.ToBufferEnd()

	d.selectionReset()
	if err := d.ReplaceRange(buffer.Range{Start: start, End: end}, text); err != nil {
		return err
	}

	d.format = buffer.DetectLineEnding([]byte(text))
	d.applyFormat()
	return nil
}

// Paste inserts clipboard-style text at the cursor, converting its line
// endings to the document format. Any selection is overwritten within
// the same undo group.
func (d *Document) Paste(text string) error {
	return d.InsertString(d.convertNewlines(text))
}
