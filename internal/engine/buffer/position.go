package buffer

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Position is a (byte offset, line, column) triple into a gap buffer.
// Line and Col are 1-based. Col is the display column assuming tab
// expansion at the configured tab width; it is derived from Offset and
// cached, never authoritative.
//
// A Position with Line == 0 is the inactive sentinel used for the
// selection anchor.
type Position struct {
	buf      *GapBuffer
	ending   LineEnding
	tabWidth int

	Offset int
	Line   int
	Col    int
}

// NewPosition creates a position at the start of the buffer.
func NewPosition(buf *GapBuffer, ending LineEnding, tabWidth int) Position {
	return Position{buf: buf, ending: ending, tabWidth: tabWidth, Offset: 0, Line: 1, Col: 1}
}

// Buffer returns the gap buffer this position points into.
func (p *Position) Buffer() *GapBuffer {
	return p.buf
}

// SetLineEnding changes the line ending style used when pairing CRLF
// sequences during navigation.
func (p *Position) SetLineEnding(le LineEnding) {
	p.ending = le
}

// SetTabWidth changes the tab width used for column arithmetic.
func (p *Position) SetTabWidth(width int) {
	p.tabWidth = width
}

// TabWidth returns the tab width used for column arithmetic.
func (p *Position) TabWidth() int {
	return p.tabWidth
}

// LineEnding returns the line ending style of the position.
func (p *Position) LineEnding() LineEnding {
	return p.ending
}

// Deactivate turns the position into the inactive sentinel.
func (p *Position) Deactivate() {
	p.Line = 0
}

// Active reports whether the position is not the inactive sentinel.
func (p *Position) Active() bool {
	return p.Line != 0
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%d (%d:%d)", p.Offset, p.Line, p.Col)
}

// Equal reports whether two positions reference the same offset.
func (p *Position) Equal(other Position) bool {
	return p.Offset == other.Offset
}

// Before reports whether p comes before other in the buffer.
func (p *Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// AtBufferStart reports whether the position is at offset 0.
func (p *Position) AtBufferStart() bool {
	return p.Offset == 0
}

// AtBufferEnd reports whether the position is one past the last byte.
func (p *Position) AtBufferEnd() bool {
	return p.Offset >= p.buf.Len()
}

// AtLineStart reports whether the position is in column one of its line.
func (p *Position) AtLineStart() bool {
	if p.Offset == 0 {
		return true
	}
	b, _ := p.buf.Get(p.Offset - 1)
	return b == '\n'
}

// AtLineEnd reports whether the position is on a line ending or at the
// end of the buffer.
func (p *Position) AtLineEnd() bool {
	if p.AtBufferEnd() {
		return true
	}
	r, _ := p.CurrentChar()
	return r == '\n'
}

// AtEmptyLine reports whether the position's line has no content.
func (p *Position) AtEmptyLine() bool {
	return p.AtLineStart() && p.AtLineEnd()
}

// CurrentChar decodes the character at the position and returns it with
// its byte length. A CRLF pair counts as a single '\n' of length two when
// the position uses Windows line endings. Invalid UTF-8 decodes to
// utf8.RuneError with length one.
func (p *Position) CurrentChar() (rune, int) {
	return p.charAt(p.Offset)
}

// charAt decodes the character starting at offset.
func (p *Position) charAt(offset int) (rune, int) {
	b, ok := p.buf.Get(offset)
	if !ok {
		return 0, 0
	}
	if b == '\r' && p.ending == LineEndingCRLF {
		if nb, ok := p.buf.Get(offset + 1); ok && nb == '\n' {
			return '\n', 2
		}
	}
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	var scratch [utf8.UTFMax]byte
	n := p.buf.GetRange(offset, scratch[:])
	r, size := utf8.DecodeRune(scratch[:n])
	return r, size
}

// CharWidth returns the display width of r when drawn at column col.
// Tabs expand to the next tab stop, line endings and NUL occupy a single
// column so the cursor can rest on them, and other control bytes render
// as two-column caret notation.
func (p *Position) CharWidth(r rune, col int) int {
	switch {
	case r == '\t':
		return p.tabWidth - ((col - 1) % p.tabWidth)
	case r == '\n' || r == 0:
		return 1
	case r < ' ' || r == 0x7F:
		return 2
	case r == utf8.RuneError:
		return 1
	default:
		w := uniseg.StringWidth(string(r))
		if w < 1 {
			w = 1
		}
		return w
	}
}

// NextChar advances the position by one character. It reports whether
// the position moved.
func (p *Position) NextChar() bool {
	if p.AtBufferEnd() {
		return false
	}
	r, size := p.CurrentChar()
	if size == 0 {
		return false
	}
	p.Offset += size
	if r == '\n' {
		p.Line++
		p.Col = 1
	} else {
		p.Col += p.CharWidth(r, p.Col)
	}
	return true
}

// PrevChar moves the position back by one character. It reports whether
// the position moved.
func (p *Position) PrevChar() bool {
	if p.AtBufferStart() {
		return false
	}
	start := p.prevCharStart()
	r, _ := p.charAt(start)
	p.Offset = start
	switch {
	case r == '\n':
		p.Line--
		p.RecalcCol()
	case r == '\t':
		p.RecalcCol()
	default:
		p.Col -= p.CharWidth(r, 1)
	}
	return true
}

// prevCharStart returns the offset of the character preceding the
// position, stepping over UTF-8 continuation bytes and CRLF pairs.
func (p *Position) prevCharStart() int {
	i := p.Offset - 1
	b, _ := p.buf.Get(i)
	if b == '\n' && p.ending == LineEndingCRLF && i > 0 {
		if pb, _ := p.buf.Get(i - 1); pb == '\r' {
			return i - 1
		}
	}
	for i > 0 && b >= 0x80 && b < 0xC0 {
		i--
		b, _ = p.buf.Get(i)
	}
	return i
}

// ToLineStart moves the position to column one of its line.
func (p *Position) ToLineStart() {
	if i := p.buf.LastIndexOf('\n', p.Offset); i >= 0 {
		p.Offset = i + 1
	} else {
		p.Offset = 0
	}
	p.Col = 1
}

// ToLineEnd moves the position onto the line ending (or buffer end) of
// its line.
func (p *Position) ToLineEnd() {
	for !p.AtLineEnd() {
		p.NextChar()
	}
}

// NextLine moves the position to the start of the following line. It
// reports whether a following line exists.
func (p *Position) NextLine() bool {
	i := p.buf.IndexOf('\n', p.Offset)
	if i < 0 {
		return false
	}
	p.Offset = i + 1
	p.Line++
	p.Col = 1
	return true
}

// PrevLine moves the position to the start of the preceding line. It
// reports whether a preceding line exists.
func (p *Position) PrevLine() bool {
	p.ToLineStart()
	if p.AtBufferStart() {
		return false
	}
	p.PrevChar()
	p.ToLineStart()
	return true
}

// ToBufferStart moves the position to the first byte of the buffer.
func (p *Position) ToBufferStart() {
	p.Offset = 0
	p.Line = 1
	p.Col = 1
}

// ToBufferEnd moves the position one past the last byte of the buffer.
func (p *Position) ToBufferEnd() {
	p.Offset = p.buf.Len()
	p.Line = p.buf.Lines() + 1
	p.RecalcCol()
}

// AdvanceToCol moves the position forward within its line until the
// display column is at least target or the line ends.
func (p *Position) AdvanceToCol(target int) {
	for p.Col < target && !p.AtLineEnd() {
		if !p.NextChar() {
			break
		}
	}
}

// AdvanceToOffset jumps the position directly to target, recomputing the
// line number from the newline count between the two offsets and the
// column by rescanning the destination line. Intended for bulk moves
// where character stepping would be too slow.
func (p *Position) AdvanceToOffset(target int) error {
	if target < 0 || target > p.buf.Len() {
		return ErrOffsetOutOfRange
	}
	if target >= p.Offset {
		p.Line += p.buf.CountNewlines(p.Offset, target)
	} else {
		p.Line -= p.buf.CountNewlines(target, p.Offset)
	}
	p.Offset = target
	p.RecalcCol()
	return nil
}

// RecalcCol recomputes the display column by scanning from the line
// start and expanding tabs.
func (p *Position) RecalcCol() {
	start := 0
	if i := p.buf.LastIndexOf('\n', p.Offset); i >= 0 {
		start = i + 1
	}
	col := 1
	for start < p.Offset {
		r, size := p.charAt(start)
		if size == 0 {
			break
		}
		col += p.CharWidth(r, col)
		start += size
	}
	p.Col = col
}
