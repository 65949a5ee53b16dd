// Package view projects a document onto a rectangular cell grid: what
// the terminal must draw, including scrolling, line wrap, line numbers,
// selection and cursor overlays, and cached syntax tokenization. The
// projector reads from the document; it never writes back.
package view

import (
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/mark"
	"github.com/dshills/quill/internal/renderer/highlight"
)

// wrapEllipsis is drawn in place of a character whose cells would reach
// the last column, so that column is left for the ellipsis.
const wrapEllipsis = "…"

// replacementChar substitutes invalid UTF-8 bytes.
const replacementChar = "�"

// Projector turns a document and a viewport size into a grid of cells
// plus a cursor designation. It reads from the document and writes only
// its own grid and caches.
type Projector struct {
	doc  *engine.Document
	rows int
	cols int

	lines     []Line
	rowsDrawn int

	// screenStart is registered as a mark on the owning document so
	// scrolling survives edits; the no-adjust property keeps inserts at
	// the top of the viewport from pushing it down.
	screenStart buffer.Position

	// horizontalScroll is the 1-based leftmost visible column, used
	// only when line wrap is off.
	horizontalScroll int

	syntax  syntaxCache
	resized bool
}

// New creates a projector over doc and registers its screen-start mark.
func New(doc *engine.Document, rows, cols int) (*Projector, error) {
	p := &Projector{
		doc:              doc,
		rows:             rows,
		cols:             cols,
		horizontalScroll: 1,
	}
	p.screenStart = doc.Cursor()
	p.screenStart.ToBufferStart()

	if err := doc.AddMark(&p.screenStart, mark.NoAdjustOnBufferPos); err != nil {
		return nil, err
	}

	p.allocate()
	return p, nil
}

// Close releases the projector's interest in the document.
func (p *Projector) Close() {
	p.doc.RemoveMark(&p.screenStart)
	p.syntax.free()
}

// allocate sizes the line grid.
func (p *Projector) allocate() {
	p.lines = make([]Line, p.rows)
	for i := range p.lines {
		p.lines[i].Cells = make([]Cell, 0, p.cols)
	}
}

// Resize changes the viewport dimensions.
func (p *Projector) Resize(rows, cols int) {
	if rows == p.rows && cols == p.cols {
		return
	}
	p.rows = rows
	p.cols = cols
	p.allocate()
	p.resized = true
	p.doc.MarkDrawDirty()
}

// Rows returns the viewport height.
func (p *Projector) Rows() int { return p.rows }

// Cols returns the viewport width.
func (p *Projector) Cols() int { return p.cols }

// Lines returns the populated grid. Valid until the next Update.
func (p *Projector) Lines() []Line { return p.lines }

// RowsDrawn returns how many rows carry buffer content.
func (p *Projector) RowsDrawn() int { return p.rowsDrawn }

// HorizontalScroll returns the 1-based leftmost visible column for
// no-wrap mode.
func (p *Projector) HorizontalScroll() int { return p.horizontalScroll }

// ScreenStart returns a copy of the screen-start position.
func (p *Projector) ScreenStart() buffer.Position { return p.screenStart }

// SetTokenProvider installs the syntax token source. A nil provider
// disables highlighting.
func (p *Projector) SetTokenProvider(tp highlight.TokenProvider) {
	p.syntax.provider = tp
	p.syntax.invalidate()
}

// Update scrolls the viewport to the cursor, repopulates the cell grid
// and applies the overlay passes. It clears the document's draw-dirty
// flag.
func (p *Projector) Update() {
	wrap := p.doc.Config().LineWrap()

	if wrap {
		p.scrollWrap()
	} else {
		p.scrollNoWrap()
	}

	matches := p.syntax.matchesFor(p.doc, p.screenStart, p.rows)
	p.populate(wrap, matches)

	p.applySelection()
	p.applySearchMatches()
	p.applyColorColumn()
	p.applyCursor()

	p.resized = false
	p.doc.ClearDrawDirty()
}

// cellWalker carries population state across rows: the buffer position,
// whether the buffer-end landing cell was emitted, and the remainder of
// a tab flowing over a wrap boundary.
type cellWalker struct {
	pos     buffer.Position
	done    bool
	tabLeft int
	tabCell Cell
}

// populate walks the buffer from the screen start filling each row.
func (p *Projector) populate(wrap bool, matches *highlight.SyntaxMatches) {
	walker := cellWalker{pos: p.screenStart}
	p.rowsDrawn = 0

	for row := 0; row < p.rows; row++ {
		line := &p.lines[row]
		line.Cells = line.Cells[:0]

		if walker.done {
			line.LineNo = 0
			line.Cells = append(line.Cells, Cell{
				Text: " ", Width: 1, Offset: OffsetNone, Attr: AttrBufferEnd,
			})
			continue
		}

		if walker.pos.AtLineStart() && walker.tabLeft == 0 {
			line.LineNo = walker.pos.Line
		} else {
			line.LineNo = 0
		}

		p.populateRow(line, &walker, wrap, matches)
		p.rowsDrawn = row + 1
	}
}

// populateRow fills one screen row, advancing the walker past whatever
// the row consumed.
func (p *Projector) populateRow(line *Line, w *cellWalker, wrap bool, matches *highlight.SyntaxMatches) {
	screenCol := 1
	hs := 1
	if !wrap {
		hs = p.horizontalScroll
	}

	emit := func(c Cell) {
		line.Cells = append(line.Cells, c)
		screenCol += c.Width
	}

	// Resume a tab interrupted by the previous wrap boundary.
	for w.tabLeft > 0 && screenCol <= p.cols {
		emit(w.tabCell)
		w.tabLeft--
	}
	if w.tabLeft > 0 {
		return
	}

	for {
		if screenCol > p.cols {
			if wrap || w.pos.AtBufferEnd() {
				return
			}
			p.clipRow(line, w, screenCol)
			return
		}

		if w.pos.AtBufferEnd() {
			// Landing cell so the cursor can rest after the last
			// character.
			emit(Cell{Text: " ", Width: 1, Offset: w.pos.Offset, Col: w.pos.Col, Attr: AttrNewLine})
			p.fillLineEnd(line, screenCol)
			w.done = true
			return
		}

		r, _ := w.pos.CurrentChar()

		if r == '\n' {
			if w.pos.Col >= hs && screenCol <= p.cols {
				emit(Cell{
					Text: " ", Width: 1, Offset: w.pos.Offset, Col: w.pos.Col,
					Attr: AttrNewLine, Token: matches.TokenAt(w.pos.Offset),
				})
			}
			p.fillLineEnd(line, screenCol)
			w.pos.NextChar()
			return
		}

		visible := w.pos.Col >= hs

		switch {
		case r == '\t':
			width := w.pos.CharWidth(r, w.pos.Col)
			tok := matches.TokenAt(w.pos.Offset)
			cell := Cell{Text: " ", Width: 1, Offset: w.pos.Offset, Col: w.pos.Col, Token: tok}
			emitted := 0
			for i := 0; i < width; i++ {
				if w.pos.Col+i < hs {
					continue
				}
				if screenCol > p.cols {
					break
				}
				cell.Col = w.pos.Col + i
				emit(cell)
				emitted++
			}
			visibleCols := width
			if hs > w.pos.Col {
				visibleCols = width - (hs - w.pos.Col)
				if visibleCols < 0 {
					visibleCols = 0
				}
			}
			remaining := visibleCols - emitted
			w.pos.NextChar()
			if remaining > 0 {
				if wrap {
					// The rest of the tab flows onto the next row.
					w.tabLeft = remaining
					w.tabCell = cell
					return
				}
				p.clipRow(line, w, screenCol)
				return
			}

		case r == utf8.RuneError:
			if visible {
				emit(Cell{
					Text: replacementChar, Width: 1,
					Offset: w.pos.Offset, Col: w.pos.Col,
					Attr: AttrError, Token: matches.TokenAt(w.pos.Offset),
				})
			}
			w.pos.NextChar()

		case r < ' ' || r == 0x7F:
			// Caret notation occupies two cells that stay together: in
			// wrap mode a straddling pair moves to the next row, in
			// no-wrap mode it is clipped.
			if visible {
				if screenCol+1 > p.cols {
					if wrap {
						p.fillLineEnd(line, screenCol)
						return
					}
					p.clipRow(line, w, screenCol)
					return
				}
				printed := byte('?')
				if r != 0x7F {
					printed = byte(r) + 64
				}
				tok := matches.TokenAt(w.pos.Offset)
				emit(Cell{Text: "^", Width: 1, Offset: w.pos.Offset, Col: w.pos.Col, Token: tok})
				emit(Cell{Text: string(printed), Width: 1, Offset: w.pos.Offset, Col: w.pos.Col + 1, Token: tok})
			}
			w.pos.NextChar()

		default:
			width := w.pos.CharWidth(r, w.pos.Col)
			if width == 0 && len(line.Cells) > 0 {
				// Combining character: attach to the previous cell.
				line.Cells[len(line.Cells)-1].appendText(string(r))
				w.pos.NextChar()
				continue
			}
			if visible {
				if screenCol+width > p.cols {
					emit(Cell{
						Text: wrapEllipsis, Width: 1, Offset: OffsetNone,
						Col: w.pos.Col, Attr: AttrWrap,
					})
					if wrap {
						p.fillLineEnd(line, screenCol)
						return
					}
					p.clipRow(line, w, screenCol)
					return
				}
				emit(Cell{
					Text: string(r), Width: width,
					Offset: w.pos.Offset, Col: w.pos.Col,
					Token: matches.TokenAt(w.pos.Offset),
				})
			}
			w.pos.NextChar()
		}

	}
}

// clipRow ends a no-wrap row: pad with line-end filler and move the
// walker to the next logical line.
func (p *Projector) clipRow(line *Line, w *cellWalker, screenCol int) {
	p.fillLineEnd(line, screenCol)
	if !w.pos.NextLine() {
		w.pos.ToBufferEnd()
		w.done = true
	}
}

// fillLineEnd pads the row with line-end filler cells from screenCol to
// the right edge.
func (p *Projector) fillLineEnd(line *Line, screenCol int) {
	for c := screenCol; c <= p.cols; c++ {
		line.Cells = append(line.Cells, Cell{
			Text: " ", Width: 1, Offset: OffsetNone, Attr: AttrLineEnd,
		})
	}
}

// applySelection reverses cells whose originating offset lies in the
// selection.
func (p *Projector) applySelection() {
	r, ok := p.doc.SelectionRange()
	if !ok {
		return
	}
	p.eachCell(func(c *Cell) {
		if c.Offset != OffsetNone && buffer.OffsetInRange(r.Start.Offset, r.End.Offset, c.Offset) {
			c.Attr |= AttrSelection
		}
	})
}

// applySearchMatches flags cells inside any current search match.
func (p *Projector) applySearchMatches() {
	if !p.doc.Search().Valid() {
		return
	}
	matches, err := p.doc.FindAll()
	if err != nil || len(matches) == 0 {
		return
	}
	p.eachCell(func(c *Cell) {
		if c.Offset == OffsetNone {
			return
		}
		for _, m := range matches {
			if c.Offset >= m.Start && c.Offset < m.End {
				c.Attr |= AttrSearchMatch
				return
			}
		}
	})
}

// applyColorColumn flags cells on the configured column.
func (p *Projector) applyColorColumn() {
	col := p.doc.Config().ColorColumn()
	if col <= 0 {
		return
	}
	p.eachCell(func(c *Cell) {
		if c.Offset != OffsetNone && c.Col == col {
			c.Attr |= AttrColorColumn
		}
	})
}

// applyCursor marks exactly one cell as the cursor: the first cell
// whose originating offset equals the cursor offset.
func (p *Projector) applyCursor() {
	offset := p.doc.Cursor().Offset
	done := false
	p.eachCell(func(c *Cell) {
		if done || c.Offset != offset {
			return
		}
		c.Attr |= AttrCursor
		done = true
	})
}

// CursorCell locates the cursor in the populated grid.
func (p *Projector) CursorCell() (row, col int, ok bool) {
	for r := range p.lines {
		screenCol := 0
		for i := range p.lines[r].Cells {
			c := &p.lines[r].Cells[i]
			if c.Attr.Has(AttrCursor) {
				return r, screenCol, true
			}
			screenCol += c.Width
		}
	}
	return 0, 0, false
}

// eachCell visits every populated cell.
func (p *Projector) eachCell(fn func(*Cell)) {
	for r := range p.lines {
		for i := range p.lines[r].Cells {
			fn(&p.lines[r].Cells[i])
		}
	}
}
