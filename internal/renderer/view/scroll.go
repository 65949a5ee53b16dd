package view

import "github.com/dshills/quill/internal/engine/buffer"

// scrollNoWrap keeps the cursor inside the viewport when long lines
// scroll horizontally instead of wrapping.
func (p *Projector) scrollNoWrap() {
	cursor := p.doc.Cursor()

	switch {
	case cursor.Line < p.screenStart.Line:
		// Cursor moved above the viewport: jump to its line start.
		p.screenStart = cursor
		p.screenStart.ToLineStart()

	case cursor.Line >= p.screenStart.Line+p.rows:
		overflow := cursor.Line - (p.screenStart.Line + p.rows - 1)
		if overflow > p.rows {
			// Far beyond the bottom: jump, cursor line at the top.
			p.screenStart = cursor
			p.screenStart.ToLineStart()
		} else {
			// Smooth scroll down by the exact distance.
			for i := 0; i < overflow; i++ {
				if !p.screenStart.NextLine() {
					break
				}
			}
		}
	}

	// Horizontal: shift by the minimum delta that reveals the cursor.
	if cursor.Col < p.horizontalScroll {
		p.horizontalScroll = cursor.Col
	} else if cursor.Col >= p.horizontalScroll+p.cols {
		p.horizontalScroll = cursor.Col - p.cols + 1
	}
}

// scrollWrap keeps the cursor inside the viewport in line-wrap mode,
// where a logical line occupies several screen lines.
func (p *Projector) scrollWrap() {
	cursor := p.doc.Cursor()

	if cursor.Offset < p.screenStart.Offset ||
		(cursor.Line == p.screenStart.Line && cursor.Col < p.screenStart.Col) {
		// Above the viewport: start at the cursor's screen line.
		p.screenStart = cursor
		p.snapToScreenLineStart(&p.screenStart)
		return
	}

	// Fast path: scan downward up to two screens looking for the
	// cursor. Upward screen-line motion is O(line length) on very long
	// lines, so probing down first is the cheap case.
	probe := p.screenStart
	for i := 0; i < 2*p.rows; i++ {
		next := probe
		if !p.nextScreenLine(&next) {
			// Cursor is on the final screen line.
			if i < p.rows {
				return
			}
			break
		}
		if cursor.Offset < next.Offset {
			if i < p.rows {
				return // already on screen
			}
			// In the next screen: advance by the exact overflow.
			overflow := i - p.rows + 1
			for j := 0; j < overflow; j++ {
				p.nextScreenLine(&p.screenStart)
			}
			return
		}
		probe = next
	}

	// Fallback: walk back a screenful from the cursor; if the screen
	// start is not encountered the reversed position becomes the start.
	rev := cursor
	p.snapToScreenLineStart(&rev)
	for i := 0; i < p.rows-1; i++ {
		if rev.Offset <= p.screenStart.Offset {
			return
		}
		p.prevScreenLine(&rev)
	}
	p.screenStart = rev
}

// snapToScreenLineStart moves pos to the first column of its screen
// line.
func (p *Projector) snapToScreenLineStart(pos *buffer.Position) {
	pos.SnapToScreenLineStart(p.cols)
}

// nextScreenLine advances pos to the start of the following screen
// line. It reports false at the end of the buffer.
func (p *Projector) nextScreenLine(pos *buffer.Position) bool {
	return pos.NextScreenLine(p.cols)
}

// prevScreenLine moves pos to the start of the preceding screen line.
func (p *Projector) prevScreenLine(pos *buffer.Position) bool {
	return pos.PrevScreenLine(p.cols)
}
