package buffer

// Screen-line navigation: when line wrap is enabled a logical line
// occupies ceil(width/cols) screen lines, and vertical movement works in
// screen lines. The viewport width is supplied by the caller.

// ScreenLineRow returns the 0-based screen row of the position within
// its logical line.
func (p *Position) ScreenLineRow(cols int) int {
	if cols <= 0 {
		return 0
	}
	return (p.Col - 1) / cols
}

// SnapToScreenLineStart moves the position to the first column of its
// screen line.
func (p *Position) SnapToScreenLineStart(cols int) {
	target := p.ScreenLineRow(cols)*cols + 1
	p.ToLineStart()
	if target > 1 {
		p.AdvanceToCol(target)
	}
}

// NextScreenLine advances the position to the start of the following
// screen line, crossing into the next logical line when the current one
// is exhausted. It reports false at the end of the buffer.
func (p *Position) NextScreenLine(cols int) bool {
	if cols <= 0 {
		return p.NextLine()
	}
	target := (p.ScreenLineRow(cols)+1)*cols + 1

	probe := *p
	probe.AdvanceToCol(target)
	if probe.Col >= target {
		*p = probe
		return true
	}
	return p.NextLine()
}

// PrevScreenLine moves the position to the start of the preceding
// screen line. It reports false at the start of the buffer.
func (p *Position) PrevScreenLine(cols int) bool {
	if cols <= 0 {
		return p.PrevLine()
	}
	if p.Col > cols {
		target := (p.ScreenLineRow(cols)-1)*cols + 1
		p.ToLineStart()
		p.AdvanceToCol(target)
		return true
	}
	if !p.PrevLine() {
		return false
	}
	// Land on the last screen line of the previous logical line.
	p.ToLineEnd()
	p.SnapToScreenLineStart(cols)
	return true
}
