package view

import "github.com/dshills/quill/internal/renderer/highlight"

// CellAttr is a bitset of display attributes for a single cell.
type CellAttr uint16

const (
	AttrCursor CellAttr = 1 << iota
	AttrSelection
	AttrBufferEnd
	AttrError
	AttrWrap
	AttrColorColumn
	AttrNewLine
	AttrLineEnd
	AttrSearchMatch
)

// Has reports whether the set contains attr.
func (a CellAttr) Has(attr CellAttr) bool {
	return a&attr != 0
}

// CellTextLength is the maximum byte length a cell carries. It is large
// enough to keep combining characters with their base character.
const CellTextLength = 50

// OffsetNone marks synthesized cells (wrap ellipses, line-end filler)
// that do not originate from a buffer byte.
const OffsetNone = -1

// Cell is one terminal cell of the projected buffer.
type Cell struct {
	// Text is the UTF-8 content, at most CellTextLength bytes.
	Text string

	// Width is the number of columns the content occupies.
	Width int

	// Offset is the originating byte offset, or OffsetNone.
	Offset int

	// Col is the buffer display column of the originating character.
	Col int

	Attr  CellAttr
	Token highlight.Token
}

// Line is one screen row: its cells plus the logical line number, which
// is zero on wrap continuation rows.
type Line struct {
	LineNo int
	Cells  []Cell
}

// appendText adds combining bytes to the cell, dropping bytes beyond
// CellTextLength.
func (c *Cell) appendText(s string) {
	if len(c.Text)+len(s) > CellTextLength {
		return
	}
	c.Text += s
}
