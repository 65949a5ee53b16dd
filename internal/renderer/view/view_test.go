package view

import (
	"strings"
	"testing"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/renderer/highlight"
)

func newTestView(t *testing.T, text string, rows, cols int, opts ...config.Option) (*engine.Document, *Projector) {
	t.Helper()
	cfg, err := config.New(opts...)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	doc := engine.NewDocumentFromString(text, cfg)
	p, err := New(doc, rows, cols)
	if err != nil {
		t.Fatalf("new projector: %v", err)
	}
	return doc, p
}

// rowText flattens a row's content cells for assertions.
func rowText(l Line) string {
	var b strings.Builder
	for _, c := range l.Cells {
		if c.Attr.Has(AttrLineEnd) || c.Attr.Has(AttrBufferEnd) {
			continue
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestBasicGrid(t *testing.T) {
	_, p := newTestView(t, "abc\ndef", 4, 10)
	defer p.Close()

	p.Update()

	lines := p.Lines()
	if got := rowText(lines[0]); got != "abc " { // trailing newline cell
		t.Errorf("row 0 = %q", got)
	}
	if lines[0].LineNo != 1 {
		t.Errorf("row 0 line no = %d", lines[0].LineNo)
	}
	if got := rowText(lines[1]); got != "def " { // buffer-end landing cell
		t.Errorf("row 1 = %q", got)
	}

	// Rows past the content carry a single buffer-end cell.
	if len(lines[2].Cells) != 1 || !lines[2].Cells[0].Attr.Has(AttrBufferEnd) {
		t.Errorf("row 2 should be a buffer-end row, got %d cells", len(lines[2].Cells))
	}
	if lines[2].LineNo != 0 {
		t.Errorf("buffer-end row line no = %d", lines[2].LineNo)
	}

	if p.RowsDrawn() != 2 {
		t.Errorf("rows drawn = %d", p.RowsDrawn())
	}
}

func TestRowPadding(t *testing.T) {
	_, p := newTestView(t, "ab\n", 2, 6)
	defer p.Close()

	p.Update()

	row := p.Lines()[0]
	if len(row.Cells) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(row.Cells))
	}

	// a, b, newline cell, then line-end filler.
	if !row.Cells[2].Attr.Has(AttrNewLine) {
		t.Error("expected newline cell at index 2")
	}
	for i := 3; i < 6; i++ {
		if !row.Cells[i].Attr.Has(AttrLineEnd) {
			t.Errorf("expected line-end filler at %d", i)
		}
	}
}

func TestCursorCell(t *testing.T) {
	doc, p := newTestView(t, "hello\nworld", 4, 10)
	defer p.Close()

	doc.GotoLine(2)
	doc.MoveCursorRight(false)
	p.Update()

	row, col, ok := p.CursorCell()
	if !ok {
		t.Fatal("cursor not found")
	}
	if row != 1 || col != 1 {
		t.Errorf("cursor at (%d,%d), want (1,1)", row, col)
	}
}

func TestCursorAtBufferEnd(t *testing.T) {
	doc, p := newTestView(t, "ab", 2, 10)
	defer p.Close()

	doc.MoveCursorBufferEnd(false)
	p.Update()

	row, col, ok := p.CursorCell()
	if !ok {
		t.Fatal("cursor not found at buffer end")
	}
	if row != 0 || col != 2 {
		t.Errorf("cursor at (%d,%d), want (0,2)", row, col)
	}
}

func TestExactlyOneCursorCell(t *testing.T) {
	doc, p := newTestView(t, "abc\ndef\nghi", 5, 8)
	defer p.Close()

	doc.GotoLine(2)
	p.Update()

	count := 0
	for _, l := range p.Lines() {
		for _, c := range l.Cells {
			if c.Attr.Has(AttrCursor) {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one cursor cell, got %d", count)
	}
}

func TestTabExpansion(t *testing.T) {
	_, p := newTestView(t, "\tx", 2, 12, config.WithTabWidth(4))
	defer p.Close()

	p.Update()

	row := p.Lines()[0]
	// Four spaces for the tab, then x.
	for i := 0; i < 4; i++ {
		if row.Cells[i].Text != " " || row.Cells[i].Offset != 0 {
			t.Errorf("cell %d = %q offset %d, want tab space", i, row.Cells[i].Text, row.Cells[i].Offset)
		}
	}
	if row.Cells[4].Text != "x" || row.Cells[4].Col != 5 {
		t.Errorf("cell 4 = %q col %d, want x at col 5", row.Cells[4].Text, row.Cells[4].Col)
	}
}

func TestControlCharacterCells(t *testing.T) {
	_, p := newTestView(t, "a\x01b\x7f", 2, 12)
	defer p.Close()

	p.Update()

	row := p.Lines()[0]
	if row.Cells[1].Text != "^" || row.Cells[2].Text != "A" {
		t.Errorf("expected ^A, got %q %q", row.Cells[1].Text, row.Cells[2].Text)
	}
	if row.Cells[1].Offset != 1 || row.Cells[2].Offset != 1 {
		t.Error("caret pair must share the control byte's offset")
	}
	if row.Cells[4].Text != "^" || row.Cells[5].Text != "?" {
		t.Errorf("expected ^? for DEL, got %q %q", row.Cells[4].Text, row.Cells[5].Text)
	}
}

func TestInvalidUTF8Cell(t *testing.T) {
	_, p := newTestView(t, "a\xffb", 2, 8)
	defer p.Close()

	p.Update()

	row := p.Lines()[0]
	if row.Cells[1].Text != replacementChar {
		t.Errorf("expected replacement char, got %q", row.Cells[1].Text)
	}
	if !row.Cells[1].Attr.Has(AttrError) {
		t.Error("expected error attribute")
	}
	if row.Cells[2].Text != "b" {
		t.Errorf("expected single-byte advance, next cell %q", row.Cells[2].Text)
	}
}

func TestLineWrapContinuation(t *testing.T) {
	_, p := newTestView(t, "abcdefg\nz", 4, 4, config.WithLineWrap(true))
	defer p.Close()

	p.Update()

	lines := p.Lines()
	// The last column is reserved for the wrap ellipsis.
	if got := rowText(lines[0]); got != "abc"+wrapEllipsis {
		t.Errorf("row 0 = %q", got)
	}
	if lines[0].LineNo != 1 {
		t.Errorf("row 0 line no = %d", lines[0].LineNo)
	}
	if got := rowText(lines[1]); got != "def"+wrapEllipsis {
		t.Errorf("row 1 = %q", got)
	}
	if lines[1].LineNo != 0 {
		t.Errorf("wrap continuation row must have line no 0, got %d", lines[1].LineNo)
	}
	if got := rowText(lines[2]); got != "g " {
		t.Errorf("row 2 = %q", got)
	}
	if lines[3].LineNo != 2 {
		t.Errorf("row 3 line no = %d", lines[3].LineNo)
	}
}

func TestNoWrapClipsWithEllipsis(t *testing.T) {
	_, p := newTestView(t, "abcdefgh\nz", 3, 4, config.WithLineWrap(false))
	defer p.Close()

	p.Update()

	lines := p.Lines()
	row := lines[0]
	last := row.Cells[3]
	if last.Text != wrapEllipsis || !last.Attr.Has(AttrWrap) {
		t.Errorf("expected clip ellipsis, got %q", last.Text)
	}
	if got := rowText(lines[1]); got != "z " {
		t.Errorf("row 1 = %q", got)
	}
}

func TestHorizontalScrollFollowsCursor(t *testing.T) {
	doc, p := newTestView(t, "abcdefghijklmnop", 2, 5, config.WithLineWrap(false))
	defer p.Close()

	doc.MoveCursorBufferEnd(false) // col 17
	p.Update()

	if p.HorizontalScroll() != 13 {
		t.Errorf("expected horizontal scroll 13, got %d", p.HorizontalScroll())
	}

	if _, _, ok := p.CursorCell(); !ok {
		t.Error("cursor must be visible after horizontal scroll")
	}

	doc.MoveCursorBufferStart(false)
	p.Update()
	if p.HorizontalScroll() != 1 {
		t.Errorf("expected scroll back to 1, got %d", p.HorizontalScroll())
	}
}

func TestVerticalScrollFollowsCursor(t *testing.T) {
	text := ""
	for i := 0; i < 30; i++ {
		text += "line\n"
	}
	doc, p := newTestView(t, text, 5, 10, config.WithLineWrap(false))
	defer p.Close()

	// Far beyond the bottom: jump with the cursor line on top.
	doc.GotoLine(20)
	p.Update()

	start := p.ScreenStart()
	if start.Line != 20 {
		t.Errorf("expected screen start at line 20, got %d", start.Line)
	}

	// Smooth scroll: one line below the bottom advances by one.
	doc.GotoLine(25)
	p.Update()
	if p.ScreenStart().Line != 21 {
		t.Errorf("expected screen start 21, got %d", p.ScreenStart().Line)
	}

	// Cursor above the viewport jumps to its line.
	doc.GotoLine(3)
	p.Update()
	if p.ScreenStart().Line != 3 {
		t.Errorf("expected screen start 3, got %d", p.ScreenStart().Line)
	}
}

func TestSelectionOverlay(t *testing.T) {
	doc, p := newTestView(t, "abcdef", 2, 10)
	defer p.Close()

	doc.MoveCursorRight(false)
	for i := 0; i < 3; i++ {
		doc.MoveCursorRight(true)
	}
	p.Update()

	row := p.Lines()[0]
	for i, c := range row.Cells[:6] {
		want := i >= 1 && i < 4
		if c.Attr.Has(AttrSelection) != want {
			t.Errorf("cell %d selection = %v, want %v", i, c.Attr.Has(AttrSelection), want)
		}
	}
}

func TestColorColumnOverlay(t *testing.T) {
	_, p := newTestView(t, "abcdef", 2, 10, config.WithColorColumn(3))
	defer p.Close()

	p.Update()

	row := p.Lines()[0]
	if !row.Cells[2].Attr.Has(AttrColorColumn) {
		t.Error("expected color column on cell 2")
	}
	if row.Cells[1].Attr.Has(AttrColorColumn) {
		t.Error("unexpected color column on cell 1")
	}
}

func TestSearchMatchOverlay(t *testing.T) {
	doc, p := newTestView(t, "foo bar foo", 2, 15)
	defer p.Close()

	if err := doc.SetSearchPattern("foo", engine.DefaultSearchOptions()); err != nil {
		t.Fatal(err)
	}
	p.Update()

	row := p.Lines()[0]
	for _, i := range []int{0, 1, 2, 8, 9, 10} {
		if !row.Cells[i].Attr.Has(AttrSearchMatch) {
			t.Errorf("expected search match on cell %d", i)
		}
	}
	if row.Cells[4].Attr.Has(AttrSearchMatch) {
		t.Error("unexpected search match on cell 4")
	}
}

// staticProvider returns a fixed match set and counts generations.
type staticProvider struct {
	generations int
}

func (s *staticProvider) Load(string) error { return nil }
func (s *staticProvider) Free()             {}

func (s *staticProvider) Generate(text []byte, offset int) (*highlight.SyntaxMatches, error) {
	s.generations++
	return &highlight.SyntaxMatches{
		Start: offset,
		Matches: []highlight.SyntaxMatch{
			{Offset: 0, Length: 3, Token: highlight.TokenKeyword},
		},
	}, nil
}

func TestSyntaxTokensAssigned(t *testing.T) {
	_, p := newTestView(t, "for x", 2, 10)
	defer p.Close()

	p.SetTokenProvider(&staticProvider{})
	p.Update()

	row := p.Lines()[0]
	for i := 0; i < 3; i++ {
		if row.Cells[i].Token != highlight.TokenKeyword {
			t.Errorf("cell %d token = %v, want keyword", i, row.Cells[i].Token)
		}
	}
	if row.Cells[4].Token != highlight.TokenNone {
		t.Errorf("cell 4 token = %v, want none", row.Cells[4].Token)
	}
}

func TestSyntaxCacheReuse(t *testing.T) {
	doc, p := newTestView(t, "for x\nmore\n", 2, 10)
	defer p.Close()

	sp := &staticProvider{}
	p.SetTokenProvider(sp)

	p.Update()
	p.Update()
	if sp.generations != 1 {
		t.Errorf("expected cache reuse, got %d generations", sp.generations)
	}

	// An edit invalidates the cache.
	doc.InsertString("x")
	p.Update()
	if sp.generations != 2 {
		t.Errorf("expected regeneration after edit, got %d generations", sp.generations)
	}
}

func TestResizeReallocates(t *testing.T) {
	_, p := newTestView(t, "abc", 2, 10)
	defer p.Close()

	p.Update()
	p.Resize(4, 20)
	p.Update()

	if len(p.Lines()) != 4 {
		t.Errorf("expected 4 rows after resize, got %d", len(p.Lines()))
	}
}
