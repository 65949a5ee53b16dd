// Package backend draws projected frames onto a terminal through tcell.
// It consumes the view projector's cell grid; it never touches the
// document.
package backend

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/highlight"
	"github.com/dshills/quill/internal/renderer/view"
)

// Terminal owns the tcell screen and the active theme.
type Terminal struct {
	screen tcell.Screen
	theme  *highlight.Theme
}

// NewTerminal creates a terminal backend with the given theme.
func NewTerminal(theme *highlight.Theme) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if theme == nil {
		theme = highlight.DefaultTheme()
	}
	return &Terminal{screen: screen, theme: theme}, nil
}

// Init prepares the terminal for drawing.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
}

// Size returns the terminal dimensions.
func (t *Terminal) Size() (cols, rows int) {
	return t.screen.Size()
}

// PollEvent blocks for the next terminal event.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Draw renders a projected frame. gutterWidth columns on the left carry
// line numbers when positive.
func (t *Terminal) Draw(p *view.Projector, gutterWidth int) {
	lines := p.Lines()

	for row, line := range lines {
		x := 0

		if gutterWidth > 0 {
			x = t.drawGutter(row, line.LineNo, gutterWidth)
		}

		for _, cell := range line.Cells {
			style := t.styleFor(&cell)
			t.setCell(x, row, cell.Text, style)
			for extra := 1; extra < cell.Width; extra++ {
				t.setCell(x+extra, row, "", style)
			}
			x += cell.Width
		}
	}

	t.screen.Show()
}

// drawGutter renders the line number column and returns the first text
// column.
func (t *Terminal) drawGutter(row, lineNo, width int) int {
	text := ""
	if lineNo > 0 {
		text = fmt.Sprintf("%*d ", width-1, lineNo)
	} else {
		text = fmt.Sprintf("%*s ", width-1, "")
	}

	style := styleToTcell(core.Style{
		Foreground: t.theme.LineNumber,
		Background: t.theme.Background,
	})
	for i, r := range text {
		t.screen.SetContent(i, row, r, nil, style)
	}
	return width
}

// styleFor resolves a cell's attributes and token to a concrete style.
func (t *Terminal) styleFor(c *view.Cell) tcell.Style {
	style := t.theme.StyleFor(c.Token)
	style.Background = t.theme.Background

	switch {
	case c.Attr.Has(view.AttrError):
		style.Foreground = core.ColorFromRGB(255, 80, 80)
	case c.Attr.Has(view.AttrWrap):
		style.Foreground = t.theme.LineNumber
	}

	if c.Attr.Has(view.AttrSearchMatch) {
		style.Background = style.Background.Blend(t.theme.SearchMatch, 0.8)
	}
	if c.Attr.Has(view.AttrColorColumn) {
		style.Background = style.Background.Blend(t.theme.ColorColumn, 0.8)
	}
	if c.Attr.Has(view.AttrSelection) {
		style = style.Reverse()
	}
	if c.Attr.Has(view.AttrCursor) {
		style = style.Reverse()
	}

	return styleToTcell(style)
}

// setCell writes one cell's content.
func (t *Terminal) setCell(x, y int, text string, style tcell.Style) {
	if text == "" {
		t.screen.SetContent(x, y, ' ', nil, style)
		return
	}

	runes := []rune(text)
	var combining []rune
	if len(runes) > 1 {
		combining = runes[1:]
	}
	t.screen.SetContent(x, y, runes[0], combining, style)
}

// styleToTcell converts a core style to tcell's representation.
func styleToTcell(s core.Style) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(colorToTcell(s.Foreground)).
		Background(colorToTcell(s.Background))

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}

	return style
}

// colorToTcell converts a core color to tcell's representation.
func colorToTcell(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}
