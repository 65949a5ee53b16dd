package view

import (
	"strings"
	"testing"

	"github.com/dshills/quill/internal/config"
)

func TestWrapScrollCursorBelow(t *testing.T) {
	// 10 logical lines of 8 chars in a 4-wide viewport: each logical
	// line spans multiple screen lines.
	text := strings.Repeat("aaaaaaaa\n", 10)
	doc, p := newTestView(t, text, 5, 4, config.WithLineWrap(true))
	defer p.Close()

	p.Update()
	if p.ScreenStart().Offset != 0 {
		t.Fatalf("expected start at 0, got %d", p.ScreenStart().Offset)
	}

	doc.GotoLine(8)
	p.Update()

	if _, _, ok := p.CursorCell(); !ok {
		t.Error("cursor must be on screen after wrap scroll")
	}
	if p.ScreenStart().Offset == 0 {
		t.Error("expected screen start to advance")
	}
}

func TestWrapScrollCursorAbove(t *testing.T) {
	text := strings.Repeat("bbbb\n", 20)
	doc, p := newTestView(t, text, 5, 10, config.WithLineWrap(true))
	defer p.Close()

	doc.GotoLine(15)
	p.Update()

	doc.GotoLine(2)
	p.Update()

	if p.ScreenStart().Line != 2 {
		t.Errorf("expected screen start at line 2, got %d", p.ScreenStart().Line)
	}
	if _, _, ok := p.CursorCell(); !ok {
		t.Error("cursor must be on screen")
	}
}

func TestWrapScrollFarJumpUsesFallback(t *testing.T) {
	text := strings.Repeat("cccc\n", 100)
	doc, p := newTestView(t, text, 5, 10, config.WithLineWrap(true))
	defer p.Close()

	p.Update()
	doc.GotoLine(90)
	p.Update()

	if _, _, ok := p.CursorCell(); !ok {
		t.Error("cursor must be on screen after far jump")
	}

	// The viewport should end near the cursor, not rows beyond it.
	start := p.ScreenStart()
	if start.Line < 85 || start.Line > 90 {
		t.Errorf("unexpected screen start line %d", start.Line)
	}
}

func TestSnapToScreenLineStart(t *testing.T) {
	doc, p := newTestView(t, "abcdefghij", 3, 4, config.WithLineWrap(true))
	defer p.Close()

	pos := doc.Cursor()
	pos.AdvanceToOffset(6) // col 7, on the second screen line, which starts at col 5
	p.snapToScreenLineStart(&pos)

	if pos.Col != 5 {
		t.Errorf("expected snap to col 5, got %d", pos.Col)
	}
}

func TestNextPrevScreenLine(t *testing.T) {
	doc, p := newTestView(t, "abcdefghij\nxy", 3, 4, config.WithLineWrap(true))
	defer p.Close()

	pos := doc.Cursor()
	pos.ToBufferStart()

	if !p.nextScreenLine(&pos) {
		t.Fatal("expected next screen line")
	}
	if pos.Col != 5 || pos.Line != 1 {
		t.Errorf("expected col 5 line 1, got col %d line %d", pos.Col, pos.Line)
	}

	if !p.nextScreenLine(&pos) {
		t.Fatal("expected next screen line")
	}
	if pos.Col != 9 {
		t.Errorf("expected col 9, got %d", pos.Col)
	}

	// Crossing into the next logical line.
	if !p.nextScreenLine(&pos) {
		t.Fatal("expected next logical line")
	}
	if pos.Line != 2 || pos.Col != 1 {
		t.Errorf("expected line 2 col 1, got line %d col %d", pos.Line, pos.Col)
	}

	if !p.prevScreenLine(&pos) {
		t.Fatal("expected prev screen line")
	}
	if pos.Line != 1 || pos.Col != 9 {
		t.Errorf("expected line 1 col 9, got line %d col %d", pos.Line, pos.Col)
	}
}
