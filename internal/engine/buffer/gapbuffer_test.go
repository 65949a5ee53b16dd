package buffer

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewGapBuffer(t *testing.T) {
	gb := NewGapBuffer(0)

	if gb.Len() != 0 {
		t.Errorf("expected length 0, got %d", gb.Len())
	}

	if gb.Lines() != 0 {
		t.Errorf("expected 0 newlines, got %d", gb.Lines())
	}
}

func TestGapBufferInsert(t *testing.T) {
	gb := NewGapBuffer(0)

	if err := gb.Insert([]byte("Hello World")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if gb.Text() != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", gb.Text())
	}

	if err := gb.SetPoint(5); err != nil {
		t.Fatalf("set point failed: %v", err)
	}

	if err := gb.Insert([]byte(",")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if gb.Text() != "Hello, World" {
		t.Errorf("expected %q, got %q", "Hello, World", gb.Text())
	}
}

func TestGapBufferDelete(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("Hello, World"))

	gb.SetPoint(5)
	if err := gb.Delete(1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if gb.Text() != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", gb.Text())
	}

	// Deleting past the end is clamped.
	gb.SetPoint(5)
	if err := gb.Delete(100); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if gb.Text() != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", gb.Text())
	}
}

func TestGapBufferLineCount(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("one\ntwo\nthree"))

	if gb.Lines() != 2 {
		t.Errorf("expected 2 newlines, got %d", gb.Lines())
	}

	gb.SetPoint(3)
	gb.Insert([]byte("\n\n"))

	if gb.Lines() != 4 {
		t.Errorf("expected 4 newlines after insert, got %d", gb.Lines())
	}

	gb.SetPoint(3)
	gb.Delete(2)

	if gb.Lines() != 2 {
		t.Errorf("expected 2 newlines after delete, got %d", gb.Lines())
	}
}

func TestGapBufferLengthTracksDeltas(t *testing.T) {
	gb := NewGapBuffer(0)
	want := 0

	ops := []struct {
		point  int
		insert string
		delete int
	}{
		{0, "abcdef", 0},
		{3, "xyz", 0},
		{0, "", 4},
		{2, "hello world", 0},
		{1, "", 3},
	}

	for _, op := range ops {
		gb.SetPoint(op.point)
		if op.insert != "" {
			gb.Insert([]byte(op.insert))
			want += len(op.insert)
		}
		if op.delete > 0 {
			gb.Delete(op.delete)
			want -= op.delete
		}
	}

	if gb.Len() != want {
		t.Errorf("expected length %d, got %d", want, gb.Len())
	}

	if gb.Lines() != strings.Count(gb.Text(), "\n") {
		t.Errorf("newline counter diverged: counter %d content %d",
			gb.Lines(), strings.Count(gb.Text(), "\n"))
	}
}

func TestGapBufferGet(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("abc"))

	b, ok := gb.Get(1)
	if !ok || b != 'b' {
		t.Errorf("expected 'b', got %q ok=%v", b, ok)
	}

	if _, ok := gb.Get(3); ok {
		t.Error("expected out of range read to fail")
	}

	if _, ok := gb.Get(-1); ok {
		t.Error("expected negative read to fail")
	}
}

func TestGapBufferGetRangeAcrossGap(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("0123456789"))

	// Park the gap in the middle so the range straddles it.
	gb.SetPoint(5)

	out := make([]byte, 6)
	n := gb.GetRange(2, out)

	if n != 6 {
		t.Fatalf("expected 6 bytes, got %d", n)
	}

	if !bytes.Equal(out, []byte("234567")) {
		t.Errorf("expected %q, got %q", "234567", out)
	}

	// Bounded by remaining content.
	out = make([]byte, 20)
	n = gb.GetRange(7, out)

	if n != 3 {
		t.Errorf("expected 3 bytes, got %d", n)
	}
}

func TestGapBufferPreallocate(t *testing.T) {
	gb := NewGapBuffer(0)

	if err := gb.Preallocate(1 << 16); err != nil {
		t.Fatalf("preallocate failed: %v", err)
	}

	if gb.Len() != 0 {
		t.Errorf("preallocate changed length: %d", gb.Len())
	}

	if err := gb.Insert(bytes.Repeat([]byte("x"), 1<<16)); err != nil {
		t.Fatalf("insert after preallocate failed: %v", err)
	}
}

func TestGapBufferIndexOf(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("one\ntwo\nthree"))
	gb.SetPoint(5)

	tests := []struct {
		name  string
		start int
		want  int
	}{
		{"from start", 0, 3},
		{"past first", 4, 7},
		{"none", 8, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gb.IndexOf('\n', tt.start); got != tt.want {
				t.Errorf("IndexOf(%d) = %d, want %d", tt.start, got, tt.want)
			}
		})
	}

	if got := gb.LastIndexOf('\n', 13); got != 7 {
		t.Errorf("LastIndexOf(13) = %d, want 7", got)
	}

	if got := gb.LastIndexOf('\n', 3); got != -1 {
		t.Errorf("LastIndexOf(3) = %d, want -1", got)
	}
}

func TestGapBufferCountNewlines(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("a\nb\nc\nd"))
	gb.SetPoint(4)

	if got := gb.CountNewlines(0, gb.Len()); got != 3 {
		t.Errorf("expected 3 newlines, got %d", got)
	}

	if got := gb.CountNewlines(2, 5); got != 1 {
		t.Errorf("expected 1 newline in [2,5), got %d", got)
	}
}

func TestGapBufferClear(t *testing.T) {
	gb := NewGapBufferFromBytes([]byte("a\nb"))
	gb.Clear()

	if gb.Len() != 0 || gb.Lines() != 0 {
		t.Errorf("clear left length %d lines %d", gb.Len(), gb.Lines())
	}
}
