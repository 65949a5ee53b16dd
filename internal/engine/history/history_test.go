package history

import (
	"testing"

	"github.com/dshills/quill/internal/engine/buffer"
)

// testApplier applies inversions directly to a gap buffer.
type testApplier struct {
	gb *buffer.GapBuffer
}

func (a *testApplier) ApplyInsert(origin buffer.Position, text []byte) error {
	if err := a.gb.SetPoint(origin.Offset); err != nil {
		return err
	}
	return a.gb.Insert(text)
}

func (a *testApplier) ApplyDelete(origin buffer.Position, length int) ([]byte, error) {
	removed := a.gb.Bytes(origin.Offset, origin.Offset+length)
	if err := a.gb.SetPoint(origin.Offset); err != nil {
		return nil, err
	}
	if err := a.gb.Delete(length); err != nil {
		return nil, err
	}
	return removed, nil
}

// typeText simulates typing: inserts text into the buffer one chunk at a
// time and records each chunk.
func typeText(gb *buffer.GapBuffer, log *Log, offset int, text string) {
	for i := 0; i < len(text); i++ {
		gb.SetPoint(offset + i)
		gb.Insert([]byte{text[i]})
		origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
		origin.Offset = offset + i
		log.RecordInsert(origin, []byte{text[i]})
	}
}

func TestCoalescedTypingUndo(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()

	typeText(gb, log, 0, "hello world")

	a := &testApplier{gb: gb}

	// One word per undo step: the first undo drops "world", the second
	// drops "hello " (the space coalesced with the word before it).
	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if gb.Text() != "hello " {
		t.Errorf("expected %q, got %q", "hello ", gb.Text())
	}

	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if gb.Text() != "" {
		t.Errorf("expected empty buffer, got %q", gb.Text())
	}

	if err := log.Undo(a); err != ErrNothingToUndo {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestUndoRedoIdentity(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()
	a := &testApplier{gb: gb}

	typeText(gb, log, 0, "alpha beta")
	want := gb.Text()

	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if err := log.Redo(a); err != nil {
		t.Fatalf("redo failed: %v", err)
	}

	if gb.Text() != want {
		t.Errorf("undo/redo not identity: %q != %q", gb.Text(), want)
	}

	if err := log.Redo(a); err != ErrNothingToRedo {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestDeleteCoalescing(t *testing.T) {
	gb := buffer.NewGapBufferFromBytes([]byte("abcdef"))
	log := NewLog()
	a := &testApplier{gb: gb}

	// Repeated delete-key presses at a fixed point.
	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin.Offset = 1
	for i := 0; i < 3; i++ {
		removed := gb.Bytes(1, 2)
		gb.SetPoint(1)
		gb.Delete(1)
		log.RecordDelete(origin, removed)
	}

	if gb.Text() != "aef" {
		t.Fatalf("expected %q, got %q", "aef", gb.Text())
	}

	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if gb.Text() != "abcdef" {
		t.Errorf("expected one undo to restore all deletes, got %q", gb.Text())
	}

	if log.CanUndo() {
		t.Error("expected a single coalesced entry")
	}
}

func TestGroupUndoesInOneStep(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()
	a := &testApplier{gb: gb}

	log.StartGroup()
	log.StartGroup() // re-open is a no-op

	gb.SetPoint(0)
	gb.Insert([]byte("one"))
	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	log.RecordInsert(origin, []byte("one"))

	gb.SetPoint(3)
	gb.Insert([]byte("two"))
	origin2 := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin2.Offset = 3
	log.RecordInsert(origin2, []byte("two"))

	log.EndGroup()

	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if gb.Text() != "" {
		t.Errorf("expected group to undo in one step, got %q", gb.Text())
	}

	if err := log.Redo(a); err != nil {
		t.Fatalf("redo failed: %v", err)
	}

	if gb.Text() != "onetwo" {
		t.Errorf("expected redo to restore group, got %q", gb.Text())
	}
}

func TestEmptyGroupDiscarded(t *testing.T) {
	log := NewLog()

	log.StartGroup()
	log.EndGroup()

	if log.CanUndo() {
		t.Error("empty group should not be recorded")
	}
}

func TestRedoClearedOnNewChange(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()
	a := &testApplier{gb: gb}

	typeText(gb, log, 0, "abc ")
	typeText(gb, log, 4, "def")

	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if !log.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	typeText(gb, log, 4, "x")

	if log.CanRedo() {
		t.Error("expected redo stack cleared by new change")
	}
}

func TestChangeStateDirtyTracking(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()

	saved := log.State()

	typeText(gb, log, 0, "a")
	if log.State().Equal(saved) {
		t.Error("expected state to change after edit")
	}

	saved = log.State()

	// Coalescing mutates the top entry in place; the version counter
	// must still move the state.
	typeText(gb, log, 1, "b")
	if log.State().Equal(saved) {
		t.Error("expected coalesced edit to change state")
	}

	a := &testApplier{gb: gb}
	log.Undo(a)
	log.Redo(a)
	// Identical content but a different top entry is acceptable; dirty
	// tracking only promises saved == current implies clean.
}

func TestRecordingSuppressedWhileApplying(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()

	typeText(gb, log, 0, "abc")

	// An applier that sneaks a record in during undo.
	a := &recordingApplier{testApplier{gb: gb}, log}

	if err := log.Undo(a); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if log.CanUndo() {
		t.Error("expected no new entries recorded during undo")
	}
}

type recordingApplier struct {
	testApplier
	log *Log
}

func (a *recordingApplier) ApplyDelete(origin buffer.Position, length int) ([]byte, error) {
	a.log.RecordInsert(origin, []byte("sneaky"))
	return a.testApplier.ApplyDelete(origin, length)
}

func TestDisabledLogRecordsNothing(t *testing.T) {
	gb := buffer.NewGapBuffer(0)
	log := NewLog()

	log.Disable()
	typeText(gb, log, 0, "loaded content")
	log.Enable()

	if log.CanUndo() {
		t.Error("expected nothing recorded while disabled")
	}
}
