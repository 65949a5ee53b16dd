package mark

import (
	"testing"

	"github.com/dshills/quill/internal/engine/buffer"
)

func fixture(text string) (*buffer.GapBuffer, *Registry) {
	gb := buffer.NewGapBufferFromBytes([]byte(text))
	return gb, NewRegistry()
}

func TestRegistryAddDuplicate(t *testing.T) {
	gb, reg := fixture("hello")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)

	if err := reg.Add(&pos, 0); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := reg.Add(&pos, 0); err != ErrAlreadyTracked {
		t.Errorf("expected ErrAlreadyTracked, got %v", err)
	}

	if err := reg.Remove(&pos); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if err := reg.Remove(&pos); err != ErrNotTracked {
		t.Errorf("expected ErrNotTracked, got %v", err)
	}
}

func TestMarkInsertBefore(t *testing.T) {
	gb, reg := fixture("0123456789")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pos.AdvanceToOffset(5)
	reg.Add(&pos, 0)

	// Insert two bytes at offset 1, before the mark.
	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin.AdvanceToOffset(1)
	gb.SetPoint(1)
	gb.Insert([]byte("XY"))
	reg.Update(ChangeInsert, origin, 2, 0)

	if pos.Offset != 7 {
		t.Errorf("expected offset 7, got %d", pos.Offset)
	}
}

func TestMarkInsertAfterIgnored(t *testing.T) {
	gb, reg := fixture("0123456789")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pos.AdvanceToOffset(2)
	reg.Add(&pos, 0)

	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin.AdvanceToOffset(5)
	gb.SetPoint(5)
	gb.Insert([]byte("XY"))
	reg.Update(ChangeInsert, origin, 2, 0)

	if pos.Offset != 2 {
		t.Errorf("expected offset 2, got %d", pos.Offset)
	}
}

func TestMarkNoAdjustOnBufferPos(t *testing.T) {
	gb, reg := fixture("0123456789")
	pinned := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pinned.AdvanceToOffset(5)
	moving := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	moving.AdvanceToOffset(5)

	reg.Add(&pinned, NoAdjustOnBufferPos)
	reg.Add(&moving, 0)

	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin.AdvanceToOffset(5)
	gb.SetPoint(5)
	gb.Insert([]byte("ab"))
	reg.Update(ChangeInsert, origin, 2, 0)

	if pinned.Offset != 5 {
		t.Errorf("pinned mark moved to %d", pinned.Offset)
	}

	if moving.Offset != 7 {
		t.Errorf("expected moving mark at 7, got %d", moving.Offset)
	}
}

func TestMarkDeleteCollapse(t *testing.T) {
	gb, reg := fixture("0123456789")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pos.AdvanceToOffset(5)
	reg.Add(&pos, 0)

	// Delete [3, 8), swallowing the mark.
	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin.AdvanceToOffset(3)
	gb.SetPoint(3)
	gb.Delete(5)
	reg.Update(ChangeDelete, origin, 5, 0)

	if pos.Offset != 3 {
		t.Errorf("expected collapse to 3, got %d", pos.Offset)
	}
}

func TestMarkDeleteBefore(t *testing.T) {
	gb, reg := fixture("01\n345\n789")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pos.AdvanceToOffset(8)
	reg.Add(&pos, 0)

	// Delete the middle line including its newline.
	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	origin.AdvanceToOffset(3)
	gb.SetPoint(3)
	gb.Delete(4)
	reg.Update(ChangeDelete, origin, 4, 1)

	if pos.Offset != 4 {
		t.Errorf("expected offset 4, got %d", pos.Offset)
	}

	if pos.Line != 2 {
		t.Errorf("expected line 2, got %d", pos.Line)
	}
}

func TestMarkAdjustOffsetOnly(t *testing.T) {
	gb, reg := fixture("ab\ncd")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pos.AdvanceToOffset(4)
	reg.Add(&pos, AdjustOffsetOnly)

	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	gb.SetPoint(0)
	gb.Insert([]byte("x\ny\n"))
	reg.Update(ChangeInsert, origin, 4, 2)

	if pos.Offset != 8 {
		t.Errorf("expected offset 8, got %d", pos.Offset)
	}

	// Line/col intentionally untouched.
	if pos.Line != 2 {
		t.Errorf("expected line to stay 2, got %d", pos.Line)
	}
}

func TestMarkInactiveSkipped(t *testing.T) {
	gb, reg := fixture("abc")
	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	pos.Deactivate()
	reg.Add(&pos, 0)

	origin := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
	gb.SetPoint(0)
	gb.Insert([]byte("zz"))
	reg.Update(ChangeInsert, origin, 2, 0)

	if pos.Offset != 0 {
		t.Errorf("inactive mark moved to %d", pos.Offset)
	}
}
