package buffer

import (
	"bytes"
	"errors"
)

// Errors returned by gap buffer operations.
var (
	// ErrOutOfMemory indicates storage could not be extended. The buffer is
	// unchanged when this is returned.
	ErrOutOfMemory = errors.New("unable to allocate buffer storage")

	// ErrOffsetOutOfRange indicates an offset is outside [0, Len()].
	ErrOffsetOutOfRange = errors.New("offset out of range")
)

// DefaultGapSize is the minimum spare capacity of a newly created buffer.
const DefaultGapSize = 1024

// GapBuffer stores a byte sequence in a single allocation with a movable
// unused region (the gap) at the edit point. The logical content of the
// buffer is the concatenation of the bytes before and after the gap; the
// gap itself carries no information other than spare capacity.
//
// A count of '\n' bytes in the live content is maintained incrementally on
// every mutation so line-count queries never scan.
type GapBuffer struct {
	data     []byte
	gapStart int
	gapEnd   int
	lines    int
}

// NewGapBuffer creates an empty gap buffer with at least the given spare
// capacity.
func NewGapBuffer(capacity int) *GapBuffer {
	if capacity < DefaultGapSize {
		capacity = DefaultGapSize
	}
	return &GapBuffer{
		data:   make([]byte, capacity),
		gapEnd: capacity,
	}
}

// NewGapBufferFromBytes creates a gap buffer holding a copy of b.
func NewGapBufferFromBytes(b []byte) *GapBuffer {
	gb := NewGapBuffer(len(b) + DefaultGapSize)
	gb.Insert(b)
	gb.SetPoint(0)
	return gb
}

// Len returns the number of live bytes in the buffer.
func (gb *GapBuffer) Len() int {
	return len(gb.data) - (gb.gapEnd - gb.gapStart)
}

// Lines returns the number of '\n' bytes in the live content.
func (gb *GapBuffer) Lines() int {
	return gb.lines
}

// Point returns the current edit point, i.e. the logical offset of the gap.
func (gb *GapBuffer) Point() int {
	return gb.gapStart
}

// gapSize returns the spare capacity currently held by the gap.
func (gb *GapBuffer) gapSize() int {
	return gb.gapEnd - gb.gapStart
}

// index maps a logical offset to its physical index in the backing array.
func (gb *GapBuffer) index(offset int) int {
	if offset < gb.gapStart {
		return offset
	}
	return offset + gb.gapSize()
}

// Get returns the byte at logical offset i. The second return value is
// false when i is outside [0, Len()).
func (gb *GapBuffer) Get(i int) (byte, bool) {
	if i < 0 || i >= gb.Len() {
		return 0, false
	}
	return gb.data[gb.index(i)], true
}

// GetRange copies up to len(out) bytes starting at logical offset i into
// out and returns the number of bytes copied. Copies are bounded by the
// live content length.
func (gb *GapBuffer) GetRange(i int, out []byte) int {
	if i < 0 || i >= gb.Len() || len(out) == 0 {
		return 0
	}
	n := len(out)
	if remaining := gb.Len() - i; n > remaining {
		n = remaining
	}
	copied := 0
	if i < gb.gapStart {
		c := copy(out, gb.data[i:min(i+n, gb.gapStart)])
		copied += c
		i += c
	}
	if copied < n {
		copied += copy(out[copied:], gb.data[gb.index(i):gb.index(i)+(n-copied)])
	}
	return copied
}

// Bytes returns a copy of the live bytes in [start, end). Bounds are
// clamped to the live content.
func (gb *GapBuffer) Bytes(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > gb.Len() {
		end = gb.Len()
	}
	if start >= end {
		return nil
	}
	out := make([]byte, end-start)
	gb.GetRange(start, out)
	return out
}

// Text returns the entire live content as a string.
func (gb *GapBuffer) Text() string {
	return string(gb.Bytes(0, gb.Len()))
}

// SetPoint positions the gap at logical offset i so that subsequent
// Insert and Delete calls act there.
func (gb *GapBuffer) SetPoint(i int) error {
	if i < 0 || i > gb.Len() {
		return ErrOffsetOutOfRange
	}
	gb.moveGap(i)
	return nil
}

// moveGap slides the gap so that gapStart == i.
func (gb *GapBuffer) moveGap(i int) {
	if i == gb.gapStart {
		return
	}
	if i < gb.gapStart {
		n := gb.gapStart - i
		copy(gb.data[gb.gapEnd-n:gb.gapEnd], gb.data[i:gb.gapStart])
		gb.gapStart = i
		gb.gapEnd -= n
	} else {
		n := i - gb.gapStart
		copy(gb.data[gb.gapStart:gb.gapStart+n], gb.data[gb.gapEnd:gb.gapEnd+n])
		gb.gapStart = i
		gb.gapEnd += n
	}
}

// Preallocate ensures the buffer can hold at least targetLen live bytes
// without further growth. The live content and point are unchanged.
func (gb *GapBuffer) Preallocate(targetLen int) error {
	if targetLen <= gb.Len() {
		return nil
	}
	return gb.grow(targetLen - gb.Len())
}

// grow extends the gap by at least needed bytes.
func (gb *GapBuffer) grow(needed int) error {
	if gb.gapSize() >= needed {
		return nil
	}
	newCap := len(gb.data)*2 + needed
	ndata, err := allocate(newCap)
	if err != nil {
		return err
	}
	copy(ndata, gb.data[:gb.gapStart])
	tail := len(gb.data) - gb.gapEnd
	copy(ndata[newCap-tail:], gb.data[gb.gapEnd:])
	gb.data = ndata
	gb.gapEnd = newCap - tail
	return nil
}

// Insert writes b at the current point and advances the point past it.
// On failure to extend storage the buffer is unchanged.
func (gb *GapBuffer) Insert(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := gb.grow(len(b)); err != nil {
		return err
	}
	copy(gb.data[gb.gapStart:], b)
	gb.gapStart += len(b)
	gb.lines += bytes.Count(b, []byte{'\n'})
	return nil
}

// Delete removes up to n bytes following the current point.
func (gb *GapBuffer) Delete(n int) error {
	if n < 0 {
		return ErrOffsetOutOfRange
	}
	if remaining := gb.Len() - gb.gapStart; n > remaining {
		n = remaining
	}
	if n == 0 {
		return nil
	}
	gb.lines -= bytes.Count(gb.data[gb.gapEnd:gb.gapEnd+n], []byte{'\n'})
	gb.gapEnd += n
	return nil
}

// Clear removes all content.
func (gb *GapBuffer) Clear() {
	gb.gapStart = 0
	gb.gapEnd = len(gb.data)
	gb.lines = 0
}

// CountNewlines returns the number of '\n' bytes in [start, end).
func (gb *GapBuffer) CountNewlines(start, end int) int {
	if start < 0 {
		start = 0
	}
	if end > gb.Len() {
		end = gb.Len()
	}
	count := 0
	if start < gb.gapStart {
		stop := min(end, gb.gapStart)
		count += bytes.Count(gb.data[start:stop], []byte{'\n'})
		start = stop
	}
	if start < end {
		count += bytes.Count(gb.data[gb.index(start):gb.index(start)+(end-start)], []byte{'\n'})
	}
	return count
}

// IndexOf scans forward from logical offset start for byte c and returns
// its offset, or -1 when c does not occur.
func (gb *GapBuffer) IndexOf(c byte, start int) int {
	if start < 0 {
		start = 0
	}
	if start < gb.gapStart {
		if i := bytes.IndexByte(gb.data[start:gb.gapStart], c); i >= 0 {
			return start + i
		}
		start = gb.gapStart
	}
	phys := gb.index(start)
	if i := bytes.IndexByte(gb.data[phys:], c); i >= 0 {
		return start + i
	}
	return -1
}

// LastIndexOf scans backward from logical offset start (exclusive) for
// byte c and returns its offset, or -1 when c does not occur.
func (gb *GapBuffer) LastIndexOf(c byte, start int) int {
	if start > gb.Len() {
		start = gb.Len()
	}
	if start > gb.gapStart {
		phys := gb.index(start)
		if i := bytes.LastIndexByte(gb.data[gb.gapEnd:phys], c); i >= 0 {
			return gb.gapStart + i
		}
		start = gb.gapStart
	}
	if i := bytes.LastIndexByte(gb.data[:start], c); i >= 0 {
		return i
	}
	return -1
}

// allocate wraps make so allocation failure surfaces as ErrOutOfMemory
// rather than a runtime panic escaping the engine.
func allocate(n int) (b []byte, err error) {
	defer func() {
		if recover() != nil {
			b, err = nil, ErrOutOfMemory
		}
	}()
	return make([]byte, n), nil
}
