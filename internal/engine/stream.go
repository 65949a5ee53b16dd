package engine

import (
	"io"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/mark"
)

// BufferInputStream reads a byte range out of a document. The range
// endpoints are registered as offset-only marks, so edits elsewhere in
// the document shift the window rather than corrupt it.
type BufferInputStream struct {
	doc    *Document
	read   buffer.Position
	end    buffer.Position
	closed bool
}

// NewInputStream opens a read stream over [r.Start, r.End). Close must
// be called to release the marks.
func (d *Document) NewInputStream(r buffer.Range) (*BufferInputStream, error) {
	s := &BufferInputStream{doc: d, read: r.Start, end: r.End}

	if err := d.AddMark(&s.read, mark.AdjustOffsetOnly); err != nil {
		return nil, err
	}
	if err := d.AddMark(&s.end, mark.AdjustOffsetOnly); err != nil {
		d.RemoveMark(&s.read)
		return nil, err
	}
	return s, nil
}

// Read implements io.Reader, copying from the gap buffer and advancing
// the start mark.
func (s *BufferInputStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	remaining := s.end.Offset - s.read.Offset
	if remaining <= 0 {
		return 0, io.EOF
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	n := s.doc.gb.GetRange(s.read.Offset, p)
	s.read.Offset += n
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close releases the stream's marks. It is safe to call more than once.
func (s *BufferInputStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.doc.RemoveMark(&s.read)
	s.doc.RemoveMark(&s.end)
	return nil
}

// BufferOutputStream writes bytes into a document at a tracked position,
// optionally overwriting the tail of the current line first.
type BufferOutputStream struct {
	doc         *Document
	write       buffer.Position
	replaceMode bool
	closed      bool
}

// NewOutputStream opens a write stream at pos. In replace mode each
// write overwrites as many bytes of the current line's tail as it
// writes, never past the line ending.
func (d *Document) NewOutputStream(pos buffer.Position, replaceMode bool) (*BufferOutputStream, error) {
	s := &BufferOutputStream{doc: d, write: pos, replaceMode: replaceMode}
	if err := d.AddMark(&s.write, mark.AdjustOffsetOnly); err != nil {
		return nil, err
	}
	return s, nil
}

// Write implements io.Writer. The document cursor is temporarily swapped
// to the stream's write position so the ordinary editing paths apply,
// then restored.
func (s *BufferOutputStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p) == 0 {
		return 0, nil
	}

	d := s.doc
	savedCursor := d.cursor
	savedAnchor := d.anchor
	d.selectionReset()
	start := s.write.Offset
	d.cursor.AdvanceToOffset(start)

	var err error
	if s.replaceMode {
		err = d.replaceForward(len(p), string(p))
	} else {
		err = d.InsertString(string(p))
	}

	written := d.cursor.Offset - start
	s.write.Offset = d.cursor.Offset
	d.cursor = savedCursor
	d.anchor = savedAnchor

	if err != nil {
		return 0, err
	}
	return written, nil
}

// Close releases the stream's mark. It is safe to call more than once.
func (s *BufferOutputStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.doc.RemoveMark(&s.write)
	return nil
}

// replaceForward overwrites up to n bytes of the current line tail with
// text as a single undo group.
func (d *Document) replaceForward(n int, text string) error {
	tail := d.cursor
	tail.ToLineEnd()
	overwrite := tail.Offset - d.cursor.Offset
	if overwrite > n {
		overwrite = n
	}

	end := d.cursor
	end.AdvanceToOffset(d.cursor.Offset + overwrite)
	return d.ReplaceRange(buffer.NewRange(d.cursor, end), text)
}
