package engine

import (
	"bytes"
	"io"
)

// Clipboard moves text in and out of the editor. Implementations may
// shell out to a system clipboard tool; the core only sees streams.
type Clipboard interface {
	Copy(r io.Reader) error
	Paste() (io.Reader, error)
}

// MemoryClipboard is an in-process Clipboard used by tests and as a
// fallback when no system clipboard is available.
type MemoryClipboard struct {
	content []byte
}

// NewMemoryClipboard creates an empty in-process clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Copy implements Clipboard.
func (c *MemoryClipboard) Copy(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.content = data
	return nil
}

// Paste implements Clipboard.
func (c *MemoryClipboard) Paste() (io.Reader, error) {
	return bytes.NewReader(c.content), nil
}

// CopySelection streams the selected bytes to the clipboard. Without a
// selection nothing happens.
func (d *Document) CopySelection(cb Clipboard) error {
	r, ok := d.SelectionRange()
	if !ok {
		return nil
	}

	in, err := d.NewInputStream(r)
	if err != nil {
		return err
	}
	defer in.Close()

	return cb.Copy(in)
}

// CutSelection copies the selection to the clipboard and deletes it.
func (d *Document) CutSelection(cb Clipboard) error {
	if err := d.CopySelection(cb); err != nil {
		return err
	}
	if r, ok := d.SelectionRange(); ok {
		return d.deleteRange(r)
	}
	return nil
}

// PasteFrom inserts the clipboard content at the cursor, converting its
// line endings to the document format. Any selection is overwritten
// within the same undo group.
func (d *Document) PasteFrom(cb Clipboard) error {
	r, err := cb.Paste()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return d.Paste(string(data))
}
