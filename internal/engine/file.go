package engine

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dshills/quill/internal/engine/buffer"
)

// loadChunkSize is the read granularity when streaming a file into the
// gap buffer.
const loadChunkSize = 32 * 1024

// FileInfo describes the file a document is bound to.
type FileInfo struct {
	Path    string
	Name    string
	Exists  bool
	Regular bool
	Mode    fs.FileMode
	Size    int64
}

// NewFileInfo stats path and fills in a FileInfo. A missing file is not
// an error; the document starts empty and the file is created on save.
func NewFileInfo(path string) (FileInfo, error) {
	if path == "" {
		return FileInfo{}, newError(KindInvalidArgument, "invalid file path")
	}

	info := FileInfo{Path: path, Name: filepath.Base(path)}

	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return FileInfo{}, wrapError(KindIO, err, "stat %s", path)
	}

	info.Exists = true
	info.Regular = st.Mode().IsRegular()
	info.Mode = st.Mode()
	info.Size = st.Size()

	if st.IsDir() {
		return FileInfo{}, newError(KindIO, "%s is a directory", path)
	}
	if !info.Regular {
		return FileInfo{}, newError(KindIO, "%s is not a regular file", path)
	}

	return info, nil
}

// LoadFile reads the document's file into the buffer, replacing any
// existing content. Undo recording is disabled for the load and the log
// reset afterwards; the line ending format is detected from the first
// chunk.
func (d *Document) LoadFile() error {
	info, err := NewFileInfo(d.fileInfo.Path)
	if err != nil {
		return err
	}
	d.fileInfo = info

	d.log.Disable()
	defer d.log.Enable()

	d.gb.Clear()
	d.selectionReset()
	d.cursor.ToBufferStart()

	if !info.Exists {
		d.log.Clear()
		d.saved = d.log.State()
		d.drawDirty = true
		return nil
	}

	f, err := os.Open(info.Path)
	if err != nil {
		return wrapError(KindIO, err, "open %s", info.Path)
	}
	defer f.Close()

	if err := d.gb.Preallocate(d.gb.Len() + int(info.Size)); err != nil {
		return wrapError(KindOutOfMemory, err, "preallocate %d bytes", info.Size)
	}

	chunk := make([]byte, loadChunkSize)
	first := true
	for {
		n, rerr := f.Read(chunk)
		if n > 0 {
			if first {
				d.format = buffer.DetectLineEnding(chunk[:n])
				d.applyFormat()
				first = false
			}
			d.gb.SetPoint(d.gb.Len())
			if err := d.gb.Insert(chunk[:n]); err != nil {
				return wrapError(KindOutOfMemory, err, "load %s", info.Path)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return wrapError(KindIO, rerr, "read %s", info.Path)
		}
	}

	d.log.Clear()
	d.saved = d.log.State()
	d.cursor.ToBufferStart()
	d.drawDirty = true
	return nil
}

// WriteFile saves the buffer to path atomically: the content goes to a
// sibling temporary file which is renamed into place, copying mode and
// owner from the existing file. A missing trailing newline is appended
// on the way out. On failure the temporary file is removed and the
// document's saved state is untouched; on success the saved state
// becomes the current state.
func (d *Document) WriteFile(path string) error {
	if path == "" {
		return newError(KindInvalidArgument, "invalid file path")
	}

	if err := d.ensureTrailingNewline(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return wrapError(KindIO, err, "create temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	if err := d.writeContent(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return wrapError(KindIO, err, "close %s", tmpPath)
	}

	copyFileOwnership(path, tmpPath)

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return wrapError(KindIO, err, "rename %s to %s", tmpPath, path)
	}

	if info, err := NewFileInfo(path); err == nil {
		d.fileInfo = info
	}
	d.markSaved()
	return nil
}

// Save writes the document to its bound file.
func (d *Document) Save() error {
	return d.WriteFile(d.fileInfo.Path)
}

// ensureTrailingNewline appends the document's line ending when the
// content does not already end with one.
func (d *Document) ensureTrailingNewline() error {
	if d.gb.Len() == 0 {
		return nil
	}
	if b, ok := d.gb.Get(d.gb.Len() - 1); ok && b == '\n' {
		return nil
	}

	pos := d.cursor
	pos.ToBufferEnd()
	return d.insertRaw(pos, []byte(d.format.Sequence()))
}

// writeContent streams the buffer to w in chunks.
func (d *Document) writeContent(w io.Writer) error {
	chunk := make([]byte, loadChunkSize)
	offset := 0
	for offset < d.gb.Len() {
		n := d.gb.GetRange(offset, chunk)
		if n == 0 {
			break
		}
		if _, err := w.Write(chunk[:n]); err != nil {
			return wrapError(KindIO, err, "write content")
		}
		offset += n
	}
	return nil
}

// copyFileOwnership copies mode and, where permitted, owner from an
// existing file at path onto tmpPath. Best effort: errors are ignored,
// and when no file exists at path the temp file is set to mode 0644.
func copyFileOwnership(path, tmpPath string) {
	st, err := os.Stat(path)
	if err != nil {
		os.Chmod(tmpPath, 0o644)
		return
	}

	os.Chmod(tmpPath, st.Mode().Perm())

	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		os.Chown(tmpPath, int(sys.Uid), int(sys.Gid))
	}
}

// Text returns the entire document content. Intended for tests and
// small documents; large consumers should stream.
func (d *Document) Text() string {
	return d.gb.Text()
}

// TitleSuffix renders the dirty indicator used by status lines.
func (d *Document) TitleSuffix() string {
	if d.IsDirty() {
		return " [+]"
	}
	return ""
}
