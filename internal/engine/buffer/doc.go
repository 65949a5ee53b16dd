// Package buffer provides the gap-buffered byte sequence at the heart of the
// editor engine together with the logical position model layered on top of it.
//
// The buffer package provides:
//
//   - GapBuffer: a byte container with amortized O(1) insert/delete at a
//     movable point and O(1) length and line-count queries
//   - Position: a (byte offset, line, column) triple kept consistent with
//     the buffer it points into
//   - Range: a half-open [start, end) pair of positions
//   - Character classification and word/paragraph navigation
//   - Line ending detection and conversion
//
// Basic usage:
//
//	gb := buffer.NewGapBuffer(0)
//	gb.SetPoint(0)
//	gb.Insert([]byte("Hello, World!\n"))
//
//	pos := buffer.NewPosition(gb, buffer.LineEndingLF, 8)
//	pos.NextChar() // advance one character
//
// Positions are mutable values owned by their holders (the cursor, the
// selection anchor, stream endpoints). The mark package keeps registered
// positions consistent across edits; this package never adjusts a position
// behind the holder's back.
//
// Concurrency:
//
// A GapBuffer and all positions into it are owned by a single editor
// goroutine. No locking is performed here.
package buffer
