// Package engine implements the editing core: the Document that couples
// a gap buffer with its cursor, selection, marks, undo log, search state
// and file lifecycle.
//
// Every editing operation follows the same skeleton: resolve the
// selection (deleting it inside an implicit undo group when present),
// validate the input mask, mutate the gap buffer, walk the mark
// registry, record the change in the undo log, flag the document
// draw-dirty and finally place the cursor. The renderer reads from the
// document through the view projector; it never writes back.
//
// The engine is single-threaded by contract: one goroutine owns a
// Document and everything hanging off it. Stream adapters may be driven
// by an outer loop interleaving with a child process, but no editing
// operation may be dispatched while such a pipe is in flight.
package engine
