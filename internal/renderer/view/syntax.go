package view

import (
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/history"
	"github.com/dshills/quill/internal/renderer/highlight"
)

// stabilizeLines is how far above the horizon the scan keeps extending
// while not on an empty line, so multi-line constructs like block
// comments tokenize from a stable boundary.
const stabilizeLines = 20

// syntaxCache holds the most recent SyntaxMatches together with the
// change state and screen start it was generated for. Matches are
// expensive, so they are reused while the document is unchanged and the
// viewport stays within the horizon.
type syntaxCache struct {
	provider highlight.TokenProvider

	matches   *highlight.SyntaxMatches
	state     history.ChangeState
	startLine int
	valid     bool
}

// invalidate drops the cached matches.
func (sc *syntaxCache) invalidate() {
	sc.matches = nil
	sc.valid = false
}

// free releases the cache and the provider's loaded syntax.
func (sc *syntaxCache) free() {
	sc.invalidate()
	if sc.provider != nil {
		sc.provider.Free()
	}
}

// matchesFor returns syntax matches covering the viewport, reusing the
// cache when the document is unchanged and the new screen start lies
// within the syntax horizon of the cached one.
func (sc *syntaxCache) matchesFor(doc *engine.Document, screenStart buffer.Position, rows int) *highlight.SyntaxMatches {
	if sc.provider == nil || !doc.Config().SyntaxEnabled() {
		return nil
	}

	horizon := doc.Config().SyntaxHorizon()
	state := doc.Log().State()

	if sc.valid && sc.state.Equal(state) && abs(screenStart.Line-sc.startLine) <= horizon {
		sc.matches.Reset()
		return sc.matches
	}

	start := screenStart
	start.ToLineStart()
	for i := 0; i < horizon; i++ {
		if !start.PrevLine() {
			break
		}
	}
	for i := 0; i < stabilizeLines && !start.AtEmptyLine(); i++ {
		if !start.PrevLine() {
			break
		}
	}

	end := screenStart
	for i := 0; i < rows+horizon; i++ {
		if !end.NextLine() {
			end.ToBufferEnd()
			break
		}
	}

	gb := doc.Buffer()
	text := gb.Bytes(start.Offset, end.Offset)

	sm, err := sc.provider.Generate(text, start.Offset)
	if err != nil {
		sc.invalidate()
		return nil
	}

	sc.matches = sm
	sc.state = state
	sc.startLine = screenStart.Line
	sc.valid = true
	return sm
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
