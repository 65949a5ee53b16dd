package engine

import "github.com/dshills/quill/internal/engine/buffer"

// ReplaceAnswer is a response to a replace confirmation.
type ReplaceAnswer uint8

const (
	ReplaceYes ReplaceAnswer = iota
	ReplaceNo
	ReplaceAll
	ReplaceCancel
)

// PromptResponder supplies replace confirmations. It is injected by the
// UI layer; tests supply canned answers.
type PromptResponder interface {
	Respond() ReplaceAnswer
}

// ReplaceEventKind tags a step-machine event.
type ReplaceEventKind uint8

const (
	// ReplaceShowMatch asks the driver to display the selected match and
	// come back with an answer.
	ReplaceShowMatch ReplaceEventKind = iota

	// ReplaceDone reports the session finished normally.
	ReplaceDone

	// ReplaceCancelled reports the session was aborted.
	ReplaceCancelled
)

// ReplaceEvent is emitted by the replace step machine after Start and
// every Continue.
type ReplaceEvent struct {
	Kind         ReplaceEventKind
	Match        Match
	Wrapped      bool
	Replacements int
}

// ReplaceSession is a resumable replace-with-confirmation. The outer
// event loop drives it: Start yields the first event; on ShowMatch the
// loop collects an answer and calls Continue.
type ReplaceSession struct {
	doc         *Document
	replacement string
	current     Match
	count       int
	done        bool
}

// StartReplace begins a replace session over the current search pattern.
func (d *Document) StartReplace(replacement string) (*ReplaceSession, ReplaceEvent, error) {
	s := &ReplaceSession{doc: d, replacement: replacement}
	ev, err := s.next()
	return s, ev, err
}

// next advances to the following match or finishes the session.
func (s *ReplaceSession) next() (ReplaceEvent, error) {
	m, wrapped, found, err := s.doc.FindNext()
	if err != nil {
		return ReplaceEvent{}, err
	}
	if !found {
		s.done = true
		return ReplaceEvent{Kind: ReplaceDone, Replacements: s.count}, nil
	}
	s.current = m
	s.doc.SelectMatch(m)
	return ReplaceEvent{Kind: ReplaceShowMatch, Match: m, Wrapped: wrapped}, nil
}

// Continue feeds an answer for the currently shown match into the
// session and returns the next event.
func (s *ReplaceSession) Continue(answer ReplaceAnswer) (ReplaceEvent, error) {
	if s.done {
		return ReplaceEvent{Kind: ReplaceDone, Replacements: s.count}, nil
	}

	switch answer {
	case ReplaceYes:
		if err := s.replaceCurrent(); err != nil {
			return ReplaceEvent{}, err
		}
		s.count++
		return s.next()

	case ReplaceNo:
		s.skipCurrent()
		return s.next()

	case ReplaceAll:
		n, err := s.doc.ReplaceAllMatches(s.replacement)
		if err != nil {
			return ReplaceEvent{}, err
		}
		s.count += n
		s.done = true
		return ReplaceEvent{Kind: ReplaceDone, Replacements: s.count}, nil

	default:
		s.done = true
		s.doc.SelectionReset()
		return ReplaceEvent{Kind: ReplaceCancelled, Replacements: s.count}, nil
	}
}

// replaceCurrent substitutes the replacement text, with capture group
// expansion for regex searches, for the currently selected match.
func (s *ReplaceSession) replaceCurrent() error {
	d := s.doc
	text := s.expand(s.current)

	start := d.cursor
	start.AdvanceToOffset(s.current.Start)
	end := d.cursor
	end.AdvanceToOffset(s.current.End)

	d.selectionReset()
	if err := d.ReplaceRange(buffer.NewRange(start, end), text); err != nil {
		return err
	}
	d.search.lastMatch = s.current.Start + len(text) - 1
	return nil
}

// skipCurrent moves past the current match without replacing it. When
// the replacement is empty and the search does not advance from the
// last match, the cursor steps a single character so the same match is
// not revisited forever.
func (s *ReplaceSession) skipCurrent() {
	d := s.doc
	d.selectionReset()
	if len(s.replacement) == 0 && !d.search.advance {
		d.cursorToOffset(min(s.current.Start+1, d.gb.Len()))
		return
	}
	d.cursorToOffset(s.current.End)
	d.search.lastMatch = s.current.Start
}

// expand resolves capture group references for regex searches; literal
// searches use the replacement verbatim.
func (s *ReplaceSession) expand(m Match) string {
	d := s.doc
	if d.search.kind != SearchRegex || d.search.instance == nil || m.Spans == nil {
		return s.replacement
	}
	src := d.gb.Bytes(0, d.gb.Len())
	return string(d.search.instance.Expand(s.replacement, m.Spans, src))
}

// ReplaceAllMatches rewinds to the buffer start and replaces every match
// inside a single undo group, so the whole operation undoes in one step.
func (d *Document) ReplaceAllMatches(replacement string) (int, error) {
	if !d.search.Valid() {
		return 0, nil
	}

	d.selectionReset()
	count := 0

	err := d.grouped(func() error {
		offset := 0
		for {
			text := d.gb.Bytes(0, d.gb.Len())
			if offset > len(text) {
				return nil
			}
			m, found, err := d.findFrom(text, offset)
			if err != nil {
				return err
			}
			if !found {
				return nil
			}

			expanded := replacement
			if d.search.kind == SearchRegex && d.search.instance != nil && m.Spans != nil {
				expanded = string(d.search.instance.Expand(replacement, m.Spans, text))
			}

			start := d.cursor
			start.AdvanceToOffset(m.Start)
			end := d.cursor
			end.AdvanceToOffset(m.End)

			if err := d.ReplaceRange(buffer.NewRange(start, end), expanded); err != nil {
				return err
			}
			count++

			offset = m.Start + len(expanded)
			if m.End == m.Start && len(expanded) == 0 {
				offset++
			}
		}
	})
	if err != nil {
		return count, err
	}

	d.search.allValid = false
	return count, nil
}

// ReplaceWithPrompt drives a full replace session against an injected
// responder, asking once per match. It returns the number of
// replacements performed.
func (d *Document) ReplaceWithPrompt(replacement string, responder PromptResponder) (int, error) {
	session, ev, err := d.StartReplace(replacement)
	if err != nil {
		return 0, err
	}

	for ev.Kind == ReplaceShowMatch {
		ev, err = session.Continue(responder.Respond())
		if err != nil {
			return session.count, err
		}
	}

	return ev.Replacements, nil
}
