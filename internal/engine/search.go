package engine

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/dshills/quill/internal/engine/history"
)

// SearchKind selects literal or regex matching.
type SearchKind uint8

const (
	SearchLiteral SearchKind = iota
	SearchRegex
)

// RegexFlags modify pattern compilation.
type RegexFlags uint8

const (
	RegexCaseInsensitive RegexFlags = 1 << iota
	RegexMultiline
	RegexDotAll
	RegexExtended
)

// RegexEngine compiles patterns for search, replace and capture group
// expansion. Implementations are injected; the default wraps the
// standard library's regexp package.
type RegexEngine interface {
	Compile(pattern string, flags RegexFlags) (RegexInstance, error)
}

// RegexInstance is a compiled pattern.
type RegexInstance interface {
	// Exec searches text from start. On a match it returns the capture
	// spans, span 0 being the whole match, as absolute offsets in text.
	Exec(text []byte, start int) (spans [][2]int, matched bool)

	// Expand substitutes capture group references in template using the
	// spans of a prior Exec against src.
	Expand(template string, spans [][2]int, src []byte) []byte

	// Free releases the instance.
	Free()
}

// stdRegexEngine backs RegexEngine with the standard regexp package.
type stdRegexEngine struct{}

// NewStdRegexEngine returns the default regex engine.
func NewStdRegexEngine() RegexEngine {
	return stdRegexEngine{}
}

// Compile implements RegexEngine. The extended flag has no regexp
// equivalent and is rejected.
func (stdRegexEngine) Compile(pattern string, flags RegexFlags) (RegexInstance, error) {
	var prefix strings.Builder
	if flags&RegexCaseInsensitive != 0 {
		prefix.WriteString("(?i)")
	}
	if flags&RegexMultiline != 0 {
		prefix.WriteString("(?m)")
	}
	if flags&RegexDotAll != 0 {
		prefix.WriteString("(?s)")
	}
	if flags&RegexExtended != 0 {
		return nil, newError(KindRegex, "extended patterns are not supported")
	}

	re, err := regexp.Compile(prefix.String() + pattern)
	if err != nil {
		return nil, wrapError(KindRegex, err, "compile %q", pattern)
	}
	return &stdRegexInstance{re: re}, nil
}

type stdRegexInstance struct {
	re *regexp.Regexp
}

func (s *stdRegexInstance) Exec(text []byte, start int) ([][2]int, bool) {
	if start < 0 || start > len(text) {
		return nil, false
	}
	idx := s.re.FindSubmatchIndex(text[start:])
	if idx == nil {
		return nil, false
	}
	spans := make([][2]int, 0, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			spans = append(spans, [2]int{-1, -1})
			continue
		}
		spans = append(spans, [2]int{idx[i] + start, idx[i+1] + start})
	}
	return spans, true
}

func (s *stdRegexInstance) Expand(template string, spans [][2]int, src []byte) []byte {
	idx := make([]int, 0, len(spans)*2)
	for _, span := range spans {
		idx = append(idx, span[0], span[1])
	}
	return s.re.Expand(nil, []byte(template), src, idx)
}

func (s *stdRegexInstance) Free() {}

// asciiFoldIndex returns the first offset at or after start where
// needle matches text, comparing ASCII letters case-insensitively. The
// matched region is always exactly len(needle) bytes, so byte offsets
// into the buffer are preserved.
func asciiFoldIndex(text []byte, needle string, start int) int {
	if len(needle) == 0 {
		return start
	}
	if start < 0 {
		start = 0
	}
	for i := start; i+len(needle) <= len(text); i++ {
		if asciiFoldEqual(text[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// asciiFoldEqual reports whether b equals s under ASCII case folding.
func asciiFoldEqual(b []byte, s string) bool {
	for i := 0; i < len(s); i++ {
		if lowerASCII(b[i]) != lowerASCII(s[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Match is a matched byte range.
type Match struct {
	Start int
	End   int

	// Spans holds capture group offsets for regex matches.
	Spans [][2]int
}

// SearchState holds the document's current search session.
type SearchState struct {
	pattern   string
	kind      SearchKind
	forward   bool
	foldCase  bool
	advance   bool
	lastMatch int
	invalid   bool

	instance RegexInstance

	all      []Match
	allState history.ChangeState
	allValid bool
}

// SearchOptions configure a search session.
type SearchOptions struct {
	Kind                 SearchKind
	Forward              bool
	CaseInsensitive      bool
	AdvanceFromLastMatch bool
}

// DefaultSearchOptions is a forward literal case-sensitive search.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Kind: SearchLiteral, Forward: true}
}

// Search returns the document's search state.
func (d *Document) Search() *SearchState {
	return &d.search
}

// Pattern returns the active search pattern.
func (s *SearchState) Pattern() string {
	return s.pattern
}

// Valid reports whether the search state holds a usable pattern.
func (s *SearchState) Valid() bool {
	return s.pattern != "" && !s.invalid
}

// SetSearchPattern installs a new pattern, compiling it when the search
// is a regex. A failed compile marks the search state invalid.
func (d *Document) SetSearchPattern(pattern string, opts SearchOptions) error {
	s := &d.search

	if s.instance != nil {
		s.instance.Free()
		s.instance = nil
	}

	s.pattern = pattern
	s.kind = opts.Kind
	s.forward = opts.Forward
	s.foldCase = opts.CaseInsensitive
	s.advance = opts.AdvanceFromLastMatch
	s.lastMatch = -1
	s.invalid = false
	s.all = nil
	s.allValid = false

	if pattern == "" || opts.Kind != SearchRegex {
		return nil
	}

	var flags RegexFlags
	if opts.CaseInsensitive {
		flags |= RegexCaseInsensitive
	}

	instance, err := d.regex.Compile(pattern, flags)
	if err != nil {
		s.invalid = true
		return err
	}
	s.instance = instance
	return nil
}

// FindNext searches from the cursor in the configured direction. When no
// match remains before the buffer boundary the search wraps to the other
// end and tries once more; wrapped reports that to the caller for the
// single "Search wrapped" message.
func (d *Document) FindNext() (m Match, wrapped, found bool, err error) {
	s := &d.search
	if !s.Valid() {
		return Match{}, false, false, nil
	}

	text := d.gb.Bytes(0, d.gb.Len())
	start := d.cursor.Offset
	if s.advance && s.lastMatch >= 0 {
		start = s.lastMatch + 1
	}

	if s.forward {
		if m, found, err = d.findFrom(text, start); err != nil {
			return Match{}, false, false, err
		}
		if !found {
			wrapped = true
			if m, found, err = d.findFrom(text, 0); err != nil {
				return Match{}, false, false, err
			}
		}
	} else {
		if m, found, err = d.findBackFrom(text, start); err != nil {
			return Match{}, false, false, err
		}
		if !found {
			wrapped = true
			if m, found, err = d.findBackFrom(text, len(text)); err != nil {
				return Match{}, false, false, err
			}
		}
	}

	if found {
		s.lastMatch = m.Start
	}
	return m, wrapped && found, found, nil
}

// findFrom returns the first match at or after start.
func (d *Document) findFrom(text []byte, start int) (Match, bool, error) {
	s := &d.search

	if s.kind == SearchLiteral {
		if start > len(text) {
			return Match{}, false, nil
		}
		var i int
		if s.foldCase {
			// Fold ASCII only, over the original bytes: Unicode case
			// mapping can change byte length and would desynchronize
			// match offsets from the buffer.
			i = asciiFoldIndex(text, s.pattern, start)
		} else {
			i = bytes.Index(text[start:], []byte(s.pattern))
			if i >= 0 {
				i += start
			}
		}
		if i < 0 {
			return Match{}, false, nil
		}
		return Match{Start: i, End: i + len(s.pattern)}, true, nil
	}

	spans, matched := s.instance.Exec(text, start)
	if !matched {
		return Match{}, false, nil
	}
	return Match{Start: spans[0][0], End: spans[0][1], Spans: spans}, true, nil
}

// findBackFrom returns the last match strictly before start.
func (d *Document) findBackFrom(text []byte, start int) (Match, bool, error) {
	var best Match
	found := false
	from := 0
	for {
		m, ok, err := d.findFrom(text, from)
		if err != nil {
			return Match{}, false, err
		}
		if !ok || m.Start >= start {
			break
		}
		best, found = m, true
		from = m.Start + 1
		if from > len(text) {
			break
		}
	}
	return best, found, nil
}

// FindAll computes every match in the buffer for the interactive find
// session. Results are cached until the pattern or the buffer changes.
func (d *Document) FindAll() ([]Match, error) {
	s := &d.search
	if !s.Valid() {
		return nil, nil
	}

	state := d.log.State()
	if s.allValid && s.allState.Equal(state) {
		return s.all, nil
	}

	text := d.gb.Bytes(0, d.gb.Len())
	var matches []Match
	from := 0
	for from <= len(text) {
		m, ok, err := d.findFrom(text, from)
		if err != nil {
			s.invalid = true
			return nil, err
		}
		if !ok {
			break
		}
		matches = append(matches, m)
		if m.End > m.Start {
			from = m.End
		} else {
			from = m.Start + 1
		}
	}

	s.all = matches
	s.allState = state
	s.allValid = true
	return matches, nil
}

// SelectMatch moves the cursor to a match and selects it.
func (d *Document) SelectMatch(m Match) {
	d.anchor = d.cursor
	d.anchor.AdvanceToOffset(m.Start)
	d.cursorToOffset(m.End)
	d.drawDirty = true
}
