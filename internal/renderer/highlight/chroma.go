package highlight

import (
	"errors"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// ErrNoSyntax indicates Generate was called before a successful Load.
var ErrNoSyntax = errors.New("no syntax loaded")

// ChromaProvider implements TokenProvider on top of the chroma lexer
// registry. Syntax names resolve as chroma lexer names ("go", "python")
// or file names ("main.go").
type ChromaProvider struct {
	lexer chroma.Lexer
}

// NewChromaProvider creates an unloaded provider.
func NewChromaProvider() *ChromaProvider {
	return &ChromaProvider{}
}

// Load implements TokenProvider.
func (p *ChromaProvider) Load(syntaxName string) error {
	lexer := lexers.Get(syntaxName)
	if lexer == nil {
		lexer = lexers.Match(syntaxName)
	}
	if lexer == nil {
		return fmt.Errorf("no lexer for syntax %q", syntaxName)
	}
	p.lexer = chroma.Coalesce(lexer)
	return nil
}

// Loaded reports whether a syntax is ready.
func (p *ChromaProvider) Loaded() bool {
	return p.lexer != nil
}

// Generate implements TokenProvider. Matches beyond MaxMatches are
// truncated.
func (p *ChromaProvider) Generate(text []byte, offset int) (*SyntaxMatches, error) {
	if p.lexer == nil {
		return nil, ErrNoSyntax
	}

	it, err := p.lexer.Tokenise(nil, string(text))
	if err != nil {
		return nil, fmt.Errorf("tokenise: %w", err)
	}

	sm := &SyntaxMatches{Start: offset}
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		length := len(tok.Value)
		token := mapChromaType(tok.Type)
		if token != TokenNone && length > 0 {
			sm.Matches = append(sm.Matches, SyntaxMatch{
				Offset: pos,
				Length: length,
				Token:  token,
			})
			if len(sm.Matches) >= MaxMatches {
				break
			}
		}
		pos += length
	}

	return sm, nil
}

// Free implements TokenProvider.
func (p *ChromaProvider) Free() {
	p.lexer = nil
}

// mapChromaType folds chroma's fine-grained token hierarchy onto the
// renderer's token set.
func mapChromaType(t chroma.TokenType) Token {
	switch {
	case t == chroma.Error:
		return TokenError
	case t.InCategory(chroma.Comment):
		if t.InSubCategory(chroma.CommentPreproc) {
			return TokenPreprocessor
		}
		return TokenComment
	case t.InSubCategory(chroma.LiteralString):
		return TokenString
	case t.InSubCategory(chroma.LiteralNumber):
		return TokenNumber
	case t.InCategory(chroma.Literal):
		return TokenConstant
	case t == chroma.KeywordType:
		return TokenType
	case t.InCategory(chroma.Keyword):
		return TokenKeyword
	case t == chroma.NameFunction, t == chroma.NameFunctionMagic:
		return TokenFunction
	case t == chroma.NameClass, t == chroma.NameNamespace:
		return TokenType
	case t == chroma.NameBuiltin, t == chroma.NameConstant:
		return TokenConstant
	case t == chroma.NameTag, t == chroma.NameEntity:
		return TokenEntity
	case t.InCategory(chroma.Name):
		return TokenNone
	case t.InCategory(chroma.Operator):
		return TokenOperator
	default:
		return TokenNone
	}
}
