package highlight

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/quill/internal/renderer/core"
)

// Theme maps tokens and view furniture to styles.
type Theme struct {
	Name string

	Foreground core.Color
	Background core.Color

	// ColorColumn and SearchMatch are backgrounds blended over the cell's
	// own background. Selection is loaded from theme files but is not used
	// when drawing: the terminal backend shows selected cells in reverse
	// video.
	Selection   core.Color
	ColorColumn core.Color
	LineNumber  core.Color
	SearchMatch core.Color

	tokens map[Token]core.Style
}

// DefaultTheme returns a restrained true-color theme over the terminal's
// default foreground and background.
func DefaultTheme() *Theme {
	t := &Theme{
		Name:        "default",
		Foreground:  core.ColorDefault,
		Background:  core.ColorDefault,
		Selection:   core.ColorFromRGB(60, 60, 90),
		ColorColumn: core.ColorFromRGB(60, 40, 40),
		LineNumber:  core.ColorFromRGB(110, 110, 110),
		SearchMatch: core.ColorFromRGB(90, 80, 20),
		tokens:      make(map[Token]core.Style),
	}

	set := func(tok Token, hex string, bold bool) {
		c, _ := core.ColorFromHex(hex)
		style := core.Style{Foreground: c, Background: core.ColorDefault}
		if bold {
			style = style.Bold()
		}
		t.tokens[tok] = style
	}

	set(TokenComment, "#6a9955", false)
	set(TokenConstant, "#4fc1ff", false)
	set(TokenEntity, "#dcdcaa", false)
	set(TokenError, "#f44747", true)
	set(TokenFunction, "#dcdcaa", false)
	set(TokenKeyword, "#569cd6", true)
	set(TokenNumber, "#b5cea8", false)
	set(TokenOperator, "#d4d4d4", false)
	set(TokenPreprocessor, "#c586c0", false)
	set(TokenString, "#ce9178", false)
	set(TokenType, "#4ec9b0", false)
	set(TokenVariable, "#9cdcfe", false)

	return t
}

// StyleFor returns the style for a token, falling back to the theme
// foreground.
func (t *Theme) StyleFor(tok Token) core.Style {
	if style, ok := t.tokens[tok]; ok {
		return style
	}
	return core.Style{Foreground: t.Foreground, Background: t.Background}
}

// SetStyle overrides the style for a token.
func (t *Theme) SetStyle(tok Token, style core.Style) {
	t.tokens[tok] = style
}

// themeFile is the on-disk YAML layout.
type themeFile struct {
	Name   string `yaml:"name"`
	Colors struct {
		Foreground  string `yaml:"foreground"`
		Background  string `yaml:"background"`
		Selection   string `yaml:"selection"`
		ColorColumn string `yaml:"colorcolumn"`
		LineNumber  string `yaml:"linenumber"`
		SearchMatch string `yaml:"searchmatch"`
	} `yaml:"colors"`
	Tokens map[string]struct {
		Color string `yaml:"color"`
		Bold  bool   `yaml:"bold"`
		Ital  bool   `yaml:"italic"`
	} `yaml:"tokens"`
}

// LoadTheme reads a YAML theme file, layering it over the default
// theme so partial files are valid.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}

	var tf themeFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}

	t := DefaultTheme()
	if tf.Name != "" {
		t.Name = tf.Name
	}

	assign := func(dst *core.Color, hex string) error {
		if hex == "" {
			return nil
		}
		c, err := core.ColorFromHex(hex)
		if err != nil {
			return err
		}
		*dst = c
		return nil
	}

	if err := assign(&t.Foreground, tf.Colors.Foreground); err != nil {
		return nil, err
	}
	if err := assign(&t.Background, tf.Colors.Background); err != nil {
		return nil, err
	}
	if err := assign(&t.Selection, tf.Colors.Selection); err != nil {
		return nil, err
	}
	if err := assign(&t.ColorColumn, tf.Colors.ColorColumn); err != nil {
		return nil, err
	}
	if err := assign(&t.LineNumber, tf.Colors.LineNumber); err != nil {
		return nil, err
	}
	if err := assign(&t.SearchMatch, tf.Colors.SearchMatch); err != nil {
		return nil, err
	}

	for name, spec := range tf.Tokens {
		tok, ok := tokenByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown token %q in theme %s", name, path)
		}
		c, err := core.ColorFromHex(spec.Color)
		if err != nil {
			return nil, err
		}
		style := core.Style{Foreground: c, Background: core.ColorDefault}
		if spec.Bold {
			style = style.Bold()
		}
		if spec.Ital {
			style.Attributes |= core.AttrItalic
		}
		t.tokens[tok] = style
	}

	return t, nil
}

// tokenByName resolves a theme key to its token.
func tokenByName(name string) (Token, bool) {
	for tok := TokenNone; tok <= TokenWhitespace; tok++ {
		if tok.String() == name {
			return tok, true
		}
	}
	return TokenNone, false
}
