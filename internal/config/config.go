// Package config holds the editor option snapshot consumed by the engine
// and the renderer. Values are validated when set, never at use time; an
// out-of-range value is rejected with an error.
package config

import (
	"errors"
	"fmt"
)

// Errors returned when setting options.
var (
	// ErrInvalidTabWidth indicates a tab width outside the allowed range.
	ErrInvalidTabWidth = errors.New("invalid tab width")

	// ErrInvalidColorColumn indicates a negative color column.
	ErrInvalidColorColumn = errors.New("invalid color column")

	// ErrInvalidSyntaxHorizon indicates a syntax horizon outside the
	// allowed range.
	ErrInvalidSyntaxHorizon = errors.New("invalid syntax horizon")
)

// Option bounds.
const (
	TabWidthMin = 1
	TabWidthMax = 24

	SyntaxHorizonMin = 0
	SyntaxHorizonMax = 1000

	DefaultTabWidth      = 8
	DefaultSyntaxHorizon = 60
)

// Config is a snapshot of editor options. The zero value is not useful;
// call New.
type Config struct {
	tabWidth      int
	expandTab     bool
	autoIndent    bool
	lineWrap      bool
	lineNumbers   bool
	colorColumn   int
	syntaxHorizon int
	syntaxEnabled bool
}

// Option configures a Config.
type Option func(*Config) error

// New creates a Config with defaults applied, then the given options.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		tabWidth:      DefaultTabWidth,
		lineWrap:      true,
		syntaxHorizon: DefaultSyntaxHorizon,
		syntaxEnabled: true,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Default returns a Config with default values.
func Default() *Config {
	c, _ := New()
	return c
}

// WithTabWidth sets the tab width. Values outside [TabWidthMin,
// TabWidthMax] are rejected.
func WithTabWidth(width int) Option {
	return func(c *Config) error {
		return c.SetTabWidth(width)
	}
}

// WithExpandTab controls whether typed tabs insert spaces.
func WithExpandTab(expand bool) Option {
	return func(c *Config) error {
		c.expandTab = expand
		return nil
	}
}

// WithAutoIndent controls whether newlines replicate leading whitespace.
func WithAutoIndent(indent bool) Option {
	return func(c *Config) error {
		c.autoIndent = indent
		return nil
	}
}

// WithLineWrap controls whether long lines wrap or scroll horizontally.
func WithLineWrap(wrap bool) Option {
	return func(c *Config) error {
		c.lineWrap = wrap
		return nil
	}
}

// WithLineNumbers controls the line number gutter.
func WithLineNumbers(show bool) Option {
	return func(c *Config) error {
		c.lineNumbers = show
		return nil
	}
}

// WithColorColumn sets the highlighted column, 0 to disable.
func WithColorColumn(col int) Option {
	return func(c *Config) error {
		return c.SetColorColumn(col)
	}
}

// WithSyntaxHorizon sets the number of lines scanned beyond the viewport
// when computing syntax matches.
func WithSyntaxHorizon(lines int) Option {
	return func(c *Config) error {
		return c.SetSyntaxHorizon(lines)
	}
}

// WithSyntax enables or disables syntax highlighting.
func WithSyntax(enabled bool) Option {
	return func(c *Config) error {
		c.syntaxEnabled = enabled
		return nil
	}
}

// SetTabWidth validates and sets the tab width.
func (c *Config) SetTabWidth(width int) error {
	if width < TabWidthMin || width > TabWidthMax {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidTabWidth, width, TabWidthMin, TabWidthMax)
	}
	c.tabWidth = width
	return nil
}

// SetColorColumn validates and sets the color column.
func (c *Config) SetColorColumn(col int) error {
	if col < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidColorColumn, col)
	}
	c.colorColumn = col
	return nil
}

// SetSyntaxHorizon validates and sets the syntax horizon.
func (c *Config) SetSyntaxHorizon(lines int) error {
	if lines < SyntaxHorizonMin || lines > SyntaxHorizonMax {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidSyntaxHorizon, lines, SyntaxHorizonMin, SyntaxHorizonMax)
	}
	c.syntaxHorizon = lines
	return nil
}

// TabWidth returns the tab width.
func (c *Config) TabWidth() int { return c.tabWidth }

// ExpandTab reports whether typed tabs insert spaces.
func (c *Config) ExpandTab() bool { return c.expandTab }

// AutoIndent reports whether newlines replicate leading whitespace.
func (c *Config) AutoIndent() bool { return c.autoIndent }

// LineWrap reports whether long lines wrap.
func (c *Config) LineWrap() bool { return c.lineWrap }

// LineNumbers reports whether the line number gutter is drawn.
func (c *Config) LineNumbers() bool { return c.lineNumbers }

// ColorColumn returns the highlighted column, 0 when disabled.
func (c *Config) ColorColumn() int { return c.colorColumn }

// SyntaxHorizon returns the syntax scan horizon in lines.
func (c *Config) SyntaxHorizon() int { return c.syntaxHorizon }

// SyntaxEnabled reports whether syntax highlighting is on.
func (c *Config) SyntaxEnabled() bool { return c.syntaxEnabled }
