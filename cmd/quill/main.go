// Package main is the entry point for the quill editor.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/tidwall/gjson"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/renderer/backend"
	"github.com/dshills/quill/internal/renderer/highlight"
	"github.com/dshills/quill/internal/renderer/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	showVersion := flag.Bool("version", false, "print version and exit")
	optionsPath := flag.String("options", defaultOptionsPath(), "options file (JSON)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("quill %s (%s)\n", version, commit)
		return 0
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: quill [flags] <file>")
		return 2
	}
	path := flag.Arg(0)

	cfg, themePath, err := loadOptions(*optionsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	info, err := engine.NewFileInfo(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	doc := engine.NewDocument(info, cfg)
	if err := doc.LoadFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	theme := highlight.DefaultTheme()
	if themePath != "" {
		if theme, err = highlight.LoadTheme(themePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	term, err := backend.NewTerminal(theme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer term.Shutdown()

	return eventLoop(doc, term, cfg)
}

// eventLoop drives the editor until quit.
func eventLoop(doc *engine.Document, term *backend.Terminal, cfg *config.Config) int {
	cols, rows := term.Size()
	gutter := gutterWidth(cfg, doc)

	proj, err := view.New(doc, rows, cols-gutter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer proj.Close()

	provider := highlight.NewChromaProvider()
	if provider.Load(doc.FileInfo().Name) == nil {
		proj.SetTokenProvider(provider)
	}

	for {
		proj.Update()
		term.Draw(proj, gutter)

		switch ev := term.PollEvent().(type) {
		case *tcell.EventResize:
			cols, rows = ev.Size()
			proj.Resize(rows, cols-gutter)

		case *tcell.EventKey:
			if quit := handleKey(doc, ev); quit {
				return 0
			}
			gutter = gutterWidth(cfg, doc)
		}
	}
}

// handleKey dispatches one key event. It reports whether to quit.
func handleKey(doc *engine.Document, ev *tcell.EventKey) bool {
	selecting := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlS:
		doc.Save()
	case tcell.KeyCtrlZ:
		doc.Undo()
	case tcell.KeyCtrlY:
		doc.Redo()
	case tcell.KeyCtrlA:
		doc.SelectAll()
	case tcell.KeyCtrlD:
		doc.DuplicateLineOrSelection()
	case tcell.KeyUp:
		doc.MoveCursorUp(selecting)
	case tcell.KeyDown:
		doc.MoveCursorDown(selecting)
	case tcell.KeyLeft:
		doc.MoveCursorLeft(selecting)
	case tcell.KeyRight:
		doc.MoveCursorRight(selecting)
	case tcell.KeyHome:
		doc.MoveCursorLineStart(selecting)
	case tcell.KeyEnd:
		doc.MoveCursorLineEnd(selecting)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		doc.Backspace()
	case tcell.KeyDelete:
		doc.DeleteChar()
	case tcell.KeyEnter:
		doc.InsertChar('\n')
	case tcell.KeyTab:
		doc.InsertChar('\t')
	case tcell.KeyRune:
		doc.InsertChar(ev.Rune())
	}
	return false
}

// gutterWidth sizes the line number column for the current line count.
func gutterWidth(cfg *config.Config, doc *engine.Document) int {
	if !cfg.LineNumbers() {
		return 0
	}
	width := 2
	for n := doc.Buffer().Lines() + 1; n >= 10; n /= 10 {
		width++
	}
	return width
}

// defaultOptionsPath locates the user's options file.
func defaultOptionsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill", "options.json")
}

// loadOptions reads the JSON options file. A missing file yields
// defaults.
func loadOptions(path string) (*config.Config, string, error) {
	if path == "" {
		return config.Default(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), "", nil
		}
		return nil, "", fmt.Errorf("read options: %w", err)
	}

	var opts []config.Option
	json := string(data)

	if v := gjson.Get(json, "tabwidth"); v.Exists() {
		opts = append(opts, config.WithTabWidth(int(v.Int())))
	}
	if v := gjson.Get(json, "expandtab"); v.Exists() {
		opts = append(opts, config.WithExpandTab(v.Bool()))
	}
	if v := gjson.Get(json, "autoindent"); v.Exists() {
		opts = append(opts, config.WithAutoIndent(v.Bool()))
	}
	if v := gjson.Get(json, "linewrap"); v.Exists() {
		opts = append(opts, config.WithLineWrap(v.Bool()))
	}
	if v := gjson.Get(json, "linenumbers"); v.Exists() {
		opts = append(opts, config.WithLineNumbers(v.Bool()))
	}
	if v := gjson.Get(json, "colorcolumn"); v.Exists() {
		opts = append(opts, config.WithColorColumn(int(v.Int())))
	}
	if v := gjson.Get(json, "syntax"); v.Exists() {
		opts = append(opts, config.WithSyntax(v.Bool()))
	}
	if v := gjson.Get(json, "syntaxhorizon"); v.Exists() {
		opts = append(opts, config.WithSyntaxHorizon(int(v.Int())))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return nil, "", fmt.Errorf("options %s: %w", path, err)
	}

	return cfg, gjson.Get(json, "theme").String(), nil
}
