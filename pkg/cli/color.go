package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode controls coloured text output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (expected auto|always|never)", s)
	}
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

func defaultIsTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

// UseColor decides whether output to w should be coloured.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(w)
}

// Palette styles report text. The zero value renders plain text.
type Palette struct {
	enabled bool
	pass    lipgloss.Style
	fail    lipgloss.Style
	detail  lipgloss.Style
	dim     lipgloss.Style
}

// NewPalette builds a palette for w according to mode.
func NewPalette(w io.Writer, mode ColorMode) Palette {
	if !UseColor(mode, w) {
		return Palette{}
	}

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.ANSI256)

	return Palette{
		enabled: true,
		pass:    renderer.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		fail:    renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		detail:  renderer.NewStyle().Foreground(lipgloss.Color("220")),
		dim:     renderer.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// Enabled reports whether the palette emits colour.
func (p Palette) Enabled() bool {
	return p.enabled
}

// Pass styles success lines.
func (p Palette) Pass(text string) string {
	return p.render(p.pass, text)
}

// Fail styles failure headlines.
func (p Palette) Fail(text string) string {
	return p.render(p.fail, text)
}

// Detail styles individual violation lines.
func (p Palette) Detail(text string) string {
	return p.render(p.detail, text)
}

// Dim styles progress and secondary text.
func (p Palette) Dim(text string) string {
	return p.render(p.dim, text)
}

func (p Palette) render(style lipgloss.Style, text string) string {
	if !p.enabled {
		return text
	}
	return style.Render(text)
}
