package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type fdHolder interface {
	Fd() uintptr
}

// isTerminal reports whether v is an *os.File (or similar) backed by a TTY.
func isTerminal(v any) bool {
	f, ok := v.(fdHolder)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// newRenderer returns a renderer writing true color to out, or nil when
// color is off.
func newRenderer(out io.Writer, color bool) *lipgloss.Renderer {
	if !color {
		return nil
	}

	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.TrueColor)

	return r
}

// painter returns a func that renders text in the color of the named
// priority level. It is the identity when color is off or the level has no
// color.
func (a *app) painter(name string) func(string) string {
	identity := func(s string) string { return s }

	if a.renderer == nil {
		return identity
	}

	level, ok := a.reg.Lookup(name)
	if !ok {
		return identity
	}

	color := strings.TrimSpace(level.Color)
	if color == "" {
		return identity
	}

	style := a.renderer.NewStyle().Foreground(lipgloss.Color(color))

	return func(s string) string { return style.Render(s) }
}
