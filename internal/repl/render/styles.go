// Package render provides turn rendering for the REPL.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/atinylittleshell/shcopilot/internal/ai"
)

// ANSI colors used across the REPL output
const (
	ColorCyan   = lipgloss.Color("12") // AI header
	ColorYellow = lipgloss.Color("11") // Human header, welcome title
	ColorRed    = lipgloss.Color("9")  // Error turns
	ColorGray   = lipgloss.Color("8")  // Dim/secondary (system messages, tips)
)

// Symbols
const (
	SymbolError         = "✗"
	SymbolSystemMessage = "→"
)

// Styles groups the lipgloss styles bound to one output.
type Styles struct {
	AIHeader      lipgloss.Style
	HumanHeader   lipgloss.Style
	Error         lipgloss.Style
	SystemMessage lipgloss.Style
	Dim           lipgloss.Style
	Title         lipgloss.Style
	Value         lipgloss.Style
}

// NewStyles creates the styles for the given lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		AIHeader:      r.NewStyle().Foreground(ColorCyan).Bold(true),
		HumanHeader:   r.NewStyle().Foreground(ColorYellow),
		Error:         r.NewStyle().Foreground(ColorRed),
		SystemMessage: r.NewStyle().Foreground(ColorGray),
		Dim:           r.NewStyle().Foreground(ColorGray).Italic(true),
		Title:         r.NewStyle().Foreground(ColorYellow).Bold(true),
		Value:         r.NewStyle().Foreground(ColorYellow),
	}
}

// Header returns the styled "<author> > " prefix of a turn.
func (s Styles) Header(author ai.Author) string {
	style := s.AIHeader
	if author == ai.Human {
		style = s.HumanHeader
	}
	return style.Render(string(author)+" >") + " "
}
