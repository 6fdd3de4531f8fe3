package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/atinylittleshell/shcopilot/internal/ai"
)

// Renderer writes conversation turns to the terminal.
type Renderer struct {
	writer   io.Writer
	lipgloss *lipgloss.Renderer
	styles   Styles
	markdown *glamour.TermRenderer
}

// Option configures a Renderer.
type Option func(*Renderer) error

// WithMarkdown renders blocking AI responses as markdown. style is a glamour
// standard style name, or "auto" to follow the terminal background.
func WithMarkdown(style string, wordWrap int) Option {
	return func(r *Renderer) error {
		styleOption := glamour.WithStandardStyle(style)
		if style == "auto" {
			styleOption = glamour.WithAutoStyle()
		}
		md, err := glamour.NewTermRenderer(styleOption, glamour.WithWordWrap(wordWrap))
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		r.markdown = md
		return nil
	}
}

// Color modes accepted by WithColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// WithColor overrides terminal color detection.
func WithColor(mode string) Option {
	return func(r *Renderer) error {
		switch mode {
		case "", ColorAuto:
		case ColorAlways:
			r.lipgloss.SetColorProfile(termenv.ANSI256)
		case ColorNever:
			r.lipgloss.SetColorProfile(termenv.Ascii)
		default:
			return fmt.Errorf("unknown color mode %q, expected one of auto, always, never", mode)
		}
		return nil
	}
}

// New creates a Renderer writing to w. Unless overridden with WithColor,
// colors are enabled only when w is a terminal.
func New(w io.Writer, opts ...Option) (*Renderer, error) {
	lg := lipgloss.NewRenderer(w)
	r := &Renderer{
		writer:   w,
		lipgloss: lg,
		styles:   NewStyles(lg),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Styles returns the styles bound to the renderer's output.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Message prints a complete turn.
func (r *Renderer) Message(msg ai.Message) {
	if r.markdown != nil && msg.Author == ai.AI {
		if rendered, err := r.markdown.Render(msg.Content); err == nil {
			fmt.Fprintln(r.writer, strings.TrimRight(r.styles.Header(msg.Author), " "))
			fmt.Fprint(r.writer, rendered)
			return
		}
	}
	fmt.Fprintln(r.writer, r.styles.Header(msg.Author)+msg.Content)
}

// StreamHeader prints the author prefix that opens a streamed turn.
func (r *Renderer) StreamHeader(author ai.Author) {
	r.StreamChunk(ai.Header(author))
}

// StreamChunk prints one streamed chunk as soon as it arrives.
func (r *Renderer) StreamChunk(chunk ai.ChunkedMessage) {
	if chunk.Author != nil {
		fmt.Fprint(r.writer, r.styles.Header(*chunk.Author)+chunk.Text())
	} else {
		fmt.Fprint(r.writer, chunk.String())
	}
	r.flush()
}

// StreamEnd terminates a streamed turn.
func (r *Renderer) StreamEnd() {
	fmt.Fprintln(r.writer)
	r.flush()
}

// Error prints a failed turn without ending the session.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.writer, r.styles.Error.Render(SymbolError+" error > "+err.Error()))
}

// System prints a status message from the REPL itself.
func (r *Renderer) System(message string) {
	fmt.Fprintln(r.writer, r.styles.SystemMessage.Render(SymbolSystemMessage+" "+message))
}

// Println prints unstyled text.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.writer, a...)
}

type flusher interface {
	Flush() error
}

// flush pushes buffered output to the terminal. Writes to *os.File are
// unbuffered already.
func (r *Renderer) flush() {
	if f, ok := r.writer.(flusher); ok {
		_ = f.Flush()
	}
}
