package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// LineReader reads one line of user input. It returns io.EOF once input is
// exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// maxLineSize bounds one piped input line, large enough for pasted command
// output.
const maxLineSize = 16 * 1024 * 1024

// ScannerReader reads lines from a non-interactive input such as a pipe.
type ScannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader creates a ScannerReader reading from in and echoing the
// prompt to out.
func NewScannerReader(in io.Reader, out io.Writer) *ScannerReader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ScannerReader{
		scanner: scanner,
		out:     out,
	}
}

func (s *ScannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

// LinerReader provides line editing and up-arrow history on a terminal.
type LinerReader struct {
	state *liner.State
}

// NewLinerReader puts the terminal under liner's control and preloads the
// given history, oldest first.
func NewLinerReader(history []string) *LinerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	for _, line := range history {
		state.AppendHistory(line)
	}
	return &LinerReader{state: state}
}

// ReadLine returns io.EOF on Ctrl+D. Ctrl+C discards the current line and
// returns an empty one.
func (l *LinerReader) ReadLine(prompt string) (string, error) {
	line, err := l.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(line) != "" {
		l.state.AppendHistory(line)
	}
	return line, nil
}

// Close restores the terminal.
func (l *LinerReader) Close() error {
	return l.state.Close()
}
