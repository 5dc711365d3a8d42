package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineReader supplies one logical line per call. It returns io.EOF (possibly
// wrapped) once input is exhausted; any other error ends the console.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// ReadlineReader reads from an interactive terminal with line editing and
// tab completion.
type ReadlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader creates a terminal reader wired to completer.
func NewReadlineReader(completer readline.AutoCompleter) (*ReadlineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise readline: %w", err)
	}
	return &ReadlineReader{rl: rl}, nil
}

// ReadLine prompts and reads one line. Ctrl-C ends input like Ctrl-D.
func (r *ReadlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

// Close restores the terminal.
func (r *ReadlineReader) Close() error { return r.rl.Close() }

// ScannerReader reads newline-terminated lines from any reader, writing the
// prompt to an optional writer. It serves scripted and piped input.
type ScannerReader struct {
	in     *bufio.Reader
	prompt io.Writer
}

// NewScannerReader creates a reader over in. prompt may be nil.
func NewScannerReader(in io.Reader, prompt io.Writer) *ScannerReader {
	return &ScannerReader{in: bufio.NewReader(in), prompt: prompt}
}

// ReadLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF.
func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	if r.prompt != nil && prompt != "" {
		if _, err := io.WriteString(r.prompt, prompt); err != nil {
			return "", err
		}
	}
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op.
func (r *ScannerReader) Close() error { return nil }

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewLineReader picks a readline reader when stdin is a terminal and a
// prompt-less line reader otherwise. mode is "auto", "always" or "never".
func NewLineReader(mode string, completer readline.AutoCompleter, stdin *os.File) (LineReader, error) {
	interactive := IsTerminal(stdin)
	switch mode {
	case "always":
		interactive = true
	case "never":
		interactive = false
	}
	if interactive {
		return NewReadlineReader(completer)
	}
	return NewScannerReader(stdin, nil), nil
}
