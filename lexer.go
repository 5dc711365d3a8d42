package console

import (
	"errors"
	"strings"

	"github.com/google/shlex"
)

var (
	ErrUnclosedQuote      = errors.New("unclosed quote")
	ErrUnescapedCharacter = errors.New("unescaped character")
)

// SplitWords splits one pipeline stage into words using shell quoting rules:
// whitespace separates words, single quotes preserve everything literally,
// a backslash escapes the next character outside single quotes, and a word
// starting with '#' begins a comment that runs to the end of the stage.
// Empty quoted words are kept.
func SplitWords(stage string) ([]string, error) {
	words, err := shlex.Split(stage)
	if err != nil {
		return nil, lexFailure(err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// lexFailure maps shlex's unexported error texts onto the package sentinels.
func lexFailure(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "closing quote"):
		return ErrUnclosedQuote
	case strings.Contains(msg, "escape character"):
		return ErrUnescapedCharacter
	default:
		return err
	}
}
