package console

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chzyer/readline"
)

// Candidate is one completion offered at a cursor position. Display is what
// the user sees; Replacement is the text substituted from the replacement
// start up to the cursor. An empty Replacement marks an informational hint.
type Candidate struct {
	Display     string
	Replacement string
}

// Completer offers completions for command names and option flags, driven
// by the registry and each command's argument schema.
type Completer struct {
	registry *CommandRegistry
}

// NewCompleter creates a completer over registry.
func NewCompleter(registry *CommandRegistry) *Completer {
	return &Completer{registry: registry}
}

var _ readline.AutoCompleter = (*Completer)(nil)

// Complete returns the byte offset where replacement starts and the
// candidates for the text of line before the byte offset pos. Only the
// pipeline stage under the cursor is considered.
func (c *Completer) Complete(line string, pos int) (int, []Candidate) {
	pos = max(0, min(pos, len(line)))

	base := 0
	if offsets := pipeOffsets(line[:pos]); len(offsets) > 0 {
		base = offsets[len(offsets)-1] + 1
	}
	segment := line[base:pos]

	words, err := SplitWords(segment)
	if err != nil {
		return pos, nil
	}

	trimmed := strings.TrimLeftFunc(segment, unicode.IsSpace)
	if len(words) == 0 || (len(words) == 1 && !strings.ContainsFunc(trimmed, unicode.IsSpace)) {
		prefix := ""
		if len(words) == 1 {
			prefix = words[0]
		}
		return pos - len(trimmed), c.completeNames(prefix)
	}

	entry, ok := c.registry.Resolve(words[0])
	if !ok {
		return pos, nil
	}

	if last, _ := utf8.DecodeLastRuneInString(segment); unicode.IsSpace(last) {
		return pos, positionalHints(entry.Spec)
	}

	word := words[len(words)-1]
	switch {
	case strings.HasPrefix(word, "--"):
		return pos - len(word), completeLong(entry.Spec, word)
	case strings.HasPrefix(word, "-"):
		return pos - len(word), completeShort(entry.Spec, word)
	default:
		return pos, nil
	}
}

func (c *Completer) completeNames(prefix string) []Candidate {
	var candidates []Candidate
	for _, name := range c.registry.Names() {
		if strings.HasPrefix(name, prefix) {
			candidates = append(candidates, Candidate{Display: name, Replacement: name})
		}
	}
	return candidates
}

// positionalHints lists positional metavariables; they are never substituted.
func positionalHints(spec CommandSpec) []Candidate {
	candidates := make([]Candidate, 0, len(spec.Args))
	for _, arg := range spec.Args {
		candidates = append(candidates, Candidate{Display: arg.Name})
	}
	return candidates
}

func completeLong(spec CommandSpec, word string) []Candidate {
	var candidates []Candidate
	for _, flag := range spec.Flags {
		if flag.Hidden || flag.Name == "" {
			continue
		}
		replacement := "--" + flag.Name
		if strings.HasPrefix(replacement, word) {
			candidates = append(candidates, Candidate{
				Display:     "[" + replacement + "]",
				Replacement: replacement,
			})
		}
	}
	return candidates
}

func completeShort(spec CommandSpec, word string) []Candidate {
	var candidates []Candidate
	for _, flag := range spec.Flags {
		if flag.Hidden {
			continue
		}
		var display, replacement string
		switch {
		case flag.Name != "" && flag.Shorthand != "":
			display = fmt.Sprintf("[-%s, --%s]", flag.Shorthand, flag.Name)
			replacement = "-" + flag.Shorthand + " "
		case flag.Name != "":
			display = "[--" + flag.Name + "]"
			replacement = "--" + flag.Name + " "
		case flag.Shorthand != "":
			display = "[-" + flag.Shorthand + "]"
			replacement = "-" + flag.Shorthand + " "
		default:
			// RegisterCommand rejects such flags.
			panic(fmt.Sprintf("command %s: flag without long or short form", spec.Name))
		}
		if strings.HasPrefix(replacement, word) {
			candidates = append(candidates, Candidate{Display: display, Replacement: replacement})
		}
	}
	return candidates
}

// Do implements readline.AutoCompleter. readline works with suffixes of the
// text being completed, so hints and candidates that do not extend the
// typed text are dropped.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	pos = max(0, min(pos, len(line)))
	text := string(line)
	bytePos := len(string(line[:pos]))

	start, candidates := c.Complete(text, bytePos)
	typed := text[start:bytePos]

	var suffixes [][]rune
	for _, cand := range candidates {
		if cand.Replacement == "" || !strings.HasPrefix(cand.Replacement, typed) {
			continue
		}
		suffixes = append(suffixes, []rune(cand.Replacement[len(typed):]))
	}
	return suffixes, utf8.RuneCountInString(typed)
}
