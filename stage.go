package console

import "strings"

// DefaultExternalMarker prefixes the first word of a stage that should run
// an external program instead of a registered command.
const DefaultExternalMarker = "!"

// Stage is one resolved element of a pipeline.
type Stage interface {
	// Name is the command or program name used in error reports.
	Name() string
}

// BuiltinStage is a registry command whose arguments were validated.
type BuiltinStage struct {
	Entry CommandEntry
	Raw   []string
	Args  ValueSet
	Flags ValueSet
}

// Name returns the command name.
func (s *BuiltinStage) Name() string { return s.Entry.Spec.Name }

// ExternalStage is an out-of-process program and its literal argv tail.
type ExternalStage struct {
	Program string
	Args    []string
}

// Name returns the program name.
func (s *ExternalStage) Name() string { return s.Program }

// Resolve splits line into stages and resolves every one of them. Either
// every stage resolves or the first failure is returned and nothing runs.
func (c *Console) Resolve(line string) ([]Stage, error) {
	raws := SplitPipeline(line)
	stages := make([]Stage, 0, len(raws))
	for _, raw := range raws {
		stage, err := c.resolveStage(raw)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func (c *Console) resolveStage(raw string) (Stage, error) {
	words, err := SplitWords(raw)
	if err != nil {
		return nil, &LexError{Stage: strings.TrimSpace(raw), Err: err}
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommandLine
	}

	if c.marker != "" && strings.HasPrefix(words[0], c.marker) {
		program := strings.TrimPrefix(words[0], c.marker)
		rest := words[1:]
		if program == "" {
			if len(rest) == 0 {
				return nil, ErrEmptyCommandLine
			}
			program, rest = rest[0], rest[1:]
		}
		return &ExternalStage{Program: program, Args: rest}, nil
	}

	entry, ok := c.registry.Resolve(words[0])
	if !ok {
		return nil, &UnrecognizedCommandError{Name: words[0]}
	}
	args, flags, err := c.parser.Parse(words[1:], entry.Spec)
	if err != nil {
		return nil, &ArgumentError{Command: words[0], Err: err}
	}
	return &BuiltinStage{Entry: entry, Raw: words, Args: args, Flags: flags}, nil
}
