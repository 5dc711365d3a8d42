package console

import (
	"context"
	"io"
	"log/slog"
)

// Command is the primary interface implemented by concrete builtin commands.
//
// Execute receives the validated arguments and the upstream stage output in
// input.Stdin, and writes its own output to out. Whatever it writes becomes
// the next stage's input verbatim, so commands control their own line
// terminators. A returned error aborts the rest of the pipeline.
type Command interface {
	Spec() CommandSpec
	Execute(rt CommandRuntime, input CommandInput, out io.Writer) error
}

// CommandSpec describes the command name and its argument schema.
type CommandSpec struct {
	Name        string
	Aliases     []string
	Summary     string
	Description string
	Examples    []Example
	Args        []ArgSpec
	Flags       []FlagSpec
	Hidden      bool
	Usage       string
}

// Example documents an example invocation of a command.
type Example struct {
	Description string
	Command     string
}

// ArgType enumerates supported argument data types.
type ArgType string

const (
	ArgTypeString   ArgType = "string"
	ArgTypeInt      ArgType = "int"
	ArgTypeFloat    ArgType = "float"
	ArgTypeBool     ArgType = "bool"
	ArgTypeDuration ArgType = "duration"
	ArgTypeEnum     ArgType = "enum"
	ArgTypeJSON     ArgType = "json"
)

// ArgSpec defines a positional argument slot. Name doubles as the
// metavariable shown by completion hints. Only the last slot may be
// Repeatable; it collects every remaining positional word.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Repeatable  bool
	Description string
	Default     any
	EnumValues  []string
}

// FlagSpec defines an option flag. Name is the long form (used as --Name)
// and Shorthand the single-character short form (used as -Shorthand). Either
// may be empty but not both.
type FlagSpec struct {
	Name        string
	Shorthand   string
	Type        ArgType
	Required    bool
	Description string
	Default     any
	EnumValues  []string
	Hidden      bool
}

// key is the name the flag's value is bound under in a ValueSet.
func (f FlagSpec) key() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Shorthand
}

// CommandInput contains parsed arguments, flags, and the upstream buffer.
type CommandInput struct {
	Context context.Context
	Raw     []string
	Args    ValueSet
	Flags   ValueSet
	Stdin   string
}

// CommandRuntime presents console services to commands.
type CommandRuntime interface {
	State() *State
	Logger() *slog.Logger
	Registry() *CommandRegistry
}
