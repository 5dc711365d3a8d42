package console

import (
	"errors"
	"fmt"
)

// Sentinel errors for the console error taxonomy. Every typed error below
// matches exactly one of these through errors.Is.
var (
	// ErrLex indicates a pipeline stage could not be split into words.
	ErrLex = errors.New("lexing failed")

	// ErrEmptyCommandLine indicates a pipeline stage contained no words.
	ErrEmptyCommandLine = errors.New("empty command line")

	// ErrUnrecognizedCommand indicates the first word of a stage is not registered.
	ErrUnrecognizedCommand = errors.New("unrecognized command")

	// ErrInvalidArguments indicates a command rejected its arguments.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrCommandFailed indicates a resolved stage failed while executing.
	ErrCommandFailed = errors.New("command failed")

	// ErrBrokenPipe indicates a stage failed in the middle of a multi-stage pipeline.
	ErrBrokenPipe = errors.New("broken pipe")

	// ErrInput indicates the line reader failed for a reason other than end of input.
	ErrInput = errors.New("input error")

	// ErrOutput indicates the primary output stream could not be written or flushed.
	ErrOutput = errors.New("output error")

	// ErrExit is returned by a builtin to end the read loop cleanly.
	ErrExit = errors.New("exit")
)

// LexError reports a stage with unbalanced quoting or a dangling escape.
type LexError struct {
	Stage string
	Err   error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("error splitting %q: %v", e.Stage, e.Err)
}

func (e *LexError) Unwrap() error { return e.Err }

func (e *LexError) Is(target error) bool { return target == ErrLex }

// UnrecognizedCommandError names a command missing from the registry.
type UnrecognizedCommandError struct {
	Name string
}

func (e *UnrecognizedCommandError) Error() string {
	return fmt.Sprintf("unrecognized command: %s", e.Name)
}

func (e *UnrecognizedCommandError) Is(target error) bool {
	return target == ErrUnrecognizedCommand
}

// ArgumentError carries a validation failure from the argument parser. Its
// message is the parser's own text, prefixed with the command name.
type ArgumentError struct {
	Command string
	Err     error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArguments }

// CommandError reports a builtin or external stage that failed after it was resolved.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("error executing %s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// BrokenPipeError wraps a CommandError raised by stage Index of a pipeline
// with more than one stage.
type BrokenPipeError struct {
	Index int
	Cause *CommandError
}

func (e *BrokenPipeError) Error() string {
	return fmt.Sprintf("broken pipe at stage %d: %v", e.Index+1, e.Cause)
}

func (e *BrokenPipeError) Unwrap() error { return e.Cause }

func (e *BrokenPipeError) Is(target error) bool { return target == ErrBrokenPipe }

// InputError wraps a line reader failure. It ends the read loop.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return fmt.Sprintf("error reading input: %v", e.Err) }

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrInput }

// OutputError wraps a write or flush failure on the primary output. It ends the read loop.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string { return fmt.Sprintf("error writing output: %v", e.Err) }

func (e *OutputError) Unwrap() error { return e.Err }

func (e *OutputError) Is(target error) bool { return target == ErrOutput }

// IsFatal reports whether err must terminate the read loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInput) || errors.Is(err, ErrOutput)
}
