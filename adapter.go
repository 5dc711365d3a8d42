package console

import "io"

// CommandFunc is the signature of a command body used with NewFuncCommand.
type CommandFunc func(rt CommandRuntime, input CommandInput, out io.Writer) error

// FuncCommand adapts a spec and a plain function into a Command.
type FuncCommand struct {
	spec CommandSpec
	fn   CommandFunc
}

// NewFuncCommand creates a Command from a spec and a function.
func NewFuncCommand(spec CommandSpec, fn CommandFunc) *FuncCommand {
	return &FuncCommand{spec: spec, fn: fn}
}

// Spec returns the wrapped spec.
func (c *FuncCommand) Spec() CommandSpec { return c.spec }

// Execute delegates to the wrapped function.
func (c *FuncCommand) Execute(rt CommandRuntime, input CommandInput, out io.Writer) error {
	if c.fn == nil {
		return nil
	}
	return c.fn(rt, input, out)
}
