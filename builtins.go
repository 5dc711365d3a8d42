package console

import (
	"fmt"
	"io"
	"strings"
)

func (c *Console) registerBuiltins() {
	c.registry.RegisterCommand(&helpCommand{})
	c.registry.RegisterCommand(&exitCommand{})
}

// help command ----------------------------------------------------------------

type helpCommand struct{}

func (h *helpCommand) Spec() CommandSpec {
	return CommandSpec{
		Name:    "help",
		Aliases: []string{"?"},
		Summary: "Show available commands or the usage of one command",
		Args: []ArgSpec{
			{Name: "command", Description: "command to describe"},
		},
	}
}

func (h *helpCommand) Execute(rt CommandRuntime, input CommandInput, out io.Writer) error {
	registry := rt.Registry()
	if name := input.Args.String("command"); name != "" {
		entry, ok := registry.Resolve(name)
		if !ok {
			return &UnrecognizedCommandError{Name: name}
		}
		return writeCommandHelp(out, entry.Spec)
	}

	specs := registry.Commands(false)
	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, []string{spec.Name, spec.Summary})
	}
	fmt.Fprintln(out, "Available commands:")
	return writeTable(out, []string{"Command", "Summary"}, rows)
}

func writeCommandHelp(out io.Writer, spec CommandSpec) error {
	usage := spec.Usage
	if usage == "" {
		usage = FormatUsage(spec)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s\n", usage)
	if spec.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", spec.Description)
	} else if spec.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", spec.Summary)
	}
	if len(spec.Args) > 0 {
		b.WriteString("\nArguments:\n")
		for _, arg := range spec.Args {
			fmt.Fprintf(&b, "  %-20s %s\n", arg.Name, arg.Description)
		}
	}
	var flags []FlagSpec
	for _, flag := range spec.Flags {
		if !flag.Hidden {
			flags = append(flags, flag)
		}
	}
	if len(flags) > 0 {
		b.WriteString("\nOptions:\n")
		for _, flag := range flags {
			forms := flagDisplay(flag)
			if flag.Name != "" && flag.Shorthand != "" {
				forms = "-" + flag.Shorthand + ", " + forms
			}
			fmt.Fprintf(&b, "  %-20s %s\n", forms, flag.Description)
		}
	}
	for _, ex := range spec.Examples {
		fmt.Fprintf(&b, "\nExample: %s\n  %s\n", ex.Description, ex.Command)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

// exit command ----------------------------------------------------------------

type exitCommand struct{}

func (e *exitCommand) Spec() CommandSpec {
	return CommandSpec{
		Name:    "exit",
		Aliases: []string{"quit"},
		Summary: "Leave the console",
	}
}

func (e *exitCommand) Execute(CommandRuntime, CommandInput, io.Writer) error {
	return ErrExit
}
