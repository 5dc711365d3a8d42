package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	console "github.com/network-plane/planeconsole"
)

func registerExamples(c *console.Console) {
	c.RegisterCommand(console.NewFuncCommand(console.CommandSpec{
		Name:    "echo",
		Summary: "Print arguments followed by a newline",
		Args:    []console.ArgSpec{{Name: "words", Repeatable: true}},
		Flags: []console.FlagSpec{
			{Name: "no-newline", Shorthand: "n", Type: console.ArgTypeBool, Description: "omit the trailing newline"},
		},
	}, echo))

	c.RegisterCommand(console.NewFuncCommand(console.CommandSpec{
		Name:    "upper",
		Summary: "Uppercase the input",
	}, func(_ console.CommandRuntime, in console.CommandInput, out io.Writer) error {
		_, err := io.WriteString(out, strings.ToUpper(in.Stdin))
		return err
	}))

	c.RegisterCommand(console.NewFuncCommand(console.CommandSpec{
		Name:    "count",
		Summary: "Count lines, words or bytes of the input",
		Flags: []console.FlagSpec{
			{Name: "mode", Shorthand: "m", Type: console.ArgTypeEnum, EnumValues: []string{"lines", "words", "bytes"}, Default: "lines"},
		},
	}, count))

	c.RegisterCommand(console.NewFuncCommand(console.CommandSpec{
		Name:    "buzz",
		Summary: "Queue a message shown before the next prompt",
		Args:    []console.ArgSpec{{Name: "message", Required: true}},
		Flags: []console.FlagSpec{
			{Name: "delay", Shorthand: "d", Type: console.ArgTypeDuration, Description: "deliver the message after a delay"},
		},
	}, buzz))
}

func echo(_ console.CommandRuntime, in console.CommandInput, out io.Writer) error {
	text := strings.Join(in.Args.Strings("words"), " ")
	if !in.Flags.Bool("no-newline") {
		text += "\n"
	}
	_, err := io.WriteString(out, text)
	return err
}

func count(_ console.CommandRuntime, in console.CommandInput, out io.Writer) error {
	var n int
	switch in.Flags.String("mode") {
	case "words":
		n = len(strings.Fields(in.Stdin))
	case "bytes":
		n = len(in.Stdin)
	default:
		n = strings.Count(in.Stdin, "\n")
		if in.Stdin != "" && !strings.HasSuffix(in.Stdin, "\n") {
			n++
		}
	}
	_, err := fmt.Fprintln(out, n)
	return err
}

func buzz(rt console.CommandRuntime, in console.CommandInput, out io.Writer) error {
	msg := in.Args.String("message")
	delay := in.Flags.Duration("delay")
	if delay <= 0 {
		rt.State().AddAsyncMessage(msg)
	} else {
		state := rt.State()
		time.AfterFunc(delay, func() { state.AddAsyncMessage(msg) })
	}
	_, err := fmt.Fprintln(out, "Bzz bzz...")
	return err
}

func sum(_ console.CommandRuntime, in console.CommandInput, out io.Writer) error {
	var total float64
	for _, field := range strings.Fields(in.Stdin) {
		n, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", field)
		}
		total += n
	}
	total *= in.Flags.Float("scale")

	precision := -1
	if in.Flags.Has("precision") {
		precision = in.Flags.Int("precision")
	}
	_, err := fmt.Fprintln(out, strconv.FormatFloat(total, 'f', precision, 64))
	return err
}

func label(_ console.CommandRuntime, in console.CommandInput, out io.Writer) error {
	var labels map[string]string
	if err := in.Args.DecodeJSON("labels", &labels); err != nil {
		return fmt.Errorf("labels must be a JSON object of strings: %w", err)
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+labels[k])
	}
	prefix := strings.Join(pairs, " ")

	var b strings.Builder
	for line := range strings.Lines(in.Stdin) {
		b.WriteString(prefix)
		b.WriteString(" ")
		b.WriteString(line)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
