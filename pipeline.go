package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Middleware wraps builtin command execution with cross-cutting logic.
type Middleware func(rt CommandRuntime, input CommandInput, out io.Writer, entry CommandEntry, next NextFunc) error

// NextFunc represents the next handler in the middleware chain.
type NextFunc func(rt CommandRuntime, input CommandInput, out io.Writer) error

// execute runs resolved stages in order. Each stage gets a fresh buffer and
// the previous stage's output as input; the last buffer is the result. A
// failing stage discards everything produced so far.
func (c *Console) execute(ctx context.Context, stages []Stage, logger *slog.Logger) (string, error) {
	var previous string
	for i, stage := range stages {
		var out bytes.Buffer
		start := time.Now()
		err := c.runStage(ctx, stage, previous, &out, logger)
		if err != nil {
			if errors.Is(err, ErrExit) {
				return "", err
			}
			cmdErr := &CommandError{Name: stage.Name(), Err: err}
			if len(stages) > 1 {
				return "", &BrokenPipeError{Index: i, Cause: cmdErr}
			}
			return "", cmdErr
		}
		logger.Debug("stage finished", "index", i, "name", stage.Name(),
			"bytes", out.Len(), "duration", time.Since(start))
		previous = out.String()
	}
	return previous, nil
}

func (c *Console) runStage(ctx context.Context, stage Stage, input string, out *bytes.Buffer, logger *slog.Logger) error {
	switch s := stage.(type) {
	case *BuiltinStage:
		rt := &executionRuntime{console: c, logger: logger}
		in := CommandInput{
			Context: ctx,
			Raw:     s.Raw,
			Args:    s.Args,
			Flags:   s.Flags,
			Stdin:   input,
		}
		return c.handler(s.Entry)(rt, in, out)
	case *ExternalStage:
		result, err := c.runner.Run(ctx, s.Program, s.Args, input)
		if err != nil {
			return err
		}
		out.WriteString(result.Stdout)
		return nil
	default:
		return fmt.Errorf("unsupported stage type %T", stage)
	}
}

func (c *Console) handler(entry CommandEntry) NextFunc {
	h := func(rt CommandRuntime, input CommandInput, out io.Writer) error {
		return entry.Command.Execute(rt, input, out)
	}

	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i]
		next := h
		h = func(rt CommandRuntime, input CommandInput, out io.Writer) error {
			return mw(rt, input, out, entry, next)
		}
	}

	return h
}

// executionRuntime implements CommandRuntime for one pipeline run.
type executionRuntime struct {
	console *Console
	logger  *slog.Logger
}

func (r *executionRuntime) State() *State { return r.console.state }

func (r *executionRuntime) Logger() *slog.Logger { return r.logger }

func (r *executionRuntime) Registry() *CommandRegistry { return r.console.registry }

// RecoveryMiddleware turns a panic in a command into an error for that stage.
func RecoveryMiddleware(rt CommandRuntime, input CommandInput, out io.Writer, entry CommandEntry, next NextFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", entry.Spec.Name, r)
		}
	}()
	return next(rt, input, out)
}

// TimingMiddleware logs command duration at debug level.
func TimingMiddleware(rt CommandRuntime, input CommandInput, out io.Writer, entry CommandEntry, next NextFunc) error {
	start := time.Now()
	err := next(rt, input, out)
	rt.Logger().Debug("command finished", "command", entry.Spec.Name,
		"duration", time.Since(start).Truncate(time.Microsecond), "error", err)
	return err
}
