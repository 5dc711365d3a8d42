package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Console reads lines, runs them as pipelines and reports errors. It owns
// the command registry and the state handed to commands.
type Console struct {
	registry   *CommandRegistry
	parser     *ArgsParser
	state      *State
	runner     ProcessRunner
	reader     LineReader
	stdout     io.Writer
	out        *bufio.Writer
	stderr     io.Writer
	logger     *slog.Logger
	middleware []Middleware
	prompt     string
	marker     string
	builtins   bool
}

// Option configures the console.
type Option func(*Console)

// WithPrompt sets the prompt printed before each read.
func WithPrompt(prompt string) Option {
	return func(c *Console) { c.prompt = prompt }
}

// WithOutputWriter sets the primary output stream.
func WithOutputWriter(w io.Writer) Option {
	return func(c *Console) {
		if w != nil {
			c.stdout = w
		}
	}
}

// WithDiagnosticWriter sets the stream errors are reported to.
func WithDiagnosticWriter(w io.Writer) Option {
	return func(c *Console) {
		if w != nil {
			c.stderr = w
		}
	}
}

// WithLineReader sets the source of input lines.
func WithLineReader(r LineReader) Option {
	return func(c *Console) { c.reader = r }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithExternalMarker sets the prefix that routes a stage to an external
// program. An empty marker disables external stages.
func WithExternalMarker(marker string) Option {
	return func(c *Console) { c.marker = marker }
}

// WithMiddleware appends middleware functions.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Console) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithProcessRunner overrides how external stages are run.
func WithProcessRunner(runner ProcessRunner) Option {
	return func(c *Console) { c.runner = runner }
}

// WithoutBuiltins skips registering the help and exit commands.
func WithoutBuiltins() Option {
	return func(c *Console) { c.builtins = false }
}

// New constructs a Console with defaults.
func New(options ...Option) *Console {
	c := &Console{
		registry: NewCommandRegistry(),
		parser:   NewArgsParser(),
		state:    NewState(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   slog.Default(),
		prompt:   "> ",
		marker:   DefaultExternalMarker,
		builtins: true,
	}
	c.middleware = []Middleware{RecoveryMiddleware}
	for _, opt := range options {
		opt(c)
	}
	c.out = bufio.NewWriter(c.stdout)
	if c.runner == nil {
		c.runner = NewExecRunner(c.stderr, c.logger)
	}
	if c.builtins {
		c.registerBuiltins()
	}
	return c
}

// Registry exposes the command registry for registration.
func (c *Console) Registry() *CommandRegistry { return c.registry }

// State exposes the state handed to commands.
func (c *Console) State() *State { return c.state }

// Completer returns a completer over this console's registry.
func (c *Console) Completer() *Completer { return NewCompleter(c.registry) }

// SetLineReader swaps the line reader used by Run.
func (c *Console) SetLineReader(r LineReader) {
	c.reader = r
}

// RegisterCommand registers a builtin command.
func (c *Console) RegisterCommand(cmd Command) {
	c.registry.RegisterCommand(cmd)
}

// Run reads and executes lines until end of input. Per-line errors are
// reported on the diagnostic stream and the loop continues; only input and
// output failures are returned.
func (c *Console) Run(ctx context.Context) error {
	if c.reader == nil {
		return errors.New("line reader is required")
	}
	for {
		if err := c.flushMessages(); err != nil {
			return err
		}
		line, err := c.reader.ReadLine(c.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &InputError{Err: err}
		}

		err = c.Exec(ctx, line)
		switch {
		case err == nil:
		case errors.Is(err, ErrExit):
			return c.flushMessages()
		case IsFatal(err):
			return err
		default:
			c.report(err)
		}
	}
}

// Exec resolves and runs a single line. On success the final stage's output
// is written verbatim to the primary output and flushed.
func (c *Console) Exec(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	logger := c.logger.With("run_id", uuid.NewString())

	stages, err := c.Resolve(line)
	if err != nil {
		logger.Debug("pipeline rejected", "error", err)
		return err
	}
	logger.Debug("pipeline resolved", "stages", len(stages))

	output, err := c.execute(ctx, stages, logger)
	if err != nil {
		return err
	}
	if _, err := c.out.WriteString(output); err != nil {
		return &OutputError{Err: err}
	}
	if err := c.out.Flush(); err != nil {
		return &OutputError{Err: err}
	}
	return nil
}

// report writes err as one line on the diagnostic stream.
func (c *Console) report(err error) {
	msg := strings.TrimRight(err.Error(), "\n")
	if _, werr := fmt.Fprintln(c.stderr, msg); werr != nil {
		c.logger.Warn("failed to write diagnostic", "error", werr)
	}
}

// flushMessages prints queued async messages, one per line.
func (c *Console) flushMessages() error {
	messages := c.state.Messages().Drain()
	if len(messages) == 0 {
		return nil
	}
	for _, msg := range messages {
		if _, err := fmt.Fprintln(c.out, msg); err != nil {
			return &OutputError{Err: err}
		}
	}
	if err := c.out.Flush(); err != nil {
		return &OutputError{Err: err}
	}
	return nil
}
