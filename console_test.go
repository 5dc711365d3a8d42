package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays lines, then returns err (io.EOF when nil).
type scriptedReader struct {
	lines   []string
	prompts []string
	err     error
}

func (r *scriptedReader) ReadLine(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) Close() error { return nil }

type runCall struct {
	name  string
	args  []string
	input string
}

// fakeRunner uppercases its input instead of spawning anything.
type fakeRunner struct {
	calls []runCall
	err   error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, input string) (ProcessResult, error) {
	f.calls = append(f.calls, runCall{name: name, args: args, input: input})
	if f.err != nil {
		return ProcessResult{}, f.err
	}
	return ProcessResult{Stdout: strings.ToUpper(input)}, nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

type testConsole struct {
	*Console
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *fakeRunner
}

func newTestConsole(t *testing.T, options ...Option) *testConsole {
	t.Helper()
	tc := &testConsole{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, runner: &fakeRunner{}}
	opts := []Option{
		WithOutputWriter(tc.stdout),
		WithDiagnosticWriter(tc.stderr),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithProcessRunner(tc.runner),
	}
	tc.Console = New(append(opts, options...)...)

	tc.RegisterCommand(NewFuncCommand(CommandSpec{
		Name:  "echo",
		Args:  []ArgSpec{{Name: "words", Repeatable: true}},
		Flags: []FlagSpec{{Name: "no-newline", Shorthand: "n", Type: ArgTypeBool}},
	}, func(_ CommandRuntime, in CommandInput, out io.Writer) error {
		text := strings.Join(in.Args.Strings("words"), " ")
		if !in.Flags.Bool("no-newline") {
			text += "\n"
		}
		_, err := io.WriteString(out, text)
		return err
	}))
	tc.RegisterCommand(NewFuncCommand(CommandSpec{Name: "upper"},
		func(_ CommandRuntime, in CommandInput, out io.Writer) error {
			_, err := io.WriteString(out, strings.ToUpper(in.Stdin))
			return err
		}))
	tc.RegisterCommand(NewFuncCommand(CommandSpec{Name: "fail"},
		func(_ CommandRuntime, _ CommandInput, out io.Writer) error {
			io.WriteString(out, "partial")
			return errors.New("boom")
		}))
	return tc
}

func TestExecPipeline(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{name: "single stage", line: "echo hello", expected: "hello\n"},
		{name: "two stages", line: "echo hello | upper", expected: "HELLO\n"},
		{name: "no trailing newline added", line: "echo -n hello | upper", expected: "HELLO"},
		{name: "quoted pipe is an argument", line: `echo "a | b" | upper`, expected: "A | B\n"},
		{name: "comment ends at the pipe", line: "echo hi # greeting | upper", expected: "HI\n"},
		{name: "input ignored by first stage", line: "upper", expected: ""},
		{name: "blank line", line: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestConsole(t)
			require.NoError(t, tc.Exec(context.Background(), tt.line))
			assert.Equal(t, tt.expected, tc.stdout.String())
		})
	}
}

func TestExecResolvesEveryStageBeforeRunning(t *testing.T) {
	tc := newTestConsole(t)
	var runs int
	tc.RegisterCommand(NewFuncCommand(CommandSpec{Name: "touch"},
		func(CommandRuntime, CommandInput, io.Writer) error {
			runs++
			return nil
		}))

	err := tc.Exec(context.Background(), "touch | nope")
	require.ErrorIs(t, err, ErrUnrecognizedCommand)
	assert.Equal(t, "unrecognized command: nope", err.Error())

	err = tc.Exec(context.Background(), "touch | echo --bogus")
	require.ErrorIs(t, err, ErrInvalidArguments)
	assert.Equal(t, "echo: unknown flag: --bogus", err.Error())

	err = tc.Exec(context.Background(), "touch | !tr")
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	err = tc.Exec(context.Background(), `touch | echo "open`)
	require.ErrorIs(t, err, ErrLex)
	require.ErrorIs(t, err, ErrUnclosedQuote)
	assert.Equal(t, 1, runs)
	assert.Empty(t, tc.runner.calls[1:])
}

func TestExecEmptyStage(t *testing.T) {
	for _, line := range []string{"echo hi |", "| upper", "echo hi || upper", "!", "echo | ! "} {
		t.Run(line, func(t *testing.T) {
			tc := newTestConsole(t)
			err := tc.Exec(context.Background(), line)
			require.ErrorIs(t, err, ErrEmptyCommandLine)
			assert.Empty(t, tc.stdout.String())
		})
	}
}

func TestExecStageFailure(t *testing.T) {
	t.Run("single stage", func(t *testing.T) {
		tc := newTestConsole(t)
		err := tc.Exec(context.Background(), "fail")
		require.ErrorIs(t, err, ErrCommandFailed)
		assert.NotErrorIs(t, err, ErrBrokenPipe)
		assert.Equal(t, "error executing fail: boom", err.Error())
		assert.Empty(t, tc.stdout.String())
	})

	t.Run("inside a pipeline", func(t *testing.T) {
		tc := newTestConsole(t)
		err := tc.Exec(context.Background(), "echo hi | fail | upper")
		require.ErrorIs(t, err, ErrBrokenPipe)
		require.ErrorIs(t, err, ErrCommandFailed)

		var bp *BrokenPipeError
		require.ErrorAs(t, err, &bp)
		assert.Equal(t, 1, bp.Index)
		assert.Equal(t, "fail", bp.Cause.Name)
		assert.Equal(t, "broken pipe at stage 2: error executing fail: boom", err.Error())
		assert.Empty(t, tc.stdout.String())
	})

	t.Run("first stage of a pipeline", func(t *testing.T) {
		tc := newTestConsole(t)
		err := tc.Exec(context.Background(), "fail | upper")
		var bp *BrokenPipeError
		require.ErrorAs(t, err, &bp)
		assert.Equal(t, 0, bp.Index)
	})

	t.Run("external runner error", func(t *testing.T) {
		tc := newTestConsole(t)
		tc.runner.err = errors.New("failed to start tr")
		err := tc.Exec(context.Background(), "echo hi | !tr a-z A-Z")
		require.ErrorIs(t, err, ErrBrokenPipe)
		assert.Contains(t, err.Error(), "error executing tr: failed to start tr")
	})
}

func TestExecExternalStages(t *testing.T) {
	tc := newTestConsole(t)

	require.NoError(t, tc.Exec(context.Background(), `echo hello | !tr a-z "A-Z"`))
	assert.Equal(t, "HELLO\n", tc.stdout.String())

	require.NoError(t, tc.Exec(context.Background(), "! cat -u"))

	require.Len(t, tc.runner.calls, 2)
	assert.Equal(t, runCall{name: "tr", args: []string{"a-z", "A-Z"}, input: "hello\n"}, tc.runner.calls[0])
	assert.Equal(t, runCall{name: "cat", args: []string{"-u"}, input: ""}, tc.runner.calls[1])
}

func TestExecCustomExternalMarker(t *testing.T) {
	tc := newTestConsole(t, WithExternalMarker("@"))
	require.NoError(t, tc.Exec(context.Background(), "@cat"))
	require.Len(t, tc.runner.calls, 1)

	err := tc.Exec(context.Background(), "!cat")
	require.ErrorIs(t, err, ErrUnrecognizedCommand)

	disabled := newTestConsole(t, WithExternalMarker(""))
	err = disabled.Exec(context.Background(), "!cat")
	require.ErrorIs(t, err, ErrUnrecognizedCommand)
}

func TestExecRecoversFromPanics(t *testing.T) {
	tc := newTestConsole(t)
	tc.RegisterCommand(NewFuncCommand(CommandSpec{Name: "explode"},
		func(CommandRuntime, CommandInput, io.Writer) error { panic("kaboom") }))

	err := tc.Exec(context.Background(), "echo hi | explode")
	require.ErrorIs(t, err, ErrBrokenPipe)
	assert.Contains(t, err.Error(), "command explode panicked: kaboom")
}

func TestExecMiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(rt CommandRuntime, in CommandInput, out io.Writer, entry CommandEntry, next NextFunc) error {
			order = append(order, name+":"+entry.Spec.Name)
			return next(rt, in, out)
		}
	}
	tc := newTestConsole(t, WithMiddleware(record("outer"), record("inner"), TimingMiddleware))

	require.NoError(t, tc.Exec(context.Background(), "echo hi | upper"))
	assert.Equal(t, []string{"outer:echo", "inner:echo", "outer:upper", "inner:upper"}, order)
}

func TestExecStatePersistsAcrossLines(t *testing.T) {
	tc := newTestConsole(t)
	tc.RegisterCommand(NewFuncCommand(CommandSpec{Name: "tick"},
		func(rt CommandRuntime, _ CommandInput, out io.Writer) error {
			n, _ := rt.State().Get("ticks")
			count, _ := n.(int)
			count++
			rt.State().Set("ticks", count)
			return nil
		}))

	for range 3 {
		require.NoError(t, tc.Exec(context.Background(), "tick"))
	}
	n, ok := tc.State().Get("ticks")
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestExecOutputFailure(t *testing.T) {
	tc := newTestConsole(t, WithOutputWriter(failingWriter{}))
	err := tc.Exec(context.Background(), "echo hello")
	require.ErrorIs(t, err, ErrOutput)
	assert.True(t, IsFatal(err))
}

func TestExecHelp(t *testing.T) {
	tc := newTestConsole(t)

	require.NoError(t, tc.Exec(context.Background(), "help"))
	out := tc.stdout.String()
	assert.True(t, strings.HasPrefix(out, "Available commands:\n"))
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "exit")
	assert.Contains(t, out, "Leave the console")

	tc.stdout.Reset()
	require.NoError(t, tc.Exec(context.Background(), "? echo"))
	assert.Contains(t, tc.stdout.String(), "Usage: echo [WORDS...] [-n|--no-newline]")

	err := tc.Exec(context.Background(), "help nope")
	require.ErrorIs(t, err, ErrCommandFailed)
	require.ErrorIs(t, err, ErrUnrecognizedCommand)

	tc.stdout.Reset()
	require.NoError(t, tc.Exec(context.Background(), "help | upper"))
	assert.Contains(t, tc.stdout.String(), "AVAILABLE COMMANDS:")
}

func TestWithoutBuiltins(t *testing.T) {
	tc := newTestConsole(t, WithoutBuiltins())
	_, ok := tc.Registry().Resolve("help")
	assert.False(t, ok)
	_, ok = tc.Registry().Resolve("exit")
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	t.Run("reports errors and stops at exit", func(t *testing.T) {
		tc := newTestConsole(t, WithPrompt("$ "))
		reader := &scriptedReader{lines: []string{"echo a", "nope", "", "echo b | fail", "exit", "echo never"}}
		tc.SetLineReader(reader)

		require.NoError(t, tc.Run(context.Background()))
		assert.Equal(t, "a\n", tc.stdout.String())
		assert.Equal(t, "unrecognized command: nope\nbroken pipe at stage 2: error executing fail: boom\n", tc.stderr.String())
		assert.Equal(t, []string{"echo never"}, reader.lines)
		assert.Equal(t, "$ ", reader.prompts[0])
	})

	t.Run("end of input", func(t *testing.T) {
		tc := newTestConsole(t, WithLineReader(&scriptedReader{lines: []string{"echo a"}}))
		require.NoError(t, tc.Run(context.Background()))
		assert.Equal(t, "a\n", tc.stdout.String())
	})

	t.Run("reader failure", func(t *testing.T) {
		tc := newTestConsole(t, WithLineReader(&scriptedReader{err: errors.New("tty gone")}))
		err := tc.Run(context.Background())
		require.ErrorIs(t, err, ErrInput)
		assert.Equal(t, "error reading input: tty gone", err.Error())
	})

	t.Run("output failure", func(t *testing.T) {
		tc := newTestConsole(t,
			WithOutputWriter(failingWriter{}),
			WithLineReader(&scriptedReader{lines: []string{"echo a", "echo b"}}))
		err := tc.Run(context.Background())
		require.ErrorIs(t, err, ErrOutput)
	})

	t.Run("missing reader", func(t *testing.T) {
		tc := newTestConsole(t)
		require.Error(t, tc.Run(context.Background()))
	})
}

func TestRunPrintsAsyncMessagesBeforePrompt(t *testing.T) {
	tc := newTestConsole(t)
	tc.RegisterCommand(NewFuncCommand(CommandSpec{Name: "notify"},
		func(rt CommandRuntime, _ CommandInput, _ io.Writer) error {
			rt.State().AddAsyncMessage("first")
			rt.State().AddAsyncMessage("second")
			return nil
		}))
	tc.SetLineReader(&scriptedReader{lines: []string{"notify", "echo x"}})

	require.NoError(t, tc.Run(context.Background()))
	assert.Equal(t, "first\nsecond\nx\n", tc.stdout.String())
	assert.Zero(t, tc.State().Messages().Len())
}

func TestDefaultConsole(t *testing.T) {
	var stdout bytes.Buffer
	c := ResetDefault(WithOutputWriter(&stdout), WithDiagnosticWriter(io.Discard))
	t.Cleanup(func() { ResetDefault() })
	assert.Same(t, c, Default())

	RegisterCommand(NewFuncCommand(CommandSpec{Name: "hi"},
		func(_ CommandRuntime, _ CommandInput, out io.Writer) error {
			_, err := io.WriteString(out, "hello\n")
			return err
		}))

	require.NoError(t, Run(context.Background(), &scriptedReader{lines: []string{"hi", "quit", "hi"}}))
	assert.Equal(t, "hello\n", stdout.String())
}
