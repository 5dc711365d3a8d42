package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// ProcessResult is the outcome of one external program run.
type ProcessResult struct {
	Stdout string
	Stderr string
	// ExitCode is informational only; a non-zero code does not fail the stage.
	ExitCode int
}

// ProcessRunner runs an out-of-process program with input as its stdin.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args []string, input string) (ProcessResult, error)
}

// ExecRunner runs programs with os/exec. The child's stderr is relayed to
// Stderr as it is produced and is also captured into the result; it never
// reaches the pipeline's data path.
type ExecRunner struct {
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner creates an ExecRunner relaying child diagnostics to stderr.
func NewExecRunner(stderr io.Writer, logger *slog.Logger) *ExecRunner {
	if stderr == nil {
		stderr = os.Stderr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Stderr: stderr, Logger: logger}
}

// Run spawns name with args as a literal argv. The input is written by a
// dedicated goroutine that closes the child's stdin when done, so a child
// that produces output before draining its input cannot deadlock the
// parent. The writer is joined before the captured output is returned. A
// child that exits without reading non-empty input fails the stage with the
// write error.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, input string) (ProcessResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	// The parent owns the write end so Wait never closes it under the writer.
	pr, pw, err := os.Pipe()
	if err != nil {
		return ProcessResult{}, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	cmd.Stdin = pr

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return ProcessResult{}, fmt.Errorf("failed to start %s: %w", name, err)
	}
	pr.Close()

	var writer errgroup.Group
	writer.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("stdin writer panicked: %v", p)
			}
		}()
		defer func() {
			if cerr := pw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close stdin: %w", cerr)
			}
		}()
		if input == "" {
			return nil
		}
		if _, werr := io.WriteString(pw, input); werr != nil {
			return fmt.Errorf("failed to write stdin: %w", werr)
		}
		return nil
	})

	waitErr := cmd.Wait()
	if err := writer.Wait(); err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		// The exit status does not decide stage success; it is only logged.
		r.logger().Debug("external process exited with non-zero status",
			"program", name, "exit_code", exitErr.ExitCode())
	default:
		return ProcessResult{}, fmt.Errorf("failed waiting for %s: %w", name, waitErr)
	}

	return result, nil
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
