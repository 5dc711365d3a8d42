package console

import (
	"context"
	"sync"
)

var (
	defaultMu      sync.Mutex
	defaultConsole *Console
)

// Default returns the shared default console, creating it on first use.
func Default() *Console {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConsole == nil {
		defaultConsole = New()
	}
	return defaultConsole
}

// ResetDefault replaces the default console (primarily for tests).
func ResetDefault(options ...Option) *Console {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultConsole = New(options...)
	return defaultConsole
}

// RegisterCommand registers a command with the default console.
func RegisterCommand(cmd Command) {
	Default().RegisterCommand(cmd)
}

// Run starts the read loop of the default console using reader.
func Run(ctx context.Context, reader LineReader) error {
	c := Default()
	c.SetLineReader(reader)
	return c.Run(ctx)
}
