package console

import (
	"fmt"
	"sort"
	"sync"
)

// CommandEntry stores a registered command and the spec it was registered with.
type CommandEntry struct {
	Command Command
	Spec    CommandSpec
}

// CommandRegistry maps command names and aliases to commands. Reads are
// shared between the pipeline engine and the completer; writes are
// serialized by the lock and should happen before the read loop starts.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandEntry
}

// NewCommandRegistry constructs a registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: map[string]CommandEntry{}}
}

// RegisterCommand registers a command under its name and aliases, replacing
// any previous entry with the same key. It panics on a spec without a name,
// on a repeatable positional that is not last, or on a flag with neither a
// long nor a short form.
func (r *CommandRegistry) RegisterCommand(cmd Command) {
	spec := cmd.Spec()
	if spec.Name == "" {
		panic("command spec must define name")
	}
	for i, arg := range spec.Args {
		if arg.Repeatable && i != len(spec.Args)-1 {
			panic(fmt.Sprintf("command %s: repeatable argument %s must be the last positional", spec.Name, arg.Name))
		}
	}
	for i, flag := range spec.Flags {
		if flag.Name == "" && flag.Shorthand == "" {
			panic(fmt.Sprintf("command %s: flag %d has neither long nor short form", spec.Name, i))
		}
		if len([]rune(flag.Shorthand)) > 1 {
			panic(fmt.Sprintf("command %s: shorthand %q must be a single character", spec.Name, flag.Shorthand))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := CommandEntry{Command: cmd, Spec: spec}
	r.commands[spec.Name] = entry
	for _, alias := range spec.Aliases {
		r.commands[alias] = entry
	}
}

// UnregisterCommand removes a command by name together with its aliases.
func (r *CommandRegistry) UnregisterCommand(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.commands[name]
	if !ok {
		return
	}
	delete(r.commands, entry.Spec.Name)
	for _, alias := range entry.Spec.Aliases {
		if r.commands[alias].Spec.Name == entry.Spec.Name {
			delete(r.commands, alias)
		}
	}
}

// Resolve finds a command entry by name or alias.
func (r *CommandRegistry) Resolve(name string) (CommandEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.commands[name]
	return entry, ok
}

// Commands returns the specs of registered commands sorted by name, one per
// command regardless of aliases.
func (r *CommandRegistry) Commands(includeHidden bool) []CommandSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	var specs []CommandSpec
	for _, entry := range r.commands {
		if seen[entry.Spec.Name] {
			continue
		}
		seen[entry.Spec.Name] = true
		if entry.Spec.Hidden && !includeHidden {
			continue
		}
		specs = append(specs, entry.Spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Names returns every name and alias that resolves to a visible command, sorted.
func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name, entry := range r.commands {
		if entry.Spec.Hidden {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
