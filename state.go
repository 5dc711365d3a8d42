package console

import (
	"sort"
	"sync"
)

// State is the console-owned mutable state handed to every command
// invocation. Commands keep private state across invocations in its
// key/value store and queue messages for the console to print before the
// next prompt.
type State struct {
	mu       sync.RWMutex
	data     map[string]any
	messages *MessageQueue
}

// NewState constructs an empty State.
func NewState() *State {
	return &State{data: map[string]any{}, messages: NewMessageQueue()}
}

// Get retrieves a value.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set stores a key/value pair.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes a key.
func (s *State) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Keys lists stored keys in sorted order.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddAsyncMessage queues msg for display before the next prompt. It is safe
// to call from goroutines a command started.
func (s *State) AddAsyncMessage(msg string) {
	s.messages.Push(msg)
}

// Messages exposes the async message queue.
func (s *State) Messages() *MessageQueue { return s.messages }
