package console

import "sync"

// MessageQueue collects asynchronous messages until the console drains them.
type MessageQueue struct {
	mu      sync.Mutex
	pending []string
}

// NewMessageQueue constructs an empty MessageQueue.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{}
}

// Push appends a message.
func (q *MessageQueue) Push(msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, msg)
}

// Len returns the number of pending messages.
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain removes and returns all pending messages in insertion order.
func (q *MessageQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.pending
	q.pending = nil
	return drained
}
