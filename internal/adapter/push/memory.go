package push

import (
	"context"
	"sync"
)

// Memory is an in-process channel. It backs the "none" driver and tests.
type Memory struct {
	mu  sync.Mutex
	out chan Message
}

// NewMemory constructs a disconnected in-process channel.
func NewMemory() *Memory {
	return &Memory{}
}

// Connect opens a new message stream, closing any previous one.
func (m *Memory) Connect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out != nil {
		close(m.out)
	}
	m.out = make(chan Message, bufferSize)
	return nil
}

// Messages returns the current stream, or nil when disconnected.
func (m *Memory) Messages() <-chan Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out
}

// Publish delivers a message; it reports false when disconnected or full.
func (m *Memory) Publish(msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out == nil {
		return false
	}
	select {
	case m.out <- msg:
		return true
	default:
		return false
	}
}

// Close ends the current stream.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out != nil {
		close(m.out)
		m.out = nil
	}
	return nil
}
