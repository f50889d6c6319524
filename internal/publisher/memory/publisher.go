// Package memory provides an in-process publisher for development and
// testing.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Publisher records published payloads in memory.
type Publisher struct {
	mu       sync.Mutex
	payloads []any
}

// New constructs an empty Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish appends the payload and returns a synthetic message id.
func (p *Publisher) Publish(_ context.Context, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return fmt.Sprintf("mem-%d", len(p.payloads)), nil
}

// Payloads returns a copy of everything published so far.
func (p *Publisher) Payloads() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.payloads...)
}
