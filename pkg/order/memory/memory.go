// Package memory implements an in-memory order document store.
package memory

import (
	"bytes"
	"context"
	"sync"

	"orderdesk/pkg/order"
)

// Store provides an in-memory implementation of order.Store.
type Store struct {
	mu       sync.RWMutex
	content  []byte
	version  string
	messages []string
}

// New creates a store holding initial, or an empty order document when
// initial is nil.
func New(initial []byte) *Store {
	if initial == nil {
		initial = order.EmptyDocument
	}
	content := bytes.Clone(initial)
	return &Store{content: content, version: order.ContentVersion(content)}
}

// Fetch returns the current document and its version.
func (s *Store) Fetch(ctx context.Context) (order.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return order.Snapshot{Content: bytes.Clone(s.content), Version: s.version}, nil
}

// Write replaces the document if version is still current.
func (s *Store) Write(ctx context.Context, content []byte, version, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return order.ConflictError(version, s.version)
	}
	s.content = bytes.Clone(content)
	s.version = order.ContentVersion(s.content)
	s.messages = append(s.messages, message)
	return nil
}

// Messages returns the change messages of all successful writes, oldest first.
func (s *Store) Messages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}
