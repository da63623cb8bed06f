package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// memStore keeps the path tree in a map. It backs tests and the
// no-database development mode; semantics match the GORM store.
type memStore struct {
	mu       sync.RWMutex
	updateMu sync.Mutex
	values   map[string]json.RawMessage
	fanout   *fanout
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() Store {
	return &memStore{
		values: make(map[string]json.RawMessage),
		fanout: newFanout(),
	}
}

func (s *memStore) Read(_ context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.values[path]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (s *memStore) ReadTree(_ context.Context, path string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree := make(map[string]json.RawMessage)
	for p, v := range s.values {
		if p == path || strings.HasPrefix(p, path+"/") {
			tree[p] = v
		}
	}
	return tree, nil
}

func (s *memStore) Write(_ context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", path, err)
	}
	s.mu.Lock()
	s.values[path] = raw
	s.mu.Unlock()

	s.fanout.publish(path, raw)
	return nil
}

func (s *memStore) Update(ctx context.Context, path string, fn func(json.RawMessage) (any, error)) error {
	s.updateMu.Lock()

	s.mu.RLock()
	current := s.values[path]
	s.mu.RUnlock()

	next, err := fn(current)
	if err != nil {
		s.updateMu.Unlock()
		return err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		s.updateMu.Unlock()
		return fmt.Errorf("marshal value for %q: %w", path, err)
	}
	s.mu.Lock()
	s.values[path] = raw
	s.mu.Unlock()
	s.updateMu.Unlock()

	s.fanout.publish(path, raw)
	return nil
}

func (s *memStore) Subscribe(path string, fn func(string, json.RawMessage)) func() {
	return s.fanout.subscribe(path, fn)
}
