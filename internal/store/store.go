// Package store provides the hierarchical key-path store that owns all
// durable household state. Components read, write, and subscribe to
// slices of the tree ("laundry/washingMachine", "presence/1C", ...);
// every write replaces the value at a single path (last-writer-wins)
// and is fanned out to subscribers of any overlapping path.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by Read when no value has ever been written
// at the requested path. Callers fall back to their seeded defaults.
var ErrNotFound = errors.New("store: path not found")

// Store is the two-and-a-half-operation contract every model component
// depends on: subscribe, write, and a transactional read-modify-write
// used where a plain write would race (queue promotion, rotation).
type Store interface {
	// Read returns the raw JSON document at path, or ErrNotFound.
	Read(ctx context.Context, path string) (json.RawMessage, error)

	// ReadTree returns the documents at path and all of its
	// descendants, keyed by full path.
	ReadTree(ctx context.Context, path string) (map[string]json.RawMessage, error)

	// Write marshals value and replaces the document at path.
	Write(ctx context.Context, path string, value any) error

	// Update applies fn to the current document at path (nil when
	// absent) and writes the result, serialized against concurrent
	// Updates of the same store. Returning an error from fn aborts
	// without writing.
	Update(ctx context.Context, path string, fn func(current json.RawMessage) (any, error)) error

	// Subscribe registers fn for every write whose path overlaps the
	// given one (equal, ancestor, or descendant). The returned
	// function unregisters it.
	Subscribe(path string, fn func(path string, value json.RawMessage)) (unsubscribe func())
}

type subscriber struct {
	path string
	fn   func(path string, value json.RawMessage)
}

// fanout is the in-process subscriber registry shared by both store
// implementations. Callbacks run on the writer's goroutine after the
// write has been persisted and all locks released.
type fanout struct {
	mu   sync.RWMutex
	next int
	subs map[int]subscriber
}

func newFanout() *fanout {
	return &fanout{subs: make(map[int]subscriber)}
}

func (f *fanout) subscribe(path string, fn func(string, json.RawMessage)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = subscriber{path: path, fn: fn}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fanout) publish(path string, value json.RawMessage) {
	f.mu.RLock()
	matched := make([]func(string, json.RawMessage), 0, len(f.subs))
	for _, s := range f.subs {
		if pathsOverlap(s.path, path) {
			matched = append(matched, s.fn)
		}
	}
	f.mu.RUnlock()

	for _, fn := range matched {
		fn(path, value)
	}
}

// pathsOverlap reports whether a watched path and a written path refer
// to the same subtree: equal, or one is an ancestor of the other.
func pathsOverlap(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
