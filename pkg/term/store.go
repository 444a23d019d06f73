// Package term holds pre-built term trees and hands out opaque handles to
// them. Function bodies travel through the evaluation core as handles into a
// Store, never as embedded subtrees.
package term

import (
	"fmt"
	"sync"

	"github.com/kudryavchik/semantic/pkg/ast"
)

// Handle is an opaque index into a Store. The zero Handle resolves to nothing.
type Handle int

// Valid reports whether the handle was produced by Intern.
func (h Handle) Valid() bool { return h > 0 }

// Store is an append-only collection of interned terms.
type Store struct {
	mu    sync.RWMutex
	nodes []ast.Node
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Intern records the node and returns its handle. Interning the same node
// twice yields two handles; identity is not deduplicated.
func (s *Store) Intern(node ast.Node) Handle {
	s.mu.Lock()
	s.nodes = append(s.nodes, node)
	h := Handle(len(s.nodes))
	s.mu.Unlock()
	return h
}

// Resolve returns the node behind the handle.
func (s *Store) Resolve(h Handle) (ast.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !h.Valid() || int(h) > len(s.nodes) {
		return nil, fmt.Errorf("term: unknown handle %d", int(h))
	}
	return s.nodes[int(h)-1], nil
}

// Len reports the number of interned terms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
