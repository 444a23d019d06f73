package runtime

import (
	"sort"
	"sync"
)

// Environment provides lexical scoping from names to heap addresses. Each
// scope is extended only through Extend and is immutable from the outside once
// its frame is popped.
type Environment struct {
	bindings map[string]Address
	parent   *Environment
	mu       sync.RWMutex
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		bindings: make(map[string]Address),
		parent:   parent,
	}
}

// NewScopedEnvironment seeds a fresh frame with the provided bindings, nested
// under parent. Used to enter the captured scope of a class or namespace.
func NewScopedEnvironment(bindings map[string]Address, parent *Environment) *Environment {
	env := NewEnvironment(parent)
	for name, addr := range bindings {
		env.bindings[name] = addr
	}
	return env
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	e.mu.RLock()
	parent := e.parent
	e.mu.RUnlock()
	return parent
}

// Extend pushes a new child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Define inserts or shadows a binding in the current frame.
func (e *Environment) Define(name string, addr Address) {
	e.mu.Lock()
	e.bindings[name] = addr
	e.mu.Unlock()
}

// Resolve looks a name up, searching outward through the scope chain. Unbound
// names fail with an EnvironmentError.
func (e *Environment) Resolve(name string) (Address, error) {
	e.mu.RLock()
	if addr, ok := e.bindings[name]; ok {
		e.mu.RUnlock()
		return addr, nil
	}
	parent := e.parent
	e.mu.RUnlock()
	if parent != nil {
		return parent.Resolve(name)
	}
	return Address{}, EnvironmentError{Name: name}
}

// Snapshot copies the bindings of the current frame only. Ancestor frames and
// frames pushed below this one are excluded.
func (e *Environment) Snapshot() map[string]Address {
	e.mu.RLock()
	out := make(map[string]Address, len(e.bindings))
	for name, addr := range e.bindings {
		out[name] = addr
	}
	e.mu.RUnlock()
	return out
}

// Keys returns the current frame's names in sorted order (useful for
// determinism in tests).
func (e *Environment) Keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		keys = append(keys, name)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// HasInCurrentScope reports whether the binding exists in the current frame.
func (e *Environment) HasInCurrentScope(name string) bool {
	e.mu.RLock()
	_, ok := e.bindings[name]
	e.mu.RUnlock()
	return ok
}
