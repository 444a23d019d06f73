package runtime

import (
	"fmt"
	"sync"
)

// Address is an opaque handle into a heap. It separates where a value lives
// from what it is; the zero Address refers to nothing.
type Address struct {
	id uint64
}

// Valid reports whether the address was produced by an allocator.
func (a Address) Valid() bool { return a.id != 0 }

func (a Address) String() string {
	if !a.Valid() {
		return "@none"
	}
	return fmt.Sprintf("@%d", a.id)
}

// AddressFor builds an address from a raw allocator id. Intended for heap
// implementations only; ids must be nonzero and unique per heap.
func AddressFor(id uint64) Address { return Address{id: id} }

// Heap is the allocator/dereference/assignment contract the evaluation core
// consumes. Implementations must be deterministic per address: dereferencing
// an address always yields the most recently assigned value.
type Heap interface {
	// Alloc reserves a fresh, uninitialized address.
	Alloc() Address
	// Deref reads the value stored at addr. Dereferencing an address that was
	// never allocated or never assigned fails with an AddressError.
	Deref(addr Address) (Value, error)
	// Assign stores val at addr. Assigning to an unallocated address fails
	// with an AddressError.
	Assign(addr Address, val Value) error
}

// StoreHeap is a map-backed heap. It never frees storage; value lifetime is
// the heap's own lifetime.
type StoreHeap struct {
	mu     sync.Mutex
	next   uint64
	cells  map[Address]Value
	placed map[Address]bool
}

// NewStoreHeap constructs an empty heap.
func NewStoreHeap() *StoreHeap {
	return &StoreHeap{
		cells:  make(map[Address]Value),
		placed: make(map[Address]bool),
	}
}

func (h *StoreHeap) Alloc() Address {
	h.mu.Lock()
	h.next++
	addr := AddressFor(h.next)
	h.placed[addr] = true
	h.mu.Unlock()
	return addr
}

func (h *StoreHeap) Deref(addr Address) (Value, error) {
	h.mu.Lock()
	val, ok := h.cells[addr]
	h.mu.Unlock()
	if !ok {
		return nil, AddressError{Addr: addr}
	}
	return val, nil
}

func (h *StoreHeap) Assign(addr Address, val Value) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.placed[addr] {
		return AddressError{Addr: addr}
	}
	h.cells[addr] = val
	return nil
}

// Box allocates a fresh address and stores val there.
func Box(h Heap, val Value) (Address, error) {
	addr := h.Alloc()
	if err := h.Assign(addr, val); err != nil {
		return Address{}, err
	}
	return addr, nil
}
