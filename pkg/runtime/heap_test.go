package runtime

import (
	"errors"
	"testing"
)

type stubValue struct{ tag string }

func (stubValue) Kind() Kind { return KindString }

func TestStoreHeapAllocAssignDeref(t *testing.T) {
	h := NewStoreHeap()
	addr := h.Alloc()
	if !addr.Valid() {
		t.Fatal("alloc returned the zero address")
	}
	if err := h.Assign(addr, stubValue{tag: "v"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	v, err := h.Deref(addr)
	if err != nil || v.(stubValue).tag != "v" {
		t.Fatalf("deref yielded (%v, %v)", v, err)
	}
}

func TestStoreHeapDerefUninitialized(t *testing.T) {
	h := NewStoreHeap()
	addr := h.Alloc()
	_, err := h.Deref(addr)
	var addrErr AddressError
	if !errors.As(err, &addrErr) {
		t.Fatalf("deref before assign: got %v, want AddressError", err)
	}
}

func TestStoreHeapRejectsForeignAddresses(t *testing.T) {
	h := NewStoreHeap()
	foreign := AddressFor(42)
	var addrErr AddressError
	if _, err := h.Deref(foreign); !errors.As(err, &addrErr) {
		t.Fatalf("deref of unallocated address: got %v", err)
	}
	if err := h.Assign(foreign, stubValue{}); !errors.As(err, &addrErr) {
		t.Fatalf("assign to unallocated address: got %v", err)
	}
}

func TestBoxAllocatesAndStores(t *testing.T) {
	h := NewStoreHeap()
	addr, err := Box(h, stubValue{tag: "boxed"})
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	v, err := h.Deref(addr)
	if err != nil || v.(stubValue).tag != "boxed" {
		t.Fatalf("boxed deref yielded (%v, %v)", v, err)
	}
}
