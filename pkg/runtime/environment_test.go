package runtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvironmentResolveWalksParents(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("x", AddressFor(1))
	inner := outer.Extend()

	addr, err := inner.Resolve("x")
	if err != nil || addr != AddressFor(1) {
		t.Fatalf("resolve through parent yielded (%v, %v)", addr, err)
	}

	inner.Define("x", AddressFor(2))
	addr, err = inner.Resolve("x")
	if err != nil || addr != AddressFor(2) {
		t.Fatalf("shadowed resolve yielded (%v, %v)", addr, err)
	}

	addr, err = outer.Resolve("x")
	if err != nil || addr != AddressFor(1) {
		t.Fatalf("outer binding changed to (%v, %v)", addr, err)
	}
}

func TestEnvironmentResolveUnbound(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Resolve("ghost")
	var envErr EnvironmentError
	if !errors.As(err, &envErr) {
		t.Fatalf("got %v, want EnvironmentError", err)
	}
	if envErr.Name != "ghost" {
		t.Fatalf("error names %q", envErr.Name)
	}
}

func TestEnvironmentSnapshotIsOwnFrameOnly(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("inherited", AddressFor(1))
	inner := outer.Extend()
	inner.Define("own", AddressFor(2))

	snap := inner.Snapshot()
	if _, ok := snap["own"]; !ok {
		t.Fatalf("snapshot misses the frame's own binding: %v", snap)
	}
	if _, ok := snap["inherited"]; ok {
		t.Fatalf("snapshot includes a parent binding: %v", snap)
	}

	// The snapshot is a copy, not a live view.
	snap["own"] = AddressFor(99)
	if addr, _ := inner.Resolve("own"); addr != AddressFor(2) {
		t.Fatalf("mutating the snapshot changed the frame: %v", addr)
	}
}

func TestEnvironmentKeysAreSorted(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("zeta", AddressFor(1))
	env.Define("alpha", AddressFor(2))
	env.Define("mid", AddressFor(3))
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, env.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestScopedEnvironmentOverlaysBindings(t *testing.T) {
	ambient := NewEnvironment(nil)
	ambient.Define("ambient", AddressFor(1))
	ambient.Define("shadowed", AddressFor(2))

	scoped := NewScopedEnvironment(map[string]Address{"shadowed": AddressFor(3)}, ambient)
	if addr, err := scoped.Resolve("shadowed"); err != nil || addr != AddressFor(3) {
		t.Fatalf("scoped binding yielded (%v, %v)", addr, err)
	}
	if addr, err := scoped.Resolve("ambient"); err != nil || addr != AddressFor(1) {
		t.Fatalf("fallthrough to ambient yielded (%v, %v)", addr, err)
	}
}
