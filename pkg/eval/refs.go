package eval

import (
	"code.hybscloud.com/kont"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

// ValueRef is a discriminated reference to a value: already resolved,
// resolvable through the lexical environment, or resolvable through the
// scoped environment of a receiver.
type ValueRef interface {
	isValueRef()
}

// Rval is an already-resolved reference.
type Rval struct {
	Addr runtime.Address
}

func (Rval) isValueRef() {}

// LvalLocal resolves through the current lexical environment.
type LvalLocal struct {
	Name string
}

func (LvalLocal) isValueRef() {}

// LvalMember resolves by entering the scoped environment of the receiver and
// looking the name up there.
type LvalMember struct {
	Receiver runtime.Address
	Name     string
}

func (LvalMember) isValueRef() {}

// Address resolves a reference to an address. Rval resolves without effects;
// the lvalue forms fail with a resumable EnvironmentError when unbound.
func Address(ref ValueRef) kont.Eff[runtime.Address] {
	switch r := ref.(type) {
	case Rval:
		return kont.Pure(r.Addr)
	case LvalLocal:
		return kont.Perform(LookupOp{Name: r.Name})
	case LvalMember:
		return kont.Perform(MemberLookupOp{Receiver: r.Receiver, Name: r.Name})
	default:
		return kont.Bind(Raise(runtime.EnvironmentError{Name: "<invalid reference>"}),
			func(runtime.Value) kont.Eff[runtime.Address] { return Alloc() })
	}
}

// Value resolves a reference and dereferences the resulting address. Failing
// dereferences raise a resumable AddressError.
func Value(ref ValueRef) Eff {
	return kont.Bind(Address(ref), Deref)
}

// RvalBox allocates a fresh address, stores v there, and returns the resolved
// reference, giving a bare computed value an addressable identity.
func RvalBox(v runtime.Value) kont.Eff[ValueRef] {
	return kont.Bind(Alloc(), func(addr runtime.Address) kont.Eff[ValueRef] {
		return kont.Map(Assign(addr, v), func(runtime.Value) ValueRef {
			return Rval{Addr: addr}
		})
	})
}
