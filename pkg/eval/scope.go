package eval

import (
	"code.hybscloud.com/kont"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

// MakeNamespace pushes a fresh scope, runs body inside it, captures only the
// bindings introduced directly at that scope's own frame, builds a namespace
// value combined with the ancestor's scope, stores it at addr, and resumes
// with the value. Bindings created in nested scopes opened during body are
// excluded unless re-bound at the top frame.
func MakeNamespace(name string, addr, ancestor runtime.Address, body Eff) Eff {
	return kont.Perform(NamespaceOp{Name: name, Addr: addr, Ancestor: ancestor, Body: body})
}

// MakeClass is the class counterpart of MakeNamespace: the captured frame and
// the ordered superclass list become a class value stored at addr.
func MakeClass(name string, addr runtime.Address, supers []runtime.Address, body Eff) Eff {
	return kont.Perform(KlassOp{Name: name, Addr: addr, Supers: supers, Body: body})
}

// InScopedEnv runs body with receiver bound as self and the environment
// rebound to the receiver's scoped environment. A receiver that is not a
// scoped object keeps the ambient lexical environment. This is how member
// access works without a dedicated member-access evaluation rule.
func InScopedEnv(receiver runtime.Address, body Eff) Eff {
	return kont.Perform(InScopedEnvOp{Receiver: receiver, Body: body})
}
