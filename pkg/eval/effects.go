package eval

import (
	"code.hybscloud.com/kont"

	"github.com/kudryavchik/semantic/pkg/ast"
	"github.com/kudryavchik/semantic/pkg/runtime"
	"github.com/kudryavchik/semantic/pkg/term"
)

// Eff is an effectful computation producing a domain value.
type Eff = kont.Eff[runtime.Value]

//-----------------------------------------------------------------------------
// Function effect
//
// Three request shapes, one suspension/resumption contract. A handler must
// treat all three identically for state propagation.
//-----------------------------------------------------------------------------

// FunctionOp requests construction of a function value from an optional name,
// ordered parameters, and an opaque body handle. Closure capture strategy is
// the handling domain's choice.
type FunctionOp struct {
	kont.Phantom[runtime.Value]
	Name   string
	Params []string
	Body   term.Handle
}

// BuiltinOp requests the value of a tagged built-in.
type BuiltinOp struct {
	kont.Phantom[runtime.Value]
	Tag runtime.BuiltinTag
}

// CallOp requests invocation. The result is an address, never a bare value;
// callers dereference to read it, so call results compose with every other
// addressable lvalue.
type CallOp struct {
	kont.Phantom[runtime.Address]
	Fn   runtime.Value
	Self runtime.Address
	Args []runtime.Address
}

//-----------------------------------------------------------------------------
// Boolean effect
//-----------------------------------------------------------------------------

// BooleanOp introduces a domain truth value.
type BooleanOp struct {
	kont.Phantom[runtime.Value]
	Flag bool
}

// AsBoolOp eliminates a value to a native boolean. Values that are not
// boolean-like in the active domain raise a TypeError.
type AsBoolOp struct {
	kont.Phantom[bool]
	Value runtime.Value
}

// DisjunctionOp evaluates Left; Right runs only when Left is domain-falsy.
type DisjunctionOp struct {
	kont.Phantom[runtime.Value]
	Left  Eff
	Right Eff
}

//-----------------------------------------------------------------------------
// While effect
//-----------------------------------------------------------------------------

// WhileOp is the sole loop primitive. The condition is evaluated before every
// iteration, including the first; the loop yields the final condition value.
type WhileOp struct {
	kont.Phantom[runtime.Value]
	Cond Eff
	Body Eff
}

//-----------------------------------------------------------------------------
// Environment effect
//-----------------------------------------------------------------------------

// CurrentEnvOp reads the ambient lexical environment.
type CurrentEnvOp struct {
	kont.Phantom[*runtime.Environment]
}

// LookupOp resolves a name to an address in the ambient environment. Unbound
// names raise a resumable EnvironmentError.
type LookupOp struct {
	kont.Phantom[runtime.Address]
	Name string
}

// MemberLookupOp resolves a name inside the scoped environment of the
// receiver. Receivers without a scoped environment, and names absent from it,
// raise a resumable EnvironmentError.
type MemberLookupOp struct {
	kont.Phantom[runtime.Address]
	Receiver runtime.Address
	Name     string
}

// BindOp introduces a binding in the current scope frame.
type BindOp struct {
	kont.Phantom[runtime.Value]
	Name string
	Addr runtime.Address
}

// LocallyOp runs Body in a freshly pushed scope. The scope is popped on every
// exit path, normal or aborting.
type LocallyOp struct {
	kont.Phantom[runtime.Value]
	Body Eff
}

//-----------------------------------------------------------------------------
// Heap effect
//-----------------------------------------------------------------------------

// AllocOp reserves a fresh, uninitialized address.
type AllocOp struct {
	kont.Phantom[runtime.Address]
}

// DerefOp reads the value at an address. Uninitialized addresses raise a
// resumable AddressError.
type DerefOp struct {
	kont.Phantom[runtime.Value]
	Addr runtime.Address
}

// AssignOp stores a value at an address and resumes with unit.
type AssignOp struct {
	kont.Phantom[runtime.Value]
	Addr  runtime.Address
	Value runtime.Value
}

//-----------------------------------------------------------------------------
// Value capability requests
//-----------------------------------------------------------------------------

// LiteralOp introduces a scalar literal through the domain's introduction
// operations. Composite literals are assembled by the driving evaluator from
// their evaluated parts.
type LiteralOp struct {
	kont.Phantom[runtime.Value]
	Node ast.Node
}

// KVPairOp introduces a key-value pair from evaluated parts.
type KVPairOp struct {
	kont.Phantom[runtime.Value]
	Key runtime.Value
	Val runtime.Value
}

// HashOp introduces a hash from evaluated pair values.
type HashOp struct {
	kont.Phantom[runtime.Value]
	Pairs []runtime.Value
}

// Numeric1Op applies a unary numeric transform.
type Numeric1Op struct {
	kont.Phantom[runtime.Value]
	Op    runtime.NumericOp
	Value runtime.Value
}

// Numeric2Op applies a binary numeric transform with domain-defined promotion
// across mismatched numeric kinds.
type Numeric2Op struct {
	kont.Phantom[runtime.Value]
	Op runtime.NumericOp
	A  runtime.Value
	B  runtime.Value
}

// Bitwise1Op applies a unary bitwise transform over integral values.
type Bitwise1Op struct {
	kont.Phantom[runtime.Value]
	Op    runtime.BitwiseOp
	Value runtime.Value
}

// Bitwise2Op applies a binary bitwise transform over integral values.
type Bitwise2Op struct {
	kont.Phantom[runtime.Value]
	Op runtime.BitwiseOp
	A  runtime.Value
	B  runtime.Value
}

// UnsignedShiftROp applies the dedicated unsigned right shift.
type UnsignedShiftROp struct {
	kont.Phantom[runtime.Value]
	A runtime.Value
	B runtime.Value
}

// ComparisonOp compares two values under the given comparator.
type ComparisonOp struct {
	kont.Phantom[runtime.Value]
	Cmp runtime.Comparator
	A   runtime.Value
	B   runtime.Value
}

// CastToIntegerOp converts a numeric value to the domain's integer kind.
type CastToIntegerOp struct {
	kont.Phantom[runtime.Value]
	Value runtime.Value
}

// AsStringOp extracts native text from a value.
type AsStringOp struct {
	kont.Phantom[string]
	Value runtime.Value
}

// PairPartsOp extracts a key-value pair as a 2-tuple.
type PairPartsOp struct {
	kont.Phantom[runtime.Value]
	Value runtime.Value
}

// TupleOp builds a tuple from an ordered address list.
type TupleOp struct {
	kont.Phantom[runtime.Value]
	Elements []runtime.Address
}

// ArrayOp builds an array from an ordered address list.
type ArrayOp struct {
	kont.Phantom[runtime.Value]
	Elements []runtime.Address
}

// IndexOp performs zero-based lookup, resuming with the address of element i
// so the caller may mutate through it.
type IndexOp struct {
	kont.Phantom[runtime.Address]
	Value runtime.Value
	I     int
}

//-----------------------------------------------------------------------------
// Scoped objects
//-----------------------------------------------------------------------------

// NamespaceOp runs Body in a fresh scope, captures that scope's own frame,
// builds a namespace value combined with the ancestor's scope, stores it at
// Addr, and resumes with the value.
type NamespaceOp struct {
	kont.Phantom[runtime.Value]
	Name     string
	Addr     runtime.Address
	Ancestor runtime.Address // zero when the namespace has no ancestor
	Body     Eff
}

// KlassOp runs Body in a fresh scope, captures that scope's own frame, builds
// a class value with the given ordered superclass list, stores it at Addr,
// and resumes with the value.
type KlassOp struct {
	kont.Phantom[runtime.Value]
	Name   string
	Addr   runtime.Address
	Supers []runtime.Address
	Body   Eff
}

// InScopedEnvOp runs Body with the receiver bound as self and the environment
// rebound to the receiver's scoped environment. Receivers without a scoped
// environment keep the ambient environment.
type InScopedEnvOp struct {
	kont.Phantom[runtime.Value]
	Receiver runtime.Address
	Body     Eff
}

//-----------------------------------------------------------------------------
// Resumable error channel
//-----------------------------------------------------------------------------

// RaiseOp raises a typed error. A handler may substitute a recovery value and
// resume; otherwise the enclosing evaluation aborts with the error.
type RaiseOp struct {
	kont.Phantom[runtime.Value]
	Err error
}
