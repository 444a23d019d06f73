package runtime

import (
	"fmt"

	"github.com/kudryavchik/semantic/pkg/term"
)

// Kind identifies the runtime value category. Domains are free to support a
// subset; eliminating a value of an unsupported kind raises a TypeError.
type Kind int

const (
	KindUnit Kind = iota
	KindNull
	KindBool
	KindString
	KindSymbol
	KindRegex
	KindInteger
	KindFloat
	KindRational
	KindPair
	KindHash
	KindTuple
	KindArray
	KindClosure
	KindBuiltin
	KindClass
	KindNamespace
	KindTop
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindRegex:
		return "regex"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindRational:
		return "rational"
	case KindPair:
		return "pair"
	case KindHash:
		return "hash"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindClosure:
		return "closure"
	case KindBuiltin:
		return "builtin"
	case KindClass:
		return "class"
	case KindNamespace:
		return "namespace"
	case KindTop:
		return "top"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all domain values. A value never carries a
// raw heap address of its own result; addresses are obtained only through
// explicit allocation and resolution.
type Value interface {
	Kind() Kind
}

// NativeIndexer is implemented by domain values that can surface a native
// collection index. Domains whose integers are abstract simply do not
// implement it, and indexing through them raises a resumable TypeError.
type NativeIndexer interface {
	NativeIndex() (int, bool)
}

// BuiltinTag names a built-in function.
type BuiltinTag string

const (
	BuiltinPrint BuiltinTag = "print"
	BuiltinShow  BuiltinTag = "show"
)

//-----------------------------------------------------------------------------
// Function representations shared by all domains
//-----------------------------------------------------------------------------

// ClosureValue is a user function: an optional name, ordered parameter names,
// and an opaque body handle into an external term store. The captured
// environment is the closure strategy every shipped domain uses; a domain with
// a different capture policy may define its own function kind.
type ClosureValue struct {
	Name   string
	Params []string
	Body   term.Handle
	Env    *Environment
}

func (v *ClosureValue) Kind() Kind { return KindClosure }

// BuiltinValue is a tagged built-in function.
type BuiltinValue struct {
	Tag BuiltinTag
}

func (v BuiltinValue) Kind() Kind { return KindBuiltin }

//-----------------------------------------------------------------------------
// Structural values shared by all domains
//-----------------------------------------------------------------------------

// TupleValue holds its elements by address so that indexing yields a mutable
// location rather than a copy.
type TupleValue struct {
	Elements []Address
}

func (v *TupleValue) Kind() Kind { return KindTuple }

// ArrayValue holds its elements by address, like TupleValue.
type ArrayValue struct {
	Elements []Address
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// ClassValue captures an ordered superclass list and a bindings snapshot.
// Linearization of the superclass list is domain policy.
type ClassValue struct {
	Name     string
	Supers   []Address
	Bindings map[string]Address
}

func (v *ClassValue) Kind() Kind { return KindClass }

// NamespaceValue is the combination of an ancestor's scope with the bindings
// introduced in the namespace body. The bindings are a snapshot, never a live
// view of any environment frame.
type NamespaceValue struct {
	Name     string
	Bindings map[string]Address
}

func (v *NamespaceValue) Kind() Kind { return KindNamespace }

// MergeBindings overlays child bindings on top of ancestor bindings, copying
// both inputs.
func MergeBindings(ancestor, child map[string]Address) map[string]Address {
	out := make(map[string]Address, len(ancestor)+len(child))
	for k, v := range ancestor {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}
