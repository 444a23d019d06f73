package runtime

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Domain is the value capability contract: everything a pluggable
// interpretation of "what a value is" must support. The shared control-flow
// machinery consults a Domain to construct and inspect values and never
// assumes any particular representation.
//
// Introduction operations are pure and total. Elimination operations are
// effectful and fail with the typed errors in errors.go, never by silently
// coercing to a default.
type Domain interface {
	// Name identifies the domain in logs and diagnostics.
	Name() string

	// Introduction.
	Unit() Value
	Null() Value
	Boolean(flag bool) Value
	String(text string) Value
	Symbol(name string) Value
	Regex(pattern string) Value
	Integer(val *big.Int) Value
	Float(val *apd.Decimal) Value
	Rational(val *big.Rat) Value
	KVPair(key, val Value) Value
	Hash(pairs []Value) Value

	// Elimination.
	AsBool(v Value) (bool, error)
	AsString(v Value) (string, error)
	// AsPair extracts a key-value pair as a 2-tuple of freshly boxed parts.
	AsPair(v Value, h Heap) (Value, error)
	CastToInteger(v Value) (Value, error)

	// Numeric and bitwise lifts. Binary numeric lifts apply domain-defined
	// promotion across mismatched numeric kinds (e.g. int+float -> float).
	// Bitwise lifts are restricted to integrally representable values.
	LiftNumeric(op NumericOp, v Value) (Value, error)
	LiftNumeric2(op NumericOp, a, b Value) (Value, error)
	LiftBitwise(op BitwiseOp, v Value) (Value, error)
	LiftBitwise2(op BitwiseOp, a, b Value) (Value, error)
	// UnsignedShiftR is deliberately separate from LiftBitwise2; each domain
	// documents its own sign/width convention.
	UnsignedShiftR(a, b Value) (Value, error)

	// LiftComparison applies cmp. Concrete comparators use the native total
	// order; generalized comparators use the domain's own three-way semantics.
	LiftComparison(cmp Comparator, a, b Value) (Value, error)

	// Structure. Tuples and arrays are built from ordered address lists;
	// Index returns the address of element i so callers may mutate through it.
	Tuple(elements []Address) (Value, error)
	Array(elements []Address) (Value, error)
	Index(v Value, i int) (Address, error)

	// Scoped objects. Klass captures an ordered superclass list and a bindings
	// snapshot. Namespace combines an ancestor's scope with new bindings.
	// ScopedBindings returns the scope carried by a scoped value; false means
	// the value is not a scoped object.
	Klass(name string, supers []Address, bindings map[string]Address) (Value, error)
	Namespace(name string, ancestor, bindings map[string]Address) (Value, error)
	ScopedBindings(v Value) (map[string]Address, bool)

	// Show renders a value for diagnostics and the print/show builtins.
	Show(v Value) string
}
