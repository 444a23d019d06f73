// Package typedomain is a type-abstraction domain: every value is a type, and
// operations compute result types instead of results. It shares the control
// machinery with the concrete domain unchanged, which is the point.
package typedomain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

// Type is an abstract value identified by the kind it stands for.
type Type struct {
	K runtime.Kind
}

func (t Type) Kind() runtime.Kind { return t.K }

// PairType keeps the component types so pair elimination stays precise.
type PairType struct {
	Key runtime.Value
	Val runtime.Value
}

func (PairType) Kind() runtime.Kind { return runtime.KindPair }

// TopValue is the unknown type. Recovery hooks substitute it to continue past
// failed eliminations.
type TopValue struct{}

func (TopValue) Kind() runtime.Kind { return runtime.KindTop }

// Top is the recovery value for this domain.
func Top() runtime.Value { return TopValue{} }

type Domain struct{}

func New() *Domain { return &Domain{} }

func (*Domain) Name() string { return "type" }

//-----------------------------------------------------------------------------
// Introduction: literals carry no information beyond their kind.
//-----------------------------------------------------------------------------

func (*Domain) Unit() runtime.Value { return Type{K: runtime.KindUnit} }

func (*Domain) Null() runtime.Value { return Type{K: runtime.KindNull} }

func (*Domain) Boolean(bool) runtime.Value { return Type{K: runtime.KindBool} }

func (*Domain) String(string) runtime.Value { return Type{K: runtime.KindString} }

func (*Domain) Symbol(string) runtime.Value { return Type{K: runtime.KindSymbol} }

func (*Domain) Regex(string) runtime.Value { return Type{K: runtime.KindRegex} }

func (*Domain) Integer(*big.Int) runtime.Value { return Type{K: runtime.KindInteger} }

func (*Domain) Float(*apd.Decimal) runtime.Value { return Type{K: runtime.KindFloat} }

func (*Domain) Rational(*big.Rat) runtime.Value { return Type{K: runtime.KindRational} }

func (*Domain) KVPair(key, val runtime.Value) runtime.Value {
	return PairType{Key: key, Val: val}
}

func (*Domain) Hash([]runtime.Value) runtime.Value { return Type{K: runtime.KindHash} }

//-----------------------------------------------------------------------------
// Elimination
//-----------------------------------------------------------------------------

// AsBool yields false for the boolean type and for top. A branch condition of
// an abstract boolean has no concrete truth, so loops run zero iterations and
// conditionals take the else arm; bounding iteration differently is a policy
// for richer domains.
func (*Domain) AsBool(v runtime.Value) (bool, error) {
	switch v.Kind() {
	case runtime.KindBool, runtime.KindTop:
		return false, nil
	default:
		return false, runtime.TypeError{Op: "asBool", Have: v.Kind(), Want: "bool"}
	}
}

func (*Domain) AsString(v runtime.Value) (string, error) {
	switch v.Kind() {
	case runtime.KindString, runtime.KindSymbol:
		return "", nil
	default:
		return "", runtime.TypeError{Op: "asString", Have: v.Kind(), Want: "string"}
	}
}

func (*Domain) AsPair(v runtime.Value, h runtime.Heap) (runtime.Value, error) {
	pair, ok := v.(PairType)
	if !ok {
		if v.Kind() == runtime.KindPair || v.Kind() == runtime.KindTop {
			pair = PairType{Key: TopValue{}, Val: TopValue{}}
		} else {
			return nil, runtime.TypeError{Op: "asPair", Have: v.Kind(), Want: "pair"}
		}
	}
	keyAddr, err := runtime.Box(h, pair.Key)
	if err != nil {
		return nil, err
	}
	valAddr, err := runtime.Box(h, pair.Val)
	if err != nil {
		return nil, err
	}
	return &runtime.TupleValue{Elements: []runtime.Address{keyAddr, valAddr}}, nil
}

func (*Domain) CastToInteger(v runtime.Value) (runtime.Value, error) {
	switch v.Kind() {
	case runtime.KindInteger, runtime.KindFloat, runtime.KindRational, runtime.KindTop:
		return Type{K: runtime.KindInteger}, nil
	default:
		return nil, runtime.TypeError{Op: "castToInteger", Have: v.Kind(), Want: "numeric"}
	}
}

func numericRank(k runtime.Kind) (int, bool) {
	switch k {
	case runtime.KindInteger:
		return 0, true
	case runtime.KindRational:
		return 1, true
	case runtime.KindFloat:
		return 2, true
	default:
		return 0, false
	}
}

func kindOfRank(rank int) runtime.Kind {
	switch rank {
	case 0:
		return runtime.KindInteger
	case 1:
		return runtime.KindRational
	default:
		return runtime.KindFloat
	}
}

func (*Domain) LiftNumeric(op runtime.NumericOp, v runtime.Value) (runtime.Value, error) {
	if v.Kind() == runtime.KindTop {
		return TopValue{}, nil
	}
	if _, ok := numericRank(v.Kind()); !ok {
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "numeric"}
	}
	if op != runtime.NumericNeg && op != runtime.NumericAbs {
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "unary numeric op"}
	}
	return Type{K: v.Kind()}, nil
}

// LiftNumeric2 promotes at the type level: int < rational < float.
func (*Domain) LiftNumeric2(op runtime.NumericOp, a, b runtime.Value) (runtime.Value, error) {
	if a.Kind() == runtime.KindTop || b.Kind() == runtime.KindTop {
		return TopValue{}, nil
	}
	ra, okA := numericRank(a.Kind())
	if !okA {
		return nil, runtime.TypeError{Op: op.String(), Have: a.Kind(), Want: "numeric"}
	}
	rb, okB := numericRank(b.Kind())
	if !okB {
		return nil, runtime.TypeError{Op: op.String(), Have: b.Kind(), Want: "numeric"}
	}
	rank := ra
	if rb > rank {
		rank = rb
	}
	if op == runtime.NumericMod && rank == 1 {
		return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindRational, Want: "rational-representable op"}
	}
	return Type{K: kindOfRank(rank)}, nil
}

func (*Domain) LiftBitwise(op runtime.BitwiseOp, v runtime.Value) (runtime.Value, error) {
	if v.Kind() == runtime.KindTop {
		return TopValue{}, nil
	}
	if v.Kind() != runtime.KindInteger {
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "integer"}
	}
	if op != runtime.BitwiseComplement {
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "unary bitwise op"}
	}
	return Type{K: runtime.KindInteger}, nil
}

func (*Domain) LiftBitwise2(op runtime.BitwiseOp, a, b runtime.Value) (runtime.Value, error) {
	if a.Kind() == runtime.KindTop || b.Kind() == runtime.KindTop {
		return TopValue{}, nil
	}
	if a.Kind() != runtime.KindInteger {
		return nil, runtime.TypeError{Op: op.String(), Have: a.Kind(), Want: "integer"}
	}
	if b.Kind() != runtime.KindInteger {
		return nil, runtime.TypeError{Op: op.String(), Have: b.Kind(), Want: "integer"}
	}
	switch op {
	case runtime.BitwiseAnd, runtime.BitwiseOr, runtime.BitwiseXor,
		runtime.BitwiseShiftL, runtime.BitwiseShiftR:
		return Type{K: runtime.KindInteger}, nil
	default:
		return nil, runtime.TypeError{Op: op.String(), Have: a.Kind(), Want: "binary bitwise op"}
	}
}

// UnsignedShiftR abstracts the 64-bit word convention to int >> int = int.
func (d *Domain) UnsignedShiftR(a, b runtime.Value) (runtime.Value, error) {
	return d.LiftBitwise2(runtime.BitwiseShiftR, a, b)
}

func (*Domain) LiftComparison(cmp runtime.Comparator, a, b runtime.Value) (runtime.Value, error) {
	if err := comparableTypes(cmp, a, b); err != nil {
		return nil, err
	}
	if cmp.Generalized || cmp.Op == runtime.CompareSpaceship {
		return Type{K: runtime.KindInteger}, nil
	}
	return Type{K: runtime.KindBool}, nil
}

func comparableTypes(cmp runtime.Comparator, a, b runtime.Value) error {
	if a.Kind() == runtime.KindTop || b.Kind() == runtime.KindTop {
		return nil
	}
	if _, ok := numericRank(a.Kind()); ok {
		if _, ok := numericRank(b.Kind()); ok {
			return nil
		}
		return runtime.TypeError{Op: cmp.Op.String(), Have: b.Kind(), Want: "numeric"}
	}
	switch a.Kind() {
	case runtime.KindString, runtime.KindSymbol, runtime.KindBool,
		runtime.KindUnit, runtime.KindNull:
		if a.Kind() != b.Kind() {
			return runtime.TypeError{Op: cmp.Op.String(), Have: b.Kind(), Want: a.Kind().String()}
		}
		return nil
	default:
		return runtime.TypeError{Op: cmp.Op.String(), Have: a.Kind(), Want: "comparable"}
	}
}

//-----------------------------------------------------------------------------
// Structure and scoped objects: shared representations, as in the concrete
// domain. Addresses stay first-class so mutation analysis works unchanged.
//-----------------------------------------------------------------------------

func (*Domain) Tuple(elements []runtime.Address) (runtime.Value, error) {
	out := make([]runtime.Address, len(elements))
	copy(out, elements)
	return &runtime.TupleValue{Elements: out}, nil
}

func (*Domain) Array(elements []runtime.Address) (runtime.Value, error) {
	out := make([]runtime.Address, len(elements))
	copy(out, elements)
	return &runtime.ArrayValue{Elements: out}, nil
}

func (*Domain) Index(v runtime.Value, i int) (runtime.Address, error) {
	var elements []runtime.Address
	switch s := v.(type) {
	case *runtime.TupleValue:
		elements = s.Elements
	case *runtime.ArrayValue:
		elements = s.Elements
	default:
		return runtime.Address{}, runtime.TypeError{Op: "index", Have: v.Kind(), Want: "tuple or array"}
	}
	if i < 0 || i >= len(elements) {
		return runtime.Address{}, runtime.TypeError{
			Op:   "index",
			Have: v.Kind(),
			Want: fmt.Sprintf("index within [0, %d)", len(elements)),
		}
	}
	return elements[i], nil
}

func (*Domain) Klass(name string, supers []runtime.Address, bindings map[string]runtime.Address) (runtime.Value, error) {
	order := make([]runtime.Address, len(supers))
	copy(order, supers)
	return &runtime.ClassValue{
		Name:     name,
		Supers:   order,
		Bindings: runtime.MergeBindings(nil, bindings),
	}, nil
}

func (*Domain) Namespace(name string, ancestor, bindings map[string]runtime.Address) (runtime.Value, error) {
	return &runtime.NamespaceValue{
		Name:     name,
		Bindings: runtime.MergeBindings(ancestor, bindings),
	}, nil
}

func (*Domain) ScopedBindings(v runtime.Value) (map[string]runtime.Address, bool) {
	switch s := v.(type) {
	case *runtime.ClassValue:
		return s.Bindings, true
	case *runtime.NamespaceValue:
		return s.Bindings, true
	default:
		return nil, false
	}
}

func (d *Domain) Show(v runtime.Value) string {
	switch s := v.(type) {
	case TopValue:
		return "Top"
	case PairType:
		return d.Show(s.Key) + " => " + d.Show(s.Val)
	case Type:
		return titled(s.K)
	case *runtime.TupleValue:
		return fmt.Sprintf("Tuple/%d", len(s.Elements))
	case *runtime.ArrayValue:
		return fmt.Sprintf("Array/%d", len(s.Elements))
	case *runtime.ClosureValue:
		return fmt.Sprintf("Fn/%d", len(s.Params))
	case runtime.BuiltinValue:
		return "Builtin(" + string(s.Tag) + ")"
	case *runtime.ClassValue:
		return "Class(" + s.Name + ")"
	case *runtime.NamespaceValue:
		return "Namespace(" + s.Name + ")"
	default:
		return titled(v.Kind())
	}
}

func titled(k runtime.Kind) string {
	name := k.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
