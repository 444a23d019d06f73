package concrete

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

// Domain implements the value capability contract with concrete data.
//
// Integer-width convention: bitwise shifts operate on arbitrary-precision
// two's-complement integers; the dedicated unsigned right shift interprets
// its operand as a two's-complement 64-bit word.
type Domain struct{}

// New constructs the concrete domain.
func New() *Domain { return &Domain{} }

func (*Domain) Name() string { return "concrete" }

//-----------------------------------------------------------------------------
// Introduction
//-----------------------------------------------------------------------------

func (*Domain) Unit() runtime.Value { return UnitValue{} }

func (*Domain) Null() runtime.Value { return NullValue{} }

func (*Domain) Boolean(flag bool) runtime.Value { return BoolValue{Val: flag} }

func (*Domain) String(text string) runtime.Value { return StringValue{Val: text} }

func (*Domain) Symbol(name string) runtime.Value { return SymbolValue{Name: name} }

func (*Domain) Regex(pattern string) runtime.Value { return RegexValue{Pattern: pattern} }

func (*Domain) Integer(val *big.Int) runtime.Value {
	return IntegerValue{Val: new(big.Int).Set(val)}
}

func (*Domain) Float(val *apd.Decimal) runtime.Value {
	out := new(apd.Decimal)
	out.Set(val)
	return FloatValue{Val: out}
}

func (*Domain) Rational(val *big.Rat) runtime.Value {
	return RationalValue{Val: new(big.Rat).Set(val)}
}

func (*Domain) KVPair(key, val runtime.Value) runtime.Value {
	return PairValue{Key: key, Val: val}
}

func (*Domain) Hash(pairs []runtime.Value) runtime.Value {
	out := make([]runtime.Value, len(pairs))
	copy(out, pairs)
	return &HashValue{Pairs: out}
}

//-----------------------------------------------------------------------------
// Elimination
//-----------------------------------------------------------------------------

func (*Domain) AsBool(v runtime.Value) (bool, error) {
	b, ok := v.(BoolValue)
	if !ok {
		return false, runtime.TypeError{Op: "asBool", Have: v.Kind(), Want: "bool"}
	}
	return b.Val, nil
}

func (*Domain) AsString(v runtime.Value) (string, error) {
	switch s := v.(type) {
	case StringValue:
		return s.Val, nil
	case SymbolValue:
		return s.Name, nil
	default:
		return "", runtime.TypeError{Op: "asString", Have: v.Kind(), Want: "string"}
	}
}

func (*Domain) AsPair(v runtime.Value, h runtime.Heap) (runtime.Value, error) {
	pair, ok := v.(PairValue)
	if !ok {
		return nil, runtime.TypeError{Op: "asPair", Have: v.Kind(), Want: "pair"}
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
	switch n := v.(type) {
	case IntegerValue:
		return n, nil
	case FloatValue:
		out, err := bigIntFromDecimal(n.Val)
		if err != nil {
			return nil, err
		}
		return IntegerValue{Val: out}, nil
	case RationalValue:
		out := new(big.Int).Quo(n.Val.Num(), n.Val.Denom())
		return IntegerValue{Val: out}, nil
	default:
		return nil, runtime.TypeError{Op: "castToInteger", Have: v.Kind(), Want: "numeric"}
	}
}

func (*Domain) LiftNumeric(op runtime.NumericOp, v runtime.Value) (runtime.Value, error) {
	switch n := v.(type) {
	case IntegerValue:
		out := new(big.Int).Set(n.Val)
		switch op {
		case runtime.NumericNeg:
			out.Neg(out)
		case runtime.NumericAbs:
			out.Abs(out)
		default:
			return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "unary numeric op"}
		}
		return IntegerValue{Val: out}, nil
	case FloatValue:
		out := new(apd.Decimal)
		switch op {
		case runtime.NumericNeg:
			out.Neg(n.Val)
		case runtime.NumericAbs:
			out.Abs(n.Val)
		default:
			return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "unary numeric op"}
		}
		return FloatValue{Val: out}, nil
	case RationalValue:
		out := new(big.Rat).Set(n.Val)
		switch op {
		case runtime.NumericNeg:
			out.Neg(out)
		case runtime.NumericAbs:
			out.Abs(out)
		default:
			return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "unary numeric op"}
		}
		return RationalValue{Val: out}, nil
	default:
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "numeric"}
	}
}

func (*Domain) LiftNumeric2(op runtime.NumericOp, a, b runtime.Value) (runtime.Value, error) {
	ra, okA := rankOf(a)
	rb, okB := rankOf(b)
	if !okA {
		return nil, runtime.TypeError{Op: op.String(), Have: a.Kind(), Want: "numeric"}
	}
	if !okB {
		return nil, runtime.TypeError{Op: op.String(), Have: b.Kind(), Want: "numeric"}
	}
	rank := ra
	if rb > rank {
		rank = rb
	}
	switch rank {
	case rankInteger:
		return applyInteger(op, a.(IntegerValue).Val, b.(IntegerValue).Val)
	case rankRational:
		qa, err := rationalOf(a)
		if err != nil {
			return nil, err
		}
		qb, err := rationalOf(b)
		if err != nil {
			return nil, err
		}
		return applyRational(op, qa, qb)
	default:
		da, err := decimalOf(a)
		if err != nil {
			return nil, err
		}
		db, err := decimalOf(b)
		if err != nil {
			return nil, err
		}
		return applyDecimal(op, da, db)
	}
}

func (*Domain) LiftBitwise(op runtime.BitwiseOp, v runtime.Value) (runtime.Value, error) {
	n, ok := v.(IntegerValue)
	if !ok {
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "integer"}
	}
	if op != runtime.BitwiseComplement {
		return nil, runtime.TypeError{Op: op.String(), Have: v.Kind(), Want: "unary bitwise op"}
	}
	return IntegerValue{Val: new(big.Int).Not(n.Val)}, nil
}

func (*Domain) LiftBitwise2(op runtime.BitwiseOp, a, b runtime.Value) (runtime.Value, error) {
	na, ok := a.(IntegerValue)
	if !ok {
		return nil, runtime.TypeError{Op: op.String(), Have: a.Kind(), Want: "integer"}
	}
	nb, ok := b.(IntegerValue)
	if !ok {
		return nil, runtime.TypeError{Op: op.String(), Have: b.Kind(), Want: "integer"}
	}
	out := new(big.Int)
	switch op {
	case runtime.BitwiseAnd:
		out.And(na.Val, nb.Val)
	case runtime.BitwiseOr:
		out.Or(na.Val, nb.Val)
	case runtime.BitwiseXor:
		out.Xor(na.Val, nb.Val)
	case runtime.BitwiseShiftL, runtime.BitwiseShiftR:
		shift, err := shiftCount(nb.Val)
		if err != nil {
			return nil, err
		}
		if op == runtime.BitwiseShiftL {
			out.Lsh(na.Val, shift)
		} else {
			out.Rsh(na.Val, shift)
		}
	default:
		return nil, runtime.TypeError{Op: op.String(), Have: a.Kind(), Want: "binary bitwise op"}
	}
	return IntegerValue{Val: out}, nil
}

// UnsignedShiftR interprets its operand as a two's-complement 64-bit word.
// Operands outside int64 range, or shift counts outside [0, 63], raise a
// TypeError.
func (*Domain) UnsignedShiftR(a, b runtime.Value) (runtime.Value, error) {
	na, ok := a.(IntegerValue)
	if !ok {
		return nil, runtime.TypeError{Op: ">>>", Have: a.Kind(), Want: "integer"}
	}
	nb, ok := b.(IntegerValue)
	if !ok {
		return nil, runtime.TypeError{Op: ">>>", Have: b.Kind(), Want: "integer"}
	}
	if !na.Val.IsInt64() {
		return nil, runtime.TypeError{Op: ">>>", Have: a.Kind(), Want: "64-bit integer"}
	}
	if !nb.Val.IsInt64() || nb.Val.Sign() < 0 || nb.Val.Int64() > 63 {
		return nil, runtime.TypeError{Op: ">>>", Have: b.Kind(), Want: "shift count in [0, 63]"}
	}
	word := uint64(na.Val.Int64()) >> uint(nb.Val.Int64())
	return IntegerValue{Val: new(big.Int).SetUint64(word)}, nil
}

func (d *Domain) LiftComparison(cmp runtime.Comparator, a, b runtime.Value) (runtime.Value, error) {
	if cmp.Generalized {
		order, err := d.spaceship(a, b)
		if err != nil {
			return nil, err
		}
		return IntegerValue{Val: big.NewInt(int64(order))}, nil
	}
	order, err := d.nativeOrder(a, b)
	if err != nil {
		return nil, err
	}
	switch cmp.Op {
	case runtime.CompareEq:
		return BoolValue{Val: order == 0}, nil
	case runtime.CompareNe:
		return BoolValue{Val: order != 0}, nil
	case runtime.CompareLt:
		return BoolValue{Val: order < 0}, nil
	case runtime.CompareLe:
		return BoolValue{Val: order <= 0}, nil
	case runtime.CompareGt:
		return BoolValue{Val: order > 0}, nil
	case runtime.CompareGe:
		return BoolValue{Val: order >= 0}, nil
	case runtime.CompareSpaceship:
		return IntegerValue{Val: big.NewInt(int64(order))}, nil
	default:
		return nil, runtime.TypeError{Op: cmp.Op.String(), Have: a.Kind(), Want: "comparison op"}
	}
}

// nativeOrder is the concrete total order over comparable kinds.
func (d *Domain) nativeOrder(a, b runtime.Value) (int, error) {
	if _, ok := rankOf(a); ok {
		return compareNumeric(a, b)
	}
	switch x := a.(type) {
	case StringValue:
		y, ok := b.(StringValue)
		if !ok {
			return 0, runtime.TypeError{Op: "compare", Have: b.Kind(), Want: "string"}
		}
		return strings.Compare(x.Val, y.Val), nil
	case SymbolValue:
		y, ok := b.(SymbolValue)
		if !ok {
			return 0, runtime.TypeError{Op: "compare", Have: b.Kind(), Want: "symbol"}
		}
		return strings.Compare(x.Name, y.Name), nil
	case BoolValue:
		y, ok := b.(BoolValue)
		if !ok {
			return 0, runtime.TypeError{Op: "compare", Have: b.Kind(), Want: "bool"}
		}
		switch {
		case x.Val == y.Val:
			return 0, nil
		case y.Val:
			return -1, nil
		default:
			return 1, nil
		}
	case UnitValue:
		if _, ok := b.(UnitValue); ok {
			return 0, nil
		}
		return 0, runtime.TypeError{Op: "compare", Have: b.Kind(), Want: "unit"}
	case NullValue:
		if _, ok := b.(NullValue); ok {
			return 0, nil
		}
		return 0, runtime.TypeError{Op: "compare", Have: b.Kind(), Want: "null"}
	default:
		return 0, runtime.TypeError{Op: "compare", Have: a.Kind(), Want: "comparable"}
	}
}

// spaceship is the domain's own three-way comparison; it shares the concrete
// total order.
func (d *Domain) spaceship(a, b runtime.Value) (int, error) {
	return d.nativeOrder(a, b)
}

//-----------------------------------------------------------------------------
// Structure
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

//-----------------------------------------------------------------------------
// Scoped objects
//-----------------------------------------------------------------------------

// Klass keeps the declared superclass order; linearization is left to callers.
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

//-----------------------------------------------------------------------------
// Rendering
//-----------------------------------------------------------------------------

func (d *Domain) Show(v runtime.Value) string {
	switch s := v.(type) {
	case UnitValue:
		return "()"
	case NullValue:
		return "null"
	case BoolValue:
		return fmt.Sprintf("%t", s.Val)
	case StringValue:
		return fmt.Sprintf("%q", s.Val)
	case SymbolValue:
		return ":" + s.Name
	case RegexValue:
		return "/" + s.Pattern + "/"
	case IntegerValue:
		return s.Val.String()
	case FloatValue:
		return s.Val.String()
	case RationalValue:
		return s.Val.RatString()
	case PairValue:
		return d.Show(s.Key) + " => " + d.Show(s.Val)
	case *HashValue:
		parts := make([]string, 0, len(s.Pairs))
		for _, pair := range s.Pairs {
			parts = append(parts, d.Show(pair))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *runtime.TupleValue:
		return "(" + showAddresses(s.Elements) + ")"
	case *runtime.ArrayValue:
		return "[" + showAddresses(s.Elements) + "]"
	case *runtime.ClosureValue:
		if s.Name != "" {
			return "fn " + s.Name
		}
		return "fn"
	case runtime.BuiltinValue:
		return "builtin " + string(s.Tag)
	case *runtime.ClassValue:
		return "class " + s.Name
	case *runtime.NamespaceValue:
		return "namespace " + s.Name
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

func showAddresses(addrs []runtime.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		parts = append(parts, addr.String())
	}
	return strings.Join(parts, ", ")
}

func shiftCount(n *big.Int) (uint, error) {
	if n.Sign() < 0 || !n.IsInt64() || n.Int64() > 4096 {
		return 0, runtime.TypeError{Op: "shift", Have: runtime.KindInteger, Want: "shift count in [0, 4096]"}
	}
	return uint(n.Int64()), nil
}
