package concrete

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

// numericRank orders the promotion ladder: integer < rational < float.
// Binary numeric lifts promote both operands to the higher rank.
type numericRank int

const (
	rankInteger numericRank = iota
	rankRational
	rankFloat
)

// decCtx is the shared decimal context (decimal128-ish precision, as used by
// the literal pipeline).
var decCtx = apd.BaseContext.WithPrecision(34)

func rankOf(v runtime.Value) (numericRank, bool) {
	switch v.(type) {
	case IntegerValue:
		return rankInteger, true
	case RationalValue:
		return rankRational, true
	case FloatValue:
		return rankFloat, true
	default:
		return 0, false
	}
}

func decimalOf(v runtime.Value) (*apd.Decimal, error) {
	switch n := v.(type) {
	case FloatValue:
		return n.Val, nil
	case IntegerValue:
		coeff := new(apd.BigInt).SetMathBigInt(n.Val)
		return apd.NewWithBigInt(coeff, 0), nil
	case RationalValue:
		num := apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(n.Val.Num()), 0)
		den := apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(n.Val.Denom()), 0)
		out := new(apd.Decimal)
		if _, err := decCtx.Quo(out, num, den); err != nil {
			return nil, runtime.TypeError{Op: "promote", Have: v.Kind(), Want: "representable rational"}
		}
		return out, nil
	default:
		return nil, runtime.TypeError{Op: "promote", Have: v.Kind(), Want: "numeric"}
	}
}

func rationalOf(v runtime.Value) (*big.Rat, error) {
	switch n := v.(type) {
	case RationalValue:
		return n.Val, nil
	case IntegerValue:
		return new(big.Rat).SetInt(n.Val), nil
	default:
		return nil, runtime.TypeError{Op: "promote", Have: v.Kind(), Want: "rational"}
	}
}

func applyInteger(op runtime.NumericOp, a, b *big.Int) (runtime.Value, error) {
	out := new(big.Int)
	switch op {
	case runtime.NumericAdd:
		out.Add(a, b)
	case runtime.NumericSub:
		out.Sub(a, b)
	case runtime.NumericMul:
		out.Mul(a, b)
	case runtime.NumericDiv:
		if b.Sign() == 0 {
			return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindInteger, Want: "nonzero divisor"}
		}
		out.Quo(a, b)
	case runtime.NumericMod:
		if b.Sign() == 0 {
			return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindInteger, Want: "nonzero divisor"}
		}
		out.Rem(a, b)
	default:
		return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindInteger, Want: "binary numeric op"}
	}
	return IntegerValue{Val: out}, nil
}

func applyRational(op runtime.NumericOp, a, b *big.Rat) (runtime.Value, error) {
	out := new(big.Rat)
	switch op {
	case runtime.NumericAdd:
		out.Add(a, b)
	case runtime.NumericSub:
		out.Sub(a, b)
	case runtime.NumericMul:
		out.Mul(a, b)
	case runtime.NumericDiv:
		if b.Sign() == 0 {
			return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindRational, Want: "nonzero divisor"}
		}
		out.Quo(a, b)
	default:
		return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindRational, Want: "rational-representable op"}
	}
	return RationalValue{Val: out}, nil
}

func applyDecimal(op runtime.NumericOp, a, b *apd.Decimal) (runtime.Value, error) {
	out := new(apd.Decimal)
	var err error
	switch op {
	case runtime.NumericAdd:
		_, err = decCtx.Add(out, a, b)
	case runtime.NumericSub:
		_, err = decCtx.Sub(out, a, b)
	case runtime.NumericMul:
		_, err = decCtx.Mul(out, a, b)
	case runtime.NumericDiv:
		if b.IsZero() {
			return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindFloat, Want: "nonzero divisor"}
		}
		_, err = decCtx.Quo(out, a, b)
	case runtime.NumericMod:
		if b.IsZero() {
			return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindFloat, Want: "nonzero divisor"}
		}
		_, err = decCtx.Rem(out, a, b)
	default:
		return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindFloat, Want: "binary numeric op"}
	}
	if err != nil {
		return nil, runtime.TypeError{Op: op.String(), Have: runtime.KindFloat, Want: "representable result"}
	}
	return FloatValue{Val: out}, nil
}

// compareNumeric yields -1, 0, or 1 across any mix of numeric kinds.
func compareNumeric(a, b runtime.Value) (int, error) {
	ra, okA := rankOf(a)
	rb, okB := rankOf(b)
	if !okA || !okB {
		return 0, runtime.TypeError{Op: "compare", Have: a.Kind(), Want: "numeric"}
	}
	if ra == rankFloat || rb == rankFloat {
		da, err := decimalOf(a)
		if err != nil {
			return 0, err
		}
		db, err := decimalOf(b)
		if err != nil {
			return 0, err
		}
		return da.Cmp(db), nil
	}
	qa, err := rationalOf(a)
	if err != nil {
		return 0, err
	}
	qb, err := rationalOf(b)
	if err != nil {
		return 0, err
	}
	return qa.Cmp(qb), nil
}

// bigIntFromDecimal truncates toward zero.
func bigIntFromDecimal(d *apd.Decimal) (*big.Int, error) {
	trunc := new(apd.Decimal)
	ctx := decCtx.WithPrecision(200)
	ctx.Rounding = apd.RoundDown
	if _, err := ctx.RoundToIntegralValue(trunc, d); err != nil {
		return nil, runtime.TypeError{Op: "castToInteger", Have: runtime.KindFloat, Want: "finite float"}
	}
	coeff := trunc.Coeff.MathBigInt()
	out := new(big.Int).Set(coeff)
	if trunc.Exponent > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(trunc.Exponent)), nil)
		out.Mul(out, scale)
	}
	if trunc.Negative {
		out.Neg(out)
	}
	return out, nil
}
