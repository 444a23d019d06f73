package typedomain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

func TestIntroductionErasesToKinds(t *testing.T) {
	d := New()
	if got := d.Integer(big.NewInt(123456)); got.Kind() != runtime.KindInteger {
		t.Fatalf("integer literal abstracts to %s", got.Kind())
	}
	if got := d.String("whatever"); got.Kind() != runtime.KindString {
		t.Fatalf("string literal abstracts to %s", got.Kind())
	}
}

func TestAsBoolZeroIterationPolicy(t *testing.T) {
	d := New()
	flag, err := d.AsBool(d.Boolean(true))
	if err != nil || flag {
		t.Fatalf("asBool(Bool) yielded (%t, %v), want (false, nil)", flag, err)
	}
	flag, err = d.AsBool(Top())
	if err != nil || flag {
		t.Fatalf("asBool(Top) yielded (%t, %v), want (false, nil)", flag, err)
	}
	_, err = d.AsBool(d.Integer(big.NewInt(1)))
	var typeErr runtime.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("asBool(Int): got %v, want TypeError", err)
	}
}

func TestNumericPromotionAtTypeLevel(t *testing.T) {
	d := New()
	intT := d.Integer(big.NewInt(0))
	ratT := d.Rational(big.NewRat(1, 2))
	floatT := d.Float(nil)

	tests := []struct {
		name string
		a, b runtime.Value
		want runtime.Kind
	}{
		{"int with int", intT, intT, runtime.KindInteger},
		{"int with rational", intT, ratT, runtime.KindRational},
		{"int with float", intT, floatT, runtime.KindFloat},
		{"rational with float", ratT, floatT, runtime.KindFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.LiftNumeric2(runtime.NumericAdd, tt.a, tt.b)
			if err != nil {
				t.Fatalf("lift: %v", err)
			}
			if got.Kind() != tt.want {
				t.Fatalf("result type %s, want %s", got.Kind(), tt.want)
			}
		})
	}
}

func TestTopAbsorbsNumericLifts(t *testing.T) {
	d := New()
	got, err := d.LiftNumeric2(runtime.NumericAdd, Top(), d.Integer(big.NewInt(0)))
	if err != nil {
		t.Fatalf("lift over top: %v", err)
	}
	if got.Kind() != runtime.KindTop {
		t.Fatalf("result is %s, want top", got.Kind())
	}
}

func TestRationalModRejectedAtTypeLevel(t *testing.T) {
	d := New()
	_, err := d.LiftNumeric2(runtime.NumericMod, d.Rational(big.NewRat(1, 2)), d.Integer(big.NewInt(1)))
	var typeErr runtime.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("rational mod: got %v, want TypeError", err)
	}
}

func TestComparisonTypes(t *testing.T) {
	d := New()
	intT := d.Integer(big.NewInt(0))

	boolT, err := d.LiftComparison(runtime.ConcreteComparator(runtime.CompareLt), intT, d.Float(nil))
	if err != nil || boolT.Kind() != runtime.KindBool {
		t.Fatalf("int < float yielded (%v, %v), want the bool type", boolT, err)
	}

	ship, err := d.LiftComparison(runtime.ConcreteComparator(runtime.CompareSpaceship), intT, intT)
	if err != nil || ship.Kind() != runtime.KindInteger {
		t.Fatalf("spaceship yielded (%v, %v), want the integer type", ship, err)
	}

	general, err := d.LiftComparison(runtime.GeneralizedComparator(), d.String(""), d.String(""))
	if err != nil || general.Kind() != runtime.KindInteger {
		t.Fatalf("generalized comparison yielded (%v, %v), want the integer type", general, err)
	}

	if _, err := d.LiftComparison(runtime.ConcreteComparator(runtime.CompareLt), d.String(""), intT); err == nil {
		t.Fatal("string < int type-checked, want TypeError")
	}
}

func TestUnsignedShiftRType(t *testing.T) {
	d := New()
	intT := d.Integer(big.NewInt(0))
	got, err := d.UnsignedShiftR(intT, intT)
	if err != nil || got.Kind() != runtime.KindInteger {
		t.Fatalf("int >>> int yielded (%v, %v), want the integer type", got, err)
	}
	if _, err := d.UnsignedShiftR(d.String(""), intT); err == nil {
		t.Fatal("string >>> int type-checked, want TypeError")
	}
}

func TestAsPairSplitsComponentTypes(t *testing.T) {
	d := New()
	h := runtime.NewStoreHeap()
	pair := d.KVPair(d.Symbol("k"), d.Integer(big.NewInt(0)))
	v, err := d.AsPair(pair, h)
	if err != nil {
		t.Fatalf("asPair: %v", err)
	}
	tuple := v.(*runtime.TupleValue)
	key, err := h.Deref(tuple.Elements[0])
	if err != nil || key.Kind() != runtime.KindSymbol {
		t.Fatalf("key component is (%v, %v), want the symbol type", key, err)
	}
	val, err := h.Deref(tuple.Elements[1])
	if err != nil || val.Kind() != runtime.KindInteger {
		t.Fatalf("value component is (%v, %v), want the integer type", val, err)
	}
}

func TestShowRendersTypeNames(t *testing.T) {
	d := New()
	if got := d.Show(d.Integer(big.NewInt(0))); got != "Integer" {
		t.Fatalf("Show(Int type) = %q", got)
	}
	if got := d.Show(Top()); got != "Top" {
		t.Fatalf("Show(Top) = %q", got)
	}
	if got := d.Show(d.KVPair(d.Symbol(""), d.Boolean(false))); got != "Symbol => Bool" {
		t.Fatalf("Show(pair type) = %q", got)
	}
}
