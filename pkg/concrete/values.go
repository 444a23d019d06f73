// Package concrete is the concrete-execution domain: values are actual
// runtime data and every operation computes real results.
package concrete

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"github.com/kudryavchik/semantic/pkg/runtime"
)

type UnitValue struct{}

func (UnitValue) Kind() runtime.Kind { return runtime.KindUnit }

type NullValue struct{}

func (NullValue) Kind() runtime.Kind { return runtime.KindNull }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() runtime.Kind { return runtime.KindBool }

type StringValue struct {
	Val string
}

func (StringValue) Kind() runtime.Kind { return runtime.KindString }

type SymbolValue struct {
	Name string
}

func (SymbolValue) Kind() runtime.Kind { return runtime.KindSymbol }

// RegexValue keeps the source pattern. Patterns are validated when term
// documents are decoded, before any value is constructed.
type RegexValue struct {
	Pattern string
}

func (RegexValue) Kind() runtime.Kind { return runtime.KindRegex }

type IntegerValue struct {
	Val *big.Int
}

func (IntegerValue) Kind() runtime.Kind { return runtime.KindInteger }

// NativeIndex surfaces the integer as a collection index when it fits.
func (v IntegerValue) NativeIndex() (int, bool) {
	if !v.Val.IsInt64() {
		return 0, false
	}
	n := v.Val.Int64()
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}

type FloatValue struct {
	Val *apd.Decimal
}

func (FloatValue) Kind() runtime.Kind { return runtime.KindFloat }

type RationalValue struct {
	Val *big.Rat
}

func (RationalValue) Kind() runtime.Kind { return runtime.KindRational }

type PairValue struct {
	Key runtime.Value
	Val runtime.Value
}

func (PairValue) Kind() runtime.Kind { return runtime.KindPair }

type HashValue struct {
	Pairs []runtime.Value
}

func (*HashValue) Kind() runtime.Kind { return runtime.KindHash }
