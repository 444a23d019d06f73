package runtime

import "fmt"

// NumericOp enumerates the transforms accepted by the numeric lift operations.
type NumericOp int

const (
	NumericAdd NumericOp = iota
	NumericSub
	NumericMul
	NumericDiv
	NumericMod
	NumericNeg
	NumericAbs
)

func (op NumericOp) String() string {
	switch op {
	case NumericAdd:
		return "+"
	case NumericSub:
		return "-"
	case NumericMul:
		return "*"
	case NumericDiv:
		return "/"
	case NumericMod:
		return "%"
	case NumericNeg:
		return "neg"
	case NumericAbs:
		return "abs"
	default:
		return fmt.Sprintf("numeric_op_%d", int(op))
	}
}

// BitwiseOp enumerates the transforms accepted by the bitwise lift operations.
// Unsigned right shift is a dedicated Domain operation, not a BitwiseOp, since
// sign and width conventions vary by source language.
type BitwiseOp int

const (
	BitwiseAnd BitwiseOp = iota
	BitwiseOr
	BitwiseXor
	BitwiseComplement
	BitwiseShiftL
	BitwiseShiftR
)

func (op BitwiseOp) String() string {
	switch op {
	case BitwiseAnd:
		return "&"
	case BitwiseOr:
		return "|"
	case BitwiseXor:
		return "^"
	case BitwiseComplement:
		return "~"
	case BitwiseShiftL:
		return "<<"
	case BitwiseShiftR:
		return ">>"
	default:
		return fmt.Sprintf("bitwise_op_%d", int(op))
	}
}

// CompareOp enumerates comparison operations.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareNe
	CompareLt
	CompareLe
	CompareGt
	CompareGe
	CompareSpaceship
)

func (op CompareOp) String() string {
	switch op {
	case CompareEq:
		return "=="
	case CompareNe:
		return "!="
	case CompareLt:
		return "<"
	case CompareLe:
		return "<="
	case CompareGt:
		return ">"
	case CompareGe:
		return ">="
	case CompareSpaceship:
		return "<=>"
	default:
		return fmt.Sprintf("compare_op_%d", int(op))
	}
}

// Comparator selects between native ordering and domain-defined comparison.
// A concrete comparator applies Op using the domain's native total order. A
// generalized comparator routes to the domain's own multi-way comparison,
// which may legitimately disagree with native equality.
type Comparator struct {
	Op          CompareOp
	Generalized bool
}

// ConcreteComparator compares with the native total order for Op.
func ConcreteComparator(op CompareOp) Comparator {
	return Comparator{Op: op}
}

// GeneralizedComparator delegates to the domain's three-way comparison.
func GeneralizedComparator() Comparator {
	return Comparator{Op: CompareSpaceship, Generalized: true}
}
