package ast

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Node is the shared behaviour for all term nodes. Terms arrive pre-built
// (decoded from serialized documents); this package never parses source text.
type Node interface {
	Span() Span
}

type baseNode struct {
	span Span
}

func (n *baseNode) Span() Span        { return n.span }
func (n *baseNode) setSpan(span Span) { n.span = span }

//-----------------------------------------------------------------------------
// Literals
//-----------------------------------------------------------------------------

type UnitLiteral struct {
	baseNode
}

type NullLiteral struct {
	baseNode
}

type BooleanLiteral struct {
	baseNode
	Value bool
}

type IntegerLiteral struct {
	baseNode
	Value *big.Int
}

type FloatLiteral struct {
	baseNode
	Value *apd.Decimal
}

type RationalLiteral struct {
	baseNode
	Value *big.Rat
}

type StringLiteral struct {
	baseNode
	Value string
}

type SymbolLiteral struct {
	baseNode
	Name string
}

type RegexLiteral struct {
	baseNode
	Pattern string
}

// PairLiteral is a single key/value entry, usable standalone or inside a hash.
type PairLiteral struct {
	baseNode
	Key   Node
	Value Node
}

type HashLiteral struct {
	baseNode
	Pairs []*PairLiteral
}

type TupleLiteral struct {
	baseNode
	Elements []Node
}

type ArrayLiteral struct {
	baseNode
	Elements []Node
}

//-----------------------------------------------------------------------------
// References and assignment
//-----------------------------------------------------------------------------

type Identifier struct {
	baseNode
	Name string
}

// MemberAccess looks a name up inside the scoped environment of the receiver.
type MemberAccess struct {
	baseNode
	Receiver Node
	Name     string
}

type IndexExpression struct {
	baseNode
	Target Node
	Index  Node
}

// BindingExpression introduces a fresh binding in the current scope.
type BindingExpression struct {
	baseNode
	Name  string
	Value Node
}

// AssignmentExpression writes through an existing lvalue.
type AssignmentExpression struct {
	baseNode
	Target Node
	Value  Node
}

//-----------------------------------------------------------------------------
// Control flow
//-----------------------------------------------------------------------------

type BlockExpression struct {
	baseNode
	Body []Node
}

type IfExpression struct {
	baseNode
	Condition Node
	Then      Node
	Else      Node
}

// OrExpression is short-circuit disjunction; the right side is evaluated only
// when the left side is falsy in the active domain.
type OrExpression struct {
	baseNode
	Left  Node
	Right Node
}

type WhileExpression struct {
	baseNode
	Condition Node
	Body      Node
}

type DoWhileExpression struct {
	baseNode
	Body      Node
	Condition Node
}

type ForExpression struct {
	baseNode
	Init      Node
	Condition Node
	Step      Node
	Body      Node
}

//-----------------------------------------------------------------------------
// Operators
//-----------------------------------------------------------------------------

type UnaryExpression struct {
	baseNode
	Op      string
	Operand Node
}

type BinaryExpression struct {
	baseNode
	Op    string
	Left  Node
	Right Node
}

//-----------------------------------------------------------------------------
// Functions and scoped objects
//-----------------------------------------------------------------------------

type FunctionLiteral struct {
	baseNode
	Name   string // optional; empty for anonymous functions
	Params []string
	Body   Node
}

type CallExpression struct {
	baseNode
	Callee Node
	Args   []Node
}

// BuiltinReference names a built-in by tag (print, show, ...).
type BuiltinReference struct {
	baseNode
	Tag string
}

type NamespaceDeclaration struct {
	baseNode
	Name     string
	Ancestor Node // optional
	Body     *BlockExpression
}

type ClassDeclaration struct {
	baseNode
	Name   string
	Supers []Node
	Body   *BlockExpression
}
