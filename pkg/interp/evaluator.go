// Package interp is the driving evaluator: one domain-agnostic walk over term
// trees that expresses every construct as effect requests. All value
// introduction and elimination goes through the active domain; all control
// flow goes through the shared effect families.
package interp

import (
	"fmt"

	"code.hybscloud.com/kont"

	"github.com/kudryavchik/semantic/pkg/ast"
	"github.com/kudryavchik/semantic/pkg/eval"
	"github.com/kudryavchik/semantic/pkg/runtime"
	"github.com/kudryavchik/semantic/pkg/term"
)

// Evaluator compiles term nodes into effect computations. It holds the term
// store so function bodies can travel as opaque handles.
type Evaluator struct {
	Terms *term.Store
}

func New(terms *term.Store) *Evaluator {
	return &Evaluator{Terms: terms}
}

// Attach wires the evaluator as the machine's body evaluator and binds the
// builtins in the global scope.
func (ev *Evaluator) Attach(m *eval.Machine) error {
	m.EvalBody = ev.EvalBody
	for _, tag := range []runtime.BuiltinTag{runtime.BuiltinPrint, runtime.BuiltinShow} {
		addr, err := runtime.Box(m.Heap, runtime.BuiltinValue{Tag: tag})
		if err != nil {
			return err
		}
		m.GlobalEnv().Define(string(tag), addr)
	}
	return nil
}

// EvalBody resolves a stored function body and evaluates it.
func (ev *Evaluator) EvalBody(h term.Handle) eval.Eff {
	node, err := ev.Terms.Resolve(h)
	if err != nil {
		return eval.Raise(err)
	}
	return ev.Eval(node)
}

// Eval builds the effect computation for a node. Building is pure; nothing
// runs until a machine handles the result.
func (ev *Evaluator) Eval(node ast.Node) eval.Eff {
	switch n := node.(type) {

	// Literals.
	case *ast.UnitLiteral, *ast.NullLiteral, *ast.BooleanLiteral,
		*ast.IntegerLiteral, *ast.FloatLiteral, *ast.RationalLiteral,
		*ast.StringLiteral, *ast.SymbolLiteral, *ast.RegexLiteral:
		return kont.Perform(eval.LiteralOp{Node: node})
	case *ast.PairLiteral:
		return ev.evalPair(n)
	case *ast.HashLiteral:
		return ev.evalHash(n)
	case *ast.TupleLiteral:
		return kont.Bind(ev.boxedAddresses(n.Elements), func(addrs []runtime.Address) eval.Eff {
			return kont.Perform(eval.TupleOp{Elements: addrs})
		})
	case *ast.ArrayLiteral:
		return kont.Bind(ev.boxedAddresses(n.Elements), func(addrs []runtime.Address) eval.Eff {
			return kont.Perform(eval.ArrayOp{Elements: addrs})
		})

	// References, bindings, assignment.
	case *ast.Identifier:
		return eval.Value(eval.LvalLocal{Name: n.Name})
	case *ast.MemberAccess:
		return kont.Bind(ev.addressOf(n.Receiver), func(recv runtime.Address) eval.Eff {
			return eval.Value(eval.LvalMember{Receiver: recv, Name: n.Name})
		})
	case *ast.IndexExpression:
		return kont.Bind(ev.ref(n), func(ref eval.ValueRef) eval.Eff {
			return eval.Value(ref)
		})
	case *ast.BindingExpression:
		return kont.Bind(ev.Eval(n.Value), func(v runtime.Value) eval.Eff {
			return kont.Bind(eval.RvalBox(v), func(ref eval.ValueRef) eval.Eff {
				return kont.Bind(eval.Address(ref), func(addr runtime.Address) eval.Eff {
					return kont.Map(eval.BindName(n.Name, addr), func(runtime.Value) runtime.Value {
						return v
					})
				})
			})
		})
	case *ast.AssignmentExpression:
		return kont.Bind(ev.ref(n.Target), func(ref eval.ValueRef) eval.Eff {
			return kont.Bind(eval.Address(ref), func(addr runtime.Address) eval.Eff {
				return kont.Bind(ev.Eval(n.Value), func(v runtime.Value) eval.Eff {
					return kont.Map(eval.Assign(addr, v), func(runtime.Value) runtime.Value {
						return v
					})
				})
			})
		})

	// Control flow.
	case *ast.BlockExpression:
		return eval.Locally(ev.sequence(n.Body))
	case *ast.IfExpression:
		elseEff := ev.unit()
		if n.Else != nil {
			elseEff = ev.Eval(n.Else)
		}
		thenEff := ev.Eval(n.Then)
		return kont.Bind(ev.Eval(n.Condition), func(c runtime.Value) eval.Eff {
			return eval.IfThenElse(c, thenEff, elseEff)
		})
	case *ast.OrExpression:
		return eval.Disjunction(ev.Eval(n.Left), ev.Eval(n.Right))
	case *ast.WhileExpression:
		return eval.While(ev.Eval(n.Condition), ev.Eval(n.Body))
	case *ast.DoWhileExpression:
		return eval.DoWhile(ev.Eval(n.Body), ev.Eval(n.Condition))
	case *ast.ForExpression:
		init, step := ev.unit(), ev.unit()
		if n.Init != nil {
			init = ev.Eval(n.Init)
		}
		if n.Step != nil {
			step = ev.Eval(n.Step)
		}
		cond := eval.Boolean(true)
		if n.Condition != nil {
			cond = ev.Eval(n.Condition)
		}
		return eval.ForLoop(init, cond, step, ev.Eval(n.Body))

	// Operators.
	case *ast.UnaryExpression:
		return ev.evalUnary(n)
	case *ast.BinaryExpression:
		return ev.evalBinary(n)

	// Functions and scoped objects.
	case *ast.FunctionLiteral:
		return ev.evalFunction(n)
	case *ast.CallExpression:
		return ev.evalCall(n)
	case *ast.BuiltinReference:
		return eval.Builtin(runtime.BuiltinTag(n.Tag))
	case *ast.NamespaceDeclaration:
		return ev.evalNamespace(n)
	case *ast.ClassDeclaration:
		return ev.evalClass(n)

	default:
		return eval.Raise(fmt.Errorf("interp: no evaluation rule for %T at %s", node, node.Span()))
	}
}

func (ev *Evaluator) unit() eval.Eff {
	return kont.Perform(eval.LiteralOp{Node: &ast.UnitLiteral{}})
}

// sequence evaluates nodes in order in the current scope and yields the last
// value. Block expressions wrap it in a scope; scoped-object bodies run it
// bare so their bindings land on the frame being captured.
func (ev *Evaluator) sequence(nodes []ast.Node) eval.Eff {
	if len(nodes) == 0 {
		return ev.unit()
	}
	e := ev.Eval(nodes[0])
	for _, n := range nodes[1:] {
		e = kont.Then(e, ev.Eval(n))
	}
	return e
}

func (ev *Evaluator) evalPair(n *ast.PairLiteral) eval.Eff {
	return kont.Bind(ev.Eval(n.Key), func(key runtime.Value) eval.Eff {
		return kont.Bind(ev.Eval(n.Value), func(val runtime.Value) eval.Eff {
			return kont.Perform(eval.KVPairOp{Key: key, Val: val})
		})
	})
}

func (ev *Evaluator) evalHash(n *ast.HashLiteral) eval.Eff {
	acc := kont.Pure([]runtime.Value(nil))
	for _, pair := range n.Pairs {
		pairEff := ev.evalPair(pair)
		acc = kont.Bind(acc, func(pairs []runtime.Value) kont.Eff[[]runtime.Value] {
			return kont.Map(pairEff, func(v runtime.Value) []runtime.Value {
				return append(pairs, v)
			})
		})
	}
	return kont.Bind(acc, func(pairs []runtime.Value) eval.Eff {
		return kont.Perform(eval.HashOp{Pairs: pairs})
	})
}

// boxedAddresses evaluates each element and boxes its value at a fresh
// address; composite literals never alias existing bindings.
func (ev *Evaluator) boxedAddresses(nodes []ast.Node) kont.Eff[[]runtime.Address] {
	acc := kont.Pure([]runtime.Address(nil))
	for _, n := range nodes {
		elem := kont.Bind(ev.Eval(n), func(v runtime.Value) kont.Eff[runtime.Address] {
			return kont.Bind(eval.RvalBox(v), eval.Address)
		})
		acc = kont.Bind(acc, func(addrs []runtime.Address) kont.Eff[[]runtime.Address] {
			return kont.Map(elem, func(addr runtime.Address) []runtime.Address {
				return append(addrs, addr)
			})
		})
	}
	return acc
}

// refAddresses resolves each node as a reference, so identifiers and member
// accesses contribute their existing addresses. Call arguments alias this way.
func (ev *Evaluator) refAddresses(nodes []ast.Node) kont.Eff[[]runtime.Address] {
	acc := kont.Pure([]runtime.Address(nil))
	for _, n := range nodes {
		elem := ev.addressOf(n)
		acc = kont.Bind(acc, func(addrs []runtime.Address) kont.Eff[[]runtime.Address] {
			return kont.Map(elem, func(addr runtime.Address) []runtime.Address {
				return append(addrs, addr)
			})
		})
	}
	return acc
}

// ref resolves a node to a ValueRef. Identifiers and member accesses become
// lvalues; index expressions resolve to the element address; anything else is
// evaluated and boxed.
func (ev *Evaluator) ref(node ast.Node) kont.Eff[eval.ValueRef] {
	switch n := node.(type) {
	case *ast.Identifier:
		return kont.Pure[eval.ValueRef](eval.LvalLocal{Name: n.Name})
	case *ast.MemberAccess:
		return kont.Bind(ev.addressOf(n.Receiver), func(recv runtime.Address) kont.Eff[eval.ValueRef] {
			return kont.Pure[eval.ValueRef](eval.LvalMember{Receiver: recv, Name: n.Name})
		})
	case *ast.IndexExpression:
		return ev.indexRef(n)
	default:
		return kont.Bind(ev.Eval(node), eval.RvalBox)
	}
}

func (ev *Evaluator) addressOf(node ast.Node) kont.Eff[runtime.Address] {
	return kont.Bind(ev.ref(node), eval.Address)
}

func (ev *Evaluator) indexRef(n *ast.IndexExpression) kont.Eff[eval.ValueRef] {
	return kont.Bind(ev.Eval(n.Target), func(target runtime.Value) kont.Eff[eval.ValueRef] {
		return kont.Bind(ev.Eval(n.Index), func(idx runtime.Value) kont.Eff[eval.ValueRef] {
			return kont.Bind(kont.Perform(eval.CastToIntegerOp{Value: idx}), func(cast runtime.Value) kont.Eff[eval.ValueRef] {
				i, ok := nativeIndex(cast)
				if !ok {
					// A recovery substitute stands in for the element.
					err := runtime.TypeError{Op: "index", Have: cast.Kind(), Want: "native index"}
					return kont.Bind(eval.Raise(err), eval.RvalBox)
				}
				return kont.Map(kont.Perform(eval.IndexOp{Value: target, I: i}), func(addr runtime.Address) eval.ValueRef {
					return eval.Rval{Addr: addr}
				})
			})
		})
	})
}

func nativeIndex(v runtime.Value) (int, bool) {
	ni, ok := v.(runtime.NativeIndexer)
	if !ok {
		return 0, false
	}
	return ni.NativeIndex()
}

func (ev *Evaluator) evalUnary(n *ast.UnaryExpression) eval.Eff {
	operand := ev.Eval(n.Operand)
	switch n.Op {
	case "-":
		return kont.Bind(operand, func(v runtime.Value) eval.Eff {
			return kont.Perform(eval.Numeric1Op{Op: runtime.NumericNeg, Value: v})
		})
	case "abs":
		return kont.Bind(operand, func(v runtime.Value) eval.Eff {
			return kont.Perform(eval.Numeric1Op{Op: runtime.NumericAbs, Value: v})
		})
	case "~":
		return kont.Bind(operand, func(v runtime.Value) eval.Eff {
			return kont.Perform(eval.Bitwise1Op{Op: runtime.BitwiseComplement, Value: v})
		})
	case "!":
		return kont.Bind(operand, func(v runtime.Value) eval.Eff {
			return kont.Bind(eval.AsBool(v), func(flag bool) eval.Eff {
				return eval.Boolean(!flag)
			})
		})
	default:
		return eval.Raise(fmt.Errorf("interp: unknown unary operator %q at %s", n.Op, n.Span()))
	}
}

var numericOps = map[string]runtime.NumericOp{
	"+": runtime.NumericAdd,
	"-": runtime.NumericSub,
	"*": runtime.NumericMul,
	"/": runtime.NumericDiv,
	"%": runtime.NumericMod,
}

var bitwiseOps = map[string]runtime.BitwiseOp{
	"&":  runtime.BitwiseAnd,
	"|":  runtime.BitwiseOr,
	"^":  runtime.BitwiseXor,
	"<<": runtime.BitwiseShiftL,
	">>": runtime.BitwiseShiftR,
}

var compareOps = map[string]runtime.CompareOp{
	"==":  runtime.CompareEq,
	"!=":  runtime.CompareNe,
	"<":   runtime.CompareLt,
	"<=":  runtime.CompareLe,
	">":   runtime.CompareGt,
	">=":  runtime.CompareGe,
	"<=>": runtime.CompareSpaceship,
}

func (ev *Evaluator) evalBinary(n *ast.BinaryExpression) eval.Eff {
	switch n.Op {
	case "||", "or":
		return eval.Disjunction(ev.Eval(n.Left), ev.Eval(n.Right))
	case "&&", "and":
		// Conjunction derives from boolean elimination; the right side only
		// runs when the left is truthy.
		right := ev.Eval(n.Right)
		return kont.Bind(ev.Eval(n.Left), func(l runtime.Value) eval.Eff {
			return kont.Bind(eval.AsBool(l), func(flag bool) eval.Eff {
				if flag {
					return right
				}
				return kont.Pure(l)
			})
		})
	}

	left, right := ev.Eval(n.Left), ev.Eval(n.Right)
	both := func(mk func(a, b runtime.Value) eval.Eff) eval.Eff {
		return kont.Bind(left, func(a runtime.Value) eval.Eff {
			return kont.Bind(right, func(b runtime.Value) eval.Eff {
				return mk(a, b)
			})
		})
	}

	if op, ok := numericOps[n.Op]; ok {
		return both(func(a, b runtime.Value) eval.Eff {
			return kont.Perform(eval.Numeric2Op{Op: op, A: a, B: b})
		})
	}
	if op, ok := bitwiseOps[n.Op]; ok {
		return both(func(a, b runtime.Value) eval.Eff {
			return kont.Perform(eval.Bitwise2Op{Op: op, A: a, B: b})
		})
	}
	if n.Op == ">>>" {
		return both(func(a, b runtime.Value) eval.Eff {
			return kont.Perform(eval.UnsignedShiftROp{A: a, B: b})
		})
	}
	if op, ok := compareOps[n.Op]; ok {
		return both(func(a, b runtime.Value) eval.Eff {
			return kont.Perform(eval.ComparisonOp{Cmp: runtime.ConcreteComparator(op), A: a, B: b})
		})
	}
	if n.Op == "compare" {
		return both(func(a, b runtime.Value) eval.Eff {
			return kont.Perform(eval.ComparisonOp{Cmp: runtime.GeneralizedComparator(), A: a, B: b})
		})
	}
	return eval.Raise(fmt.Errorf("interp: unknown binary operator %q at %s", n.Op, n.Span()))
}

func (ev *Evaluator) evalFunction(n *ast.FunctionLiteral) eval.Eff {
	h := ev.Terms.Intern(n.Body)
	fn := eval.Function(n.Name, n.Params, h)
	if n.Name == "" {
		return fn
	}
	return kont.Bind(fn, func(v runtime.Value) eval.Eff {
		return kont.Bind(eval.RvalBox(v), func(ref eval.ValueRef) eval.Eff {
			return kont.Bind(eval.Address(ref), func(addr runtime.Address) eval.Eff {
				return kont.Map(eval.BindName(n.Name, addr), func(runtime.Value) runtime.Value {
					return v
				})
			})
		})
	})
}

func (ev *Evaluator) evalCall(n *ast.CallExpression) eval.Eff {
	args := ev.refAddresses(n.Args)
	if member, ok := n.Callee.(*ast.MemberAccess); ok {
		return kont.Bind(ev.addressOf(member.Receiver), func(self runtime.Address) eval.Eff {
			return kont.Bind(eval.Value(eval.LvalMember{Receiver: self, Name: member.Name}), func(fn runtime.Value) eval.Eff {
				return kont.Bind(args, func(addrs []runtime.Address) eval.Eff {
					return kont.Bind(eval.Call(fn, self, addrs), eval.Deref)
				})
			})
		})
	}
	return kont.Bind(ev.Eval(n.Callee), func(fn runtime.Value) eval.Eff {
		return kont.Bind(args, func(addrs []runtime.Address) eval.Eff {
			return kont.Bind(eval.Call(fn, runtime.Address{}, addrs), eval.Deref)
		})
	})
}

func (ev *Evaluator) evalNamespace(n *ast.NamespaceDeclaration) eval.Eff {
	var bodyNodes []ast.Node
	if n.Body != nil {
		bodyNodes = n.Body.Body
	}
	body := ev.sequence(bodyNodes)
	declare := func(ancestor runtime.Address) eval.Eff {
		return kont.Bind(eval.Alloc(), func(addr runtime.Address) eval.Eff {
			return kont.Bind(eval.MakeNamespace(n.Name, addr, ancestor, body), func(v runtime.Value) eval.Eff {
				return kont.Map(eval.BindName(n.Name, addr), func(runtime.Value) runtime.Value {
					return v
				})
			})
		})
	}
	if n.Ancestor == nil {
		return declare(runtime.Address{})
	}
	return kont.Bind(ev.addressOf(n.Ancestor), declare)
}

func (ev *Evaluator) evalClass(n *ast.ClassDeclaration) eval.Eff {
	var bodyNodes []ast.Node
	if n.Body != nil {
		bodyNodes = n.Body.Body
	}
	body := ev.sequence(bodyNodes)
	return kont.Bind(ev.refAddresses(n.Supers), func(supers []runtime.Address) eval.Eff {
		return kont.Bind(eval.Alloc(), func(addr runtime.Address) eval.Eff {
			return kont.Bind(eval.MakeClass(n.Name, addr, supers, body), func(v runtime.Value) eval.Eff {
				return kont.Map(eval.BindName(n.Name, addr), func(runtime.Value) runtime.Value {
					return v
				})
			})
		})
	})
}
