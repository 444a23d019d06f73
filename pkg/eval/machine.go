package eval

import (
	"fmt"
	"io"

	"code.hybscloud.com/kont"

	"github.com/kudryavchik/semantic/pkg/ast"
	"github.com/kudryavchik/semantic/pkg/runtime"
	"github.com/kudryavchik/semantic/pkg/term"
)

// Machine interprets effect operations against a pluggable domain and the
// heap/environment collaborators. One machine drives one evaluation at a
// time; all effect resolution is synchronous and deterministic.
type Machine struct {
	Domain runtime.Domain
	Heap   runtime.Heap
	Terms  *term.Store

	// Stdout receives the output of the print builtin.
	Stdout io.Writer

	// Origin names the term document under evaluation; diagnostics only.
	Origin string

	// EvalBody evaluates a stored function body. Wired by the driving
	// evaluator before any CallOp can be resolved.
	EvalBody func(term.Handle) Eff

	// Recover, when set, may substitute a value for a raised error and
	// resume in place of aborting. Recovery policy belongs entirely to the
	// driver; the machine never catches its own raises.
	Recover func(err error) (runtime.Value, bool)

	env *runtime.Environment
	err error
}

// NewMachine builds a machine over the given collaborators with a fresh
// global scope.
func NewMachine(domain runtime.Domain, heap runtime.Heap, terms *term.Store) *Machine {
	return &Machine{
		Domain: domain,
		Heap:   heap,
		Terms:  terms,
		Stdout: io.Discard,
		env:    runtime.NewEnvironment(nil),
	}
}

// GlobalEnv exposes the outermost scope, e.g. for pre-binding builtins.
func (m *Machine) GlobalEnv() *runtime.Environment { return m.env }

// Run evaluates a computation to completion. A raised error that no recovery
// substitutes for surfaces here, wrapped with the document origin.
func (m *Machine) Run(e Eff) (runtime.Value, error) {
	m.err = nil
	v, ok := m.runEff(e)
	if !ok {
		if m.Origin != "" {
			return nil, fmt.Errorf("%s: %w", m.Origin, m.err)
		}
		return nil, m.err
	}
	return v, nil
}

// RunIn evaluates a computation with a non-value result type.
func RunIn[A any](m *Machine, e kont.Eff[A]) (A, error) {
	wrapped := kont.Map(e, func(a A) runtime.Value {
		return carrier[A]{val: a}
	})
	v, err := m.Run(wrapped)
	if err != nil {
		var zero A
		return zero, err
	}
	return v.(carrier[A]).val, nil
}

// carrier smuggles an arbitrary result through the value-typed trampoline.
type carrier[A any] struct {
	val A
}

func (carrier[A]) Kind() runtime.Kind { return runtime.KindTop }

func (m *Machine) runEff(e Eff) (runtime.Value, bool) {
	v := kont.Handle[*Machine, runtime.Value](e, m)
	if m.err != nil {
		return nil, false
	}
	return v, true
}

// abort short-circuits the current trampoline; m.err is already set.
func (m *Machine) abort() (kont.Resumed, bool) {
	return m.Domain.Unit(), false
}

// fail records err and short-circuits.
func (m *Machine) fail(err error) (kont.Resumed, bool) {
	m.err = err
	return m.Domain.Unit(), false
}

// recoverFrom consults the recovery hook for a substitute value.
func (m *Machine) recoverFrom(err error) (runtime.Value, bool) {
	if m.Recover != nil {
		if sub, ok := m.Recover(err); ok {
			return sub, true
		}
	}
	m.err = err
	return nil, false
}

// eliminated resumes with v, or routes an elimination failure through the
// resumable channel.
func (m *Machine) eliminated(v runtime.Value, err error) (kont.Resumed, bool) {
	if err == nil {
		return v, true
	}
	sub, ok := m.recoverFrom(err)
	if !ok {
		return m.abort()
	}
	return sub, true
}

// addressed resumes with addr, or boxes a recovery substitute to give it an
// address.
func (m *Machine) addressed(addr runtime.Address, err error) (kont.Resumed, bool) {
	if err == nil {
		return addr, true
	}
	sub, ok := m.recoverFrom(err)
	if !ok {
		return m.abort()
	}
	boxed, berr := runtime.Box(m.Heap, sub)
	if berr != nil {
		return m.fail(berr)
	}
	return boxed, true
}

// truthy eliminates v to a native boolean, retrying once on a recovery
// substitute.
func (m *Machine) truthy(v runtime.Value) (bool, bool) {
	flag, err := m.Domain.AsBool(v)
	if err == nil {
		return flag, true
	}
	sub, ok := m.recoverFrom(err)
	if !ok {
		return false, false
	}
	flag, err = m.Domain.AsBool(sub)
	if err != nil {
		m.err = err
		return false, false
	}
	return flag, true
}

// Dispatch resolves one suspended operation. It implements the kont handler
// contract: (resumeValue, true) continues the computation, (result, false)
// short-circuits the enclosing trampoline.
func (m *Machine) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	switch o := op.(type) {

	// Function effect.
	case FunctionOp:
		return &runtime.ClosureValue{Name: o.Name, Params: o.Params, Body: o.Body, Env: m.env}, true
	case BuiltinOp:
		return runtime.BuiltinValue{Tag: o.Tag}, true
	case CallOp:
		return m.call(o)

	// Boolean effect.
	case BooleanOp:
		return m.Domain.Boolean(o.Flag), true
	case AsBoolOp:
		flag, ok := m.truthy(o.Value)
		if !ok {
			return m.abort()
		}
		return flag, true
	case DisjunctionOp:
		left, ok := m.runEff(o.Left)
		if !ok {
			return m.abort()
		}
		flag, ok := m.truthy(left)
		if !ok {
			return m.abort()
		}
		if flag {
			return left, true
		}
		right, ok := m.runEff(o.Right)
		if !ok {
			return m.abort()
		}
		return right, true

	// While effect.
	case WhileOp:
		for {
			cond, ok := m.runEff(o.Cond)
			if !ok {
				return m.abort()
			}
			flag, ok := m.truthy(cond)
			if !ok {
				return m.abort()
			}
			if !flag {
				return cond, true
			}
			if _, ok := m.runEff(o.Body); !ok {
				return m.abort()
			}
		}

	// Environment effect.
	case CurrentEnvOp:
		return m.env, true
	case LookupOp:
		addr, err := m.env.Resolve(o.Name)
		return m.addressed(addr, err)
	case MemberLookupOp:
		return m.memberLookup(o)
	case BindOp:
		m.env.Define(o.Name, o.Addr)
		return m.Domain.Unit(), true
	case LocallyOp:
		saved := m.env
		m.env = saved.Extend()
		v, ok := m.runEff(o.Body)
		m.env = saved
		if !ok {
			return m.abort()
		}
		return v, true

	// Heap effect.
	case AllocOp:
		return m.Heap.Alloc(), true
	case DerefOp:
		v, err := m.Heap.Deref(o.Addr)
		return m.eliminated(v, err)
	case AssignOp:
		if err := m.Heap.Assign(o.Addr, o.Value); err != nil {
			return m.eliminated(nil, err)
		}
		return m.Domain.Unit(), true

	// Value capability requests.
	case LiteralOp:
		return m.introduce(o.Node)
	case KVPairOp:
		return m.Domain.KVPair(o.Key, o.Val), true
	case HashOp:
		return m.Domain.Hash(o.Pairs), true
	case Numeric1Op:
		return m.eliminated(m.Domain.LiftNumeric(o.Op, o.Value))
	case Numeric2Op:
		return m.eliminated(m.Domain.LiftNumeric2(o.Op, o.A, o.B))
	case Bitwise1Op:
		return m.eliminated(m.Domain.LiftBitwise(o.Op, o.Value))
	case Bitwise2Op:
		return m.eliminated(m.Domain.LiftBitwise2(o.Op, o.A, o.B))
	case UnsignedShiftROp:
		return m.eliminated(m.Domain.UnsignedShiftR(o.A, o.B))
	case ComparisonOp:
		return m.eliminated(m.Domain.LiftComparison(o.Cmp, o.A, o.B))
	case CastToIntegerOp:
		return m.eliminated(m.Domain.CastToInteger(o.Value))
	case AsStringOp:
		text, err := m.Domain.AsString(o.Value)
		if err == nil {
			return text, true
		}
		sub, ok := m.recoverFrom(err)
		if !ok {
			return m.abort()
		}
		text, err = m.Domain.AsString(sub)
		if err != nil {
			return m.fail(err)
		}
		return text, true
	case PairPartsOp:
		return m.eliminated(m.Domain.AsPair(o.Value, m.Heap))
	case TupleOp:
		return m.eliminated(m.Domain.Tuple(o.Elements))
	case ArrayOp:
		return m.eliminated(m.Domain.Array(o.Elements))
	case IndexOp:
		addr, err := m.Domain.Index(o.Value, o.I)
		return m.addressed(addr, err)

	// Scoped objects.
	case NamespaceOp:
		return m.makeNamespace(o)
	case KlassOp:
		return m.makeClass(o)
	case InScopedEnvOp:
		return m.inScopedEnv(o)

	// Resumable error channel.
	case RaiseOp:
		sub, ok := m.recoverFrom(o.Err)
		if !ok {
			return m.abort()
		}
		return sub, true

	default:
		return m.fail(fmt.Errorf("machine: unhandled operation %T", op))
	}
}

func (m *Machine) call(o CallOp) (kont.Resumed, bool) {
	switch fn := o.Fn.(type) {
	case *runtime.ClosureValue:
		if m.EvalBody == nil {
			return m.fail(fmt.Errorf("machine: no body evaluator wired for call"))
		}
		if len(o.Args) != len(fn.Params) {
			err := runtime.TypeError{
				Op:   "call",
				Have: fn.Kind(),
				Want: fmt.Sprintf("%d arguments, got %d", len(fn.Params), len(o.Args)),
			}
			return m.substituteCallResult(err)
		}
		scope := fn.Env
		if scope == nil {
			scope = m.env
		}
		callEnv := scope.Extend()
		if o.Self.Valid() {
			callEnv.Define("self", o.Self)
		}
		for idx, param := range fn.Params {
			callEnv.Define(param, o.Args[idx])
		}
		saved := m.env
		m.env = callEnv
		v, ok := m.runEff(m.EvalBody(fn.Body))
		m.env = saved
		if !ok {
			return m.abort()
		}
		addr, err := runtime.Box(m.Heap, v)
		if err != nil {
			return m.fail(err)
		}
		return addr, true

	case runtime.BuiltinValue:
		vals := make([]runtime.Value, 0, len(o.Args))
		for _, argAddr := range o.Args {
			v, err := m.Heap.Deref(argAddr)
			if err != nil {
				sub, ok := m.recoverFrom(err)
				if !ok {
					return m.abort()
				}
				v = sub
			}
			vals = append(vals, v)
		}
		result, err := m.applyBuiltin(fn.Tag, vals)
		if err != nil {
			return m.substituteCallResult(err)
		}
		addr, berr := runtime.Box(m.Heap, result)
		if berr != nil {
			return m.fail(berr)
		}
		return addr, true

	default:
		err := runtime.TypeError{Op: "call", Have: o.Fn.Kind(), Want: "function"}
		return m.substituteCallResult(err)
	}
}

// substituteCallResult routes a call failure through the resumable channel;
// the substitute, if any, is boxed and stands in for the call result.
func (m *Machine) substituteCallResult(err error) (kont.Resumed, bool) {
	sub, ok := m.recoverFrom(err)
	if !ok {
		return m.abort()
	}
	addr, berr := runtime.Box(m.Heap, sub)
	if berr != nil {
		return m.fail(berr)
	}
	return addr, true
}

func (m *Machine) applyBuiltin(tag runtime.BuiltinTag, args []runtime.Value) (runtime.Value, error) {
	switch tag {
	case runtime.BuiltinPrint:
		for _, arg := range args {
			if _, err := fmt.Fprintln(m.Stdout, m.Domain.Show(arg)); err != nil {
				return nil, err
			}
		}
		return m.Domain.Unit(), nil
	case runtime.BuiltinShow:
		if len(args) != 1 {
			return nil, runtime.TypeError{Op: "show", Have: runtime.KindBuiltin, Want: "1 argument"}
		}
		return m.Domain.String(m.Domain.Show(args[0])), nil
	default:
		return nil, runtime.TypeError{Op: "builtin", Have: runtime.KindBuiltin, Want: fmt.Sprintf("known tag, got %q", tag)}
	}
}

func (m *Machine) introduce(node ast.Node) (kont.Resumed, bool) {
	switch n := node.(type) {
	case *ast.UnitLiteral:
		return m.Domain.Unit(), true
	case *ast.NullLiteral:
		return m.Domain.Null(), true
	case *ast.BooleanLiteral:
		return m.Domain.Boolean(n.Value), true
	case *ast.IntegerLiteral:
		return m.Domain.Integer(n.Value), true
	case *ast.FloatLiteral:
		return m.Domain.Float(n.Value), true
	case *ast.RationalLiteral:
		return m.Domain.Rational(n.Value), true
	case *ast.StringLiteral:
		return m.Domain.String(n.Value), true
	case *ast.SymbolLiteral:
		return m.Domain.Symbol(n.Name), true
	case *ast.RegexLiteral:
		return m.Domain.Regex(n.Pattern), true
	default:
		return m.fail(fmt.Errorf("machine: %T is not a scalar literal", node))
	}
}

func (m *Machine) makeNamespace(o NamespaceOp) (kont.Resumed, bool) {
	frame, ok := m.capturedFrame(o.Body)
	if !ok {
		return m.abort()
	}
	ancestor := map[string]runtime.Address{}
	if o.Ancestor.Valid() {
		av, err := m.Heap.Deref(o.Ancestor)
		if err != nil {
			sub, ok := m.recoverFrom(err)
			if !ok {
				return m.abort()
			}
			av = sub
		}
		if bindings, ok := m.Domain.ScopedBindings(av); ok {
			ancestor = bindings
		}
	}
	v, err := m.Domain.Namespace(o.Name, ancestor, frame)
	if err != nil {
		return m.eliminated(nil, err)
	}
	if err := m.Heap.Assign(o.Addr, v); err != nil {
		return m.eliminated(nil, err)
	}
	return v, true
}

func (m *Machine) makeClass(o KlassOp) (kont.Resumed, bool) {
	frame, ok := m.capturedFrame(o.Body)
	if !ok {
		return m.abort()
	}
	v, err := m.Domain.Klass(o.Name, o.Supers, frame)
	if err != nil {
		return m.eliminated(nil, err)
	}
	if err := m.Heap.Assign(o.Addr, v); err != nil {
		return m.eliminated(nil, err)
	}
	return v, true
}

// capturedFrame runs body in a fresh scope and snapshots that scope's own
// frame. Nested scopes opened during body do not leak into the snapshot, and
// the scope pops on every exit path.
func (m *Machine) capturedFrame(body Eff) (map[string]runtime.Address, bool) {
	saved := m.env
	m.env = saved.Extend()
	_, ok := m.runEff(body)
	frame := m.env.Snapshot()
	m.env = saved
	if !ok {
		return nil, false
	}
	return frame, true
}

func (m *Machine) inScopedEnv(o InScopedEnvOp) (kont.Resumed, bool) {
	recv, err := m.Heap.Deref(o.Receiver)
	if err != nil {
		sub, ok := m.recoverFrom(err)
		if !ok {
			return m.abort()
		}
		recv = sub
	}
	saved := m.env
	if bindings, ok := m.Domain.ScopedBindings(recv); ok {
		m.env = runtime.NewScopedEnvironment(bindings, saved)
	} else {
		m.env = saved.Extend()
	}
	m.env.Define("self", o.Receiver)
	v, ok := m.runEff(o.Body)
	m.env = saved
	if !ok {
		return m.abort()
	}
	return v, true
}

func (m *Machine) memberLookup(o MemberLookupOp) (kont.Resumed, bool) {
	recv, err := m.Heap.Deref(o.Receiver)
	if err != nil {
		sub, ok := m.recoverFrom(err)
		if !ok {
			return m.abort()
		}
		recv = sub
	}
	// Per the scoped-environment rule: enter the receiver's scope overlaid on
	// the ambient environment, falling back to the ambient environment alone
	// when the receiver is not a scoped object.
	scope := m.env
	if bindings, ok := m.Domain.ScopedBindings(recv); ok {
		scope = runtime.NewScopedEnvironment(bindings, m.env)
	}
	addr, err := scope.Resolve(o.Name)
	return m.addressed(addr, err)
}
