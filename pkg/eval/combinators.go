package eval

import (
	"code.hybscloud.com/kont"

	"github.com/kudryavchik/semantic/pkg/runtime"
	"github.com/kudryavchik/semantic/pkg/term"
)

// Function requests a function value for the given signature and body handle.
func Function(name string, params []string, body term.Handle) Eff {
	return kont.Perform(FunctionOp{Name: name, Params: params, Body: body})
}

// Builtin requests the value of a tagged built-in.
func Builtin(tag runtime.BuiltinTag) Eff {
	return kont.Perform(BuiltinOp{Tag: tag})
}

// Call requests invocation of fn with the given receiver and argument
// addresses. The result is an address.
func Call(fn runtime.Value, self runtime.Address, args []runtime.Address) kont.Eff[runtime.Address] {
	return kont.Perform(CallOp{Fn: fn, Self: self, Args: args})
}

// Boolean introduces a domain truth value.
func Boolean(flag bool) Eff {
	return kont.Perform(BooleanOp{Flag: flag})
}

// AsBool eliminates a value to a native boolean.
func AsBool(v runtime.Value) kont.Eff[bool] {
	return kont.Perform(AsBoolOp{Value: v})
}

// Disjunction evaluates a; b runs only when a is domain-falsy. Short-circuit
// is a hard contract: b's effects never fire when a is truthy.
func Disjunction(a, b Eff) Eff {
	return kont.Perform(DisjunctionOp{Left: a, Right: b})
}

// IfThenElse eliminates v to a boolean and evaluates exactly one branch,
// never both, never neither.
func IfThenElse(v runtime.Value, t, e Eff) Eff {
	return kont.Bind(AsBool(v), func(flag bool) Eff {
		if flag {
			return t
		}
		return e
	})
}

// While is the loop primitive; see WhileOp for the iteration contract.
func While(cond, body Eff) Eff {
	return kont.Perform(WhileOp{Cond: cond, Body: body})
}

// DoWhile runs body unconditionally once, then behaves as While(cond, body).
func DoWhile(body, cond Eff) Eff {
	return kont.Bind(body, func(runtime.Value) Eff {
		return While(cond, body)
	})
}

// ForLoop evaluates init once inside a freshly pushed scope, then behaves as
// While(cond, body then step) within that scope. Loop-local bindings are
// discarded when the scope pops at loop exit.
func ForLoop(init, cond, step, body Eff) Eff {
	return Locally(kont.Bind(init, func(runtime.Value) Eff {
		return While(cond, kont.Then(body, step))
	}))
}

// Locally runs body in a pushed scope guaranteed to pop on return.
func Locally(body Eff) Eff {
	return kont.Perform(LocallyOp{Body: body})
}

// CurrentEnv reads the ambient lexical environment.
func CurrentEnv() kont.Eff[*runtime.Environment] {
	return kont.Perform(CurrentEnvOp{})
}

// BindName introduces a binding in the current scope frame.
func BindName(name string, addr runtime.Address) Eff {
	return kont.Perform(BindOp{Name: name, Addr: addr})
}

// Alloc reserves a fresh heap address.
func Alloc() kont.Eff[runtime.Address] {
	return kont.Perform(AllocOp{})
}

// Deref reads the value stored at addr.
func Deref(addr runtime.Address) Eff {
	return kont.Perform(DerefOp{Addr: addr})
}

// Assign stores v at addr.
func Assign(addr runtime.Address, v runtime.Value) Eff {
	return kont.Perform(AssignOp{Addr: addr, Value: v})
}

// Raise raises a typed error through the resumable channel.
func Raise(err error) Eff {
	return kont.Perform(RaiseOp{Err: err})
}
