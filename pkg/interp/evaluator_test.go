package interp_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kudryavchik/semantic/pkg/concrete"
	"github.com/kudryavchik/semantic/pkg/eval"
	"github.com/kudryavchik/semantic/pkg/interp"
	"github.com/kudryavchik/semantic/pkg/runtime"
	"github.com/kudryavchik/semantic/pkg/term"
	"github.com/kudryavchik/semantic/pkg/typedomain"
)

type programResult struct {
	last   runtime.Value
	stdout string
	err    error
}

// runProgram decodes a YAML term document and evaluates its terms in order
// against a fresh machine. The last successfully evaluated value is returned.
func runProgram(t *testing.T, domain runtime.Domain, recover func(error) (runtime.Value, bool), src string) programResult {
	t.Helper()
	doc, err := term.DecodeDocument([]byte(src))
	if err != nil {
		t.Fatalf("decode program: %v", err)
	}
	terms := term.NewStore()
	machine := eval.NewMachine(domain, runtime.NewStoreHeap(), terms)
	var out bytes.Buffer
	machine.Stdout = &out
	machine.Recover = recover
	evaluator := interp.New(terms)
	if err := evaluator.Attach(machine); err != nil {
		t.Fatalf("attach: %v", err)
	}

	var last runtime.Value
	for _, node := range doc.Terms {
		v, err := machine.Run(evaluator.Eval(node))
		if err != nil {
			return programResult{last: last, stdout: out.String(), err: err}
		}
		last = v
	}
	return programResult{last: last, stdout: out.String()}
}

func runConcrete(t *testing.T, src string) programResult {
	t.Helper()
	return runProgram(t, concrete.New(), nil, src)
}

func wantInt(t *testing.T, res programResult, want int64) {
	t.Helper()
	if res.err != nil {
		t.Fatalf("program failed: %v", res.err)
	}
	got, ok := res.last.(concrete.IntegerValue)
	if !ok {
		t.Fatalf("result is %T (%v), want an integer", res.last, res.last)
	}
	if got.Val.Int64() != want {
		t.Fatalf("result is %s, want %d", got.Val, want)
	}
}

func TestFactorialLoop(t *testing.T) {
	res := runConcrete(t, `
name: factorial
terms:
  - {type: bind, name: n, value: {type: int, value: 5}}
  - {type: bind, name: acc, value: {type: int, value: 1}}
  - type: while
    cond: {type: binary, op: ">", left: {type: ident, name: n}, right: {type: int, value: 0}}
    body:
      type: block
      body:
        - type: assign
          target: {type: ident, name: acc}
          value: {type: binary, op: "*", left: {type: ident, name: acc}, right: {type: ident, name: n}}
        - type: assign
          target: {type: ident, name: n}
          value: {type: binary, op: "-", left: {type: ident, name: n}, right: {type: int, value: 1}}
  - {type: ident, name: acc}
`)
	wantInt(t, res, 120)
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	res := runConcrete(t, `
name: closures
terms:
  - type: bind
    name: makeAdder
    value:
      type: fn
      params: [x]
      body:
        type: fn
        params: [y]
        body: {type: binary, op: "+", left: {type: ident, name: x}, right: {type: ident, name: y}}
  - type: bind
    name: addTwo
    value: {type: call, callee: {type: ident, name: makeAdder}, args: [{type: int, value: 2}]}
  - {type: call, callee: {type: ident, name: addTwo}, args: [{type: int, value: 3}]}
`)
	wantInt(t, res, 5)
}

func TestNamespaceMethodSeesNamespaceBindings(t *testing.T) {
	res := runConcrete(t, `
name: namespaces
terms:
  - type: namespace
    name: math
    body:
      type: block
      body:
        - {type: bind, name: base, value: {type: int, value: 10}}
        - type: fn
          name: plusBase
          params: [n]
          body: {type: binary, op: "+", left: {type: ident, name: n}, right: {type: ident, name: base}}
  - type: call
    callee: {type: member, receiver: {type: ident, name: math}, name: plusBase}
    args: [{type: int, value: 5}]
`)
	wantInt(t, res, 15)
}

func TestNamespaceAncestorChain(t *testing.T) {
	res := runConcrete(t, `
name: ancestry
terms:
  - type: namespace
    name: base
    body:
      type: block
      body:
        - {type: bind, name: shared, value: {type: int, value: 7}}
  - type: namespace
    name: child
    ancestor: {type: ident, name: base}
    body:
      type: block
      body:
        - {type: bind, name: own, value: {type: int, value: 1}}
  - {type: member, receiver: {type: ident, name: child}, name: shared}
`)
	wantInt(t, res, 7)
}

func TestOrShortCircuitLeavesRightUnevaluated(t *testing.T) {
	res := runConcrete(t, `
name: short-circuit
terms:
  - {type: bind, name: touched, value: {type: int, value: 0}}
  - type: or
    left: {type: bool, value: true}
    right: {type: assign, target: {type: ident, name: touched}, value: {type: int, value: 1}}
  - {type: ident, name: touched}
`)
	wantInt(t, res, 0)
}

func TestForLoopScopeIsDiscarded(t *testing.T) {
	res := runConcrete(t, `
name: for-loop
terms:
  - {type: bind, name: total, value: {type: int, value: 0}}
  - type: for
    init: {type: bind, name: i, value: {type: int, value: 0}}
    cond: {type: binary, op: "<", left: {type: ident, name: i}, right: {type: int, value: 3}}
    step:
      type: assign
      target: {type: ident, name: i}
      value: {type: binary, op: "+", left: {type: ident, name: i}, right: {type: int, value: 1}}
    body:
      type: assign
      target: {type: ident, name: total}
      value: {type: binary, op: "+", left: {type: ident, name: total}, right: {type: int, value: 1}}
  - {type: ident, name: total}
`)
	wantInt(t, res, 3)

	leaked := runConcrete(t, `
name: for-leak
terms:
  - type: for
    init: {type: bind, name: i, value: {type: int, value: 0}}
    cond: {type: bool, value: false}
    step: {type: unit}
    body: {type: unit}
  - {type: ident, name: i}
`)
	var envErr runtime.EnvironmentError
	if !errors.As(leaked.err, &envErr) {
		t.Fatalf("loop variable survived the loop: (%v, %v)", leaked.last, leaked.err)
	}
}

func TestDoWhileBodyRunsOnce(t *testing.T) {
	res := runConcrete(t, `
name: do-while
terms:
  - {type: bind, name: runs, value: {type: int, value: 0}}
  - type: do_while
    body:
      type: assign
      target: {type: ident, name: runs}
      value: {type: binary, op: "+", left: {type: ident, name: runs}, right: {type: int, value: 1}}
    cond: {type: bool, value: false}
  - {type: ident, name: runs}
`)
	wantInt(t, res, 1)
}

func TestArrayIndexReadAndWrite(t *testing.T) {
	res := runConcrete(t, `
name: arrays
terms:
  - type: bind
    name: xs
    value:
      type: array
      elements:
        - {type: int, value: 1}
        - {type: int, value: 2}
        - {type: int, value: 3}
  - type: assign
    target: {type: index, target: {type: ident, name: xs}, index: {type: int, value: 1}}
    value: {type: int, value: 42}
  - {type: index, target: {type: ident, name: xs}, index: {type: int, value: 1}}
`)
	wantInt(t, res, 42)
}

func TestCallResultIsAddressable(t *testing.T) {
	// Indexing directly into a call result only works because calls return
	// addresses, never bare values.
	res := runConcrete(t, `
name: call-addressing
terms:
  - type: bind
    name: pairUp
    value:
      type: fn
      params: [a, b]
      body:
        type: tuple
        elements:
          - {type: ident, name: a}
          - {type: ident, name: b}
  - type: index
    target: {type: call, callee: {type: ident, name: pairUp}, args: [{type: int, value: 8}, {type: int, value: 9}]}
    index: {type: int, value: 1}
`)
	wantInt(t, res, 9)
}

func TestBuiltins(t *testing.T) {
	res := runConcrete(t, `
name: builtins
terms:
  - type: call
    callee: {type: builtin, tag: print}
    args: [{type: string, value: hello}]
  - type: call
    callee: {type: ident, name: print}
    args: [{type: int, value: 7}]
  - type: call
    callee: {type: ident, name: show}
    args: [{type: rational, value: "1/3"}]
`)
	if res.err != nil {
		t.Fatalf("program failed: %v", res.err)
	}
	wantOut := "\"hello\"\n7\n"
	if res.stdout != wantOut {
		t.Fatalf("stdout = %q, want %q", res.stdout, wantOut)
	}
	got, ok := res.last.(concrete.StringValue)
	if !ok || got.Val != "1/3" {
		t.Fatalf("show yielded %v, want the rendered rational", res.last)
	}
}

func TestUnaryOperators(t *testing.T) {
	res := runConcrete(t, `
name: unary
terms:
  - type: binary
    op: "+"
    left: {type: unary, op: "-", operand: {type: int, value: 3}}
    right: {type: unary, op: "abs", operand: {type: int, value: -10}}
`)
	wantInt(t, res, 7)

	notted := runConcrete(t, `
name: not
terms:
  - {type: unary, op: "!", operand: {type: bool, value: false}}
`)
	if notted.err != nil {
		t.Fatalf("program failed: %v", notted.err)
	}
	if got := notted.last.(concrete.BoolValue); !got.Val {
		t.Fatalf("!false yielded %v", notted.last)
	}
}

func TestUnknownOperatorFails(t *testing.T) {
	res := runConcrete(t, `
name: bad-op
terms:
  - {type: binary, op: "@@", left: {type: int, value: 1}, right: {type: int, value: 2}}
`)
	if res.err == nil || !strings.Contains(res.err.Error(), "unknown binary operator") {
		t.Fatalf("got (%v, %v), want an unknown-operator failure", res.last, res.err)
	}
}

func TestTypeDomainDrivesSameTerms(t *testing.T) {
	// The factorial terms, unchanged, under the type abstraction: the loop
	// condition eliminates to false, so the body never runs and the result is
	// the integer type.
	res := runProgram(t, typedomain.New(), func(error) (runtime.Value, bool) {
		return typedomain.Top(), true
	}, `
name: factorial
terms:
  - {type: bind, name: n, value: {type: int, value: 5}}
  - {type: bind, name: acc, value: {type: int, value: 1}}
  - type: while
    cond: {type: binary, op: ">", left: {type: ident, name: n}, right: {type: int, value: 0}}
    body:
      type: assign
      target: {type: ident, name: acc}
      value: {type: binary, op: "*", left: {type: ident, name: acc}, right: {type: ident, name: n}}
  - {type: ident, name: acc}
`)
	if res.err != nil {
		t.Fatalf("analysis failed: %v", res.err)
	}
	if res.last.Kind() != runtime.KindInteger {
		t.Fatalf("analysis result is %s, want the integer type", res.last.Kind())
	}
}

func TestTypeDomainRecoversPastBadElimination(t *testing.T) {
	res := runProgram(t, typedomain.New(), func(error) (runtime.Value, bool) {
		return typedomain.Top(), true
	}, `
name: recovery
terms:
  - type: binary
    op: "+"
    left: {type: string, value: oops}
    right: {type: int, value: 1}
`)
	if res.err != nil {
		t.Fatalf("recovery did not resume: %v", res.err)
	}
	if res.last.Kind() != runtime.KindTop {
		t.Fatalf("substituted result is %s, want top", res.last.Kind())
	}
}

func TestClassDeclaration(t *testing.T) {
	res := runConcrete(t, `
name: classes
terms:
  - type: class
    name: Shape
    body:
      type: block
      body:
        - {type: bind, name: sides, value: {type: int, value: 0}}
  - type: class
    name: Square
    supers:
      - {type: ident, name: Shape}
    body:
      type: block
      body: []
  - {type: member, receiver: {type: ident, name: Shape}, name: sides}
`)
	wantInt(t, res, 0)
}
