package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudryavchik/semantic/pkg/ast"
)

const sampleDocument = `
name: sample
terms:
  - type: bind
    name: counter
    value: {type: int, value: 41}
    span: [1, 1, 1, 16]
  - type: while
    cond:
      type: binary
      op: "<"
      left: {type: ident, name: counter}
      right: {type: int, value: 42}
    body:
      type: assign
      target: {type: ident, name: counter}
      value:
        type: binary
        op: "+"
        left: {type: ident, name: counter}
        right: {type: int, value: 1}
  - type: call
    callee: {type: builtin, tag: print}
    args:
      - {type: ident, name: counter}
`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)
	require.Equal(t, "sample", doc.Name)
	require.Len(t, doc.Terms, 3)

	bind, ok := doc.Terms[0].(*ast.BindingExpression)
	require.True(t, ok, "first term decodes to %T", doc.Terms[0])
	assert.Equal(t, "counter", bind.Name)
	lit, ok := bind.Value.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 41, lit.Value.Int64())
	assert.Equal(t, 1, bind.Span().Start.Line)
	assert.Equal(t, 16, bind.Span().End.Column)

	loop, ok := doc.Terms[1].(*ast.WhileExpression)
	require.True(t, ok, "second term decodes to %T", doc.Terms[1])
	cond, ok := loop.Condition.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "<", cond.Op)
	_, ok = loop.Body.(*ast.AssignmentExpression)
	assert.True(t, ok)

	call, ok := doc.Terms[2].(*ast.CallExpression)
	require.True(t, ok, "third term decodes to %T", doc.Terms[2])
	builtin, ok := call.Callee.(*ast.BuiltinReference)
	require.True(t, ok)
	assert.Equal(t, "print", builtin.Tag)
	require.Len(t, call.Args, 1)
}

func TestDecodeScopedDeclarations(t *testing.T) {
	const src = `
name: scoped
terms:
  - type: namespace
    name: math
    body:
      type: block
      body:
        - type: bind
          name: pi
          value: {type: rational, value: "22/7"}
  - type: class
    name: Point
    supers:
      - {type: ident, name: Object}
    body:
      type: block
      body:
        - type: fn
          name: magnitude
          params: [scale]
          body: {type: ident, name: scale}
`
	doc, err := DecodeDocument([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Terms, 2)

	ns, ok := doc.Terms[0].(*ast.NamespaceDeclaration)
	require.True(t, ok)
	assert.Equal(t, "math", ns.Name)
	assert.Nil(t, ns.Ancestor)
	require.Len(t, ns.Body.Body, 1)

	class, ok := doc.Terms[1].(*ast.ClassDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Point", class.Name)
	require.Len(t, class.Supers, 1)
	fn, ok := class.Body.Body[0].(*ast.FunctionLiteral)
	require.True(t, ok)
	assert.Equal(t, []string{"scale"}, fn.Params)
}

func TestDecodeForLoopPartsAreOptional(t *testing.T) {
	const src = `
name: loops
terms:
  - type: for
    body: {type: int, value: 1}
  - type: for
    cond: {type: bool, value: true}
    body: {type: int, value: 2}
`
	doc, err := DecodeDocument([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Terms, 2)

	bare, ok := doc.Terms[0].(*ast.ForExpression)
	require.True(t, ok)
	assert.Nil(t, bare.Init)
	assert.Nil(t, bare.Condition)
	assert.Nil(t, bare.Step)
	require.NotNil(t, bare.Body)

	condOnly, ok := doc.Terms[1].(*ast.ForExpression)
	require.True(t, ok)
	assert.Nil(t, condOnly.Init)
	assert.NotNil(t, condOnly.Condition)

	_, err = DecodeDocument([]byte("name: bad\nterms:\n  - {type: for, cond: {type: bool, value: false}}\n"))
	require.Error(t, err)
}

func TestDecodeValidatesRegexPatterns(t *testing.T) {
	doc, err := DecodeDocument([]byte("name: ok\nterms:\n  - {type: regex, pattern: \"a+b\"}\n"))
	require.NoError(t, err)
	re, ok := doc.Terms[0].(*ast.RegexLiteral)
	require.True(t, ok)
	assert.Equal(t, "a+b", re.Pattern)

	_, err = DecodeDocument([]byte("name: bad\nterms:\n  - {type: regex, pattern: \"(unclosed\"}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regex literal")
}

func TestDecodeRejectsUnknownNodeType(t *testing.T) {
	_, err := DecodeDocument([]byte("name: bad\nterms:\n  - {type: goto}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown node type "goto"`)
}

func TestDecodeRejectsMalformedLiterals(t *testing.T) {
	cases := map[string]string{
		"bool without value": `{type: bool}`,
		"bad rational":       `{type: rational, value: "not-a-rat"}`,
		"hash of non-pairs":  `{type: hash, pairs: [{type: int, value: 1}]}`,
	}
	for name, node := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument([]byte("name: bad\nterms:\n  - " + node + "\n"))
			require.Error(t, err)
		})
	}
}

func TestStoreInternResolve(t *testing.T) {
	store := NewStore()
	node := &ast.Identifier{Name: "x"}
	h := store.Intern(node)
	require.True(t, h.Valid())

	got, err := store.Resolve(h)
	require.NoError(t, err)
	assert.Same(t, ast.Node(node), got)

	_, err = store.Resolve(Handle(99))
	require.Error(t, err)
	_, err = store.Resolve(Handle(0))
	require.Error(t, err)
}
