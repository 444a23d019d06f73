package term

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"

	"github.com/kudryavchik/semantic/pkg/ast"
)

// Document is a decoded term bundle: a named, ordered sequence of top-level
// terms. Documents are the serialized-AST boundary of the toolkit; nothing in
// this module parses source text.
type Document struct {
	Name  string
	Terms []ast.Node
}

type rawDocument struct {
	Name  string `yaml:"name"`
	Terms []any  `yaml:"terms"`
}

// DecodeDocument unmarshals a YAML (or JSON) term document.
func DecodeDocument(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("term: decode document: %w", err)
	}
	doc := &Document{Name: raw.Name}
	for idx, entry := range raw.Terms {
		node, err := DecodeNode(entry)
		if err != nil {
			return nil, fmt.Errorf("term: document %q term %d: %w", raw.Name, idx, err)
		}
		doc.Terms = append(doc.Terms, node)
	}
	return doc, nil
}

// DecodeNode converts one decoded YAML value into a term node.
func DecodeNode(entry any) (ast.Node, error) {
	m, ok := toStringMap(entry)
	if !ok {
		return nil, fmt.Errorf("node must be a mapping, got %T", entry)
	}
	typ, _ := m["type"].(string)
	node, err := decodeTyped(m, typ)
	if err != nil {
		return nil, err
	}
	if span, ok := decodeSpan(m["span"]); ok {
		ast.SetSpan(node, span)
	}
	return node, nil
}

func decodeTyped(m map[string]any, typ string) (ast.Node, error) {
	for _, decoder := range []func(map[string]any, string) (ast.Node, bool, error){
		decodeLiteralNodes,
		decodeReferenceNodes,
		decodeControlFlowNodes,
		decodeFunctionNodes,
	} {
		node, handled, err := decoder(m, typ)
		if err != nil {
			return nil, err
		}
		if handled {
			return node, nil
		}
	}
	return nil, fmt.Errorf("unknown node type %q", typ)
}

func decodeLiteralNodes(m map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "unit":
		return &ast.UnitLiteral{}, true, nil
	case "null":
		return &ast.NullLiteral{}, true, nil
	case "bool":
		flag, ok := m["value"].(bool)
		if !ok {
			return nil, true, fmt.Errorf("bool literal needs a boolean value")
		}
		return &ast.BooleanLiteral{Value: flag}, true, nil
	case "int":
		val, err := bigFromAny(m["value"])
		if err != nil {
			return nil, true, err
		}
		return &ast.IntegerLiteral{Value: val}, true, nil
	case "float":
		dec, err := decimalFromAny(m["value"])
		if err != nil {
			return nil, true, err
		}
		return &ast.FloatLiteral{Value: dec}, true, nil
	case "rational":
		text, ok := m["value"].(string)
		if !ok {
			return nil, true, fmt.Errorf("rational literal needs a string value")
		}
		rat, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, true, fmt.Errorf("invalid rational literal %q", text)
		}
		return &ast.RationalLiteral{Value: rat}, true, nil
	case "string":
		text, ok := m["value"].(string)
		if !ok {
			return nil, true, fmt.Errorf("string literal needs a string value")
		}
		return &ast.StringLiteral{Value: text}, true, nil
	case "symbol":
		name, ok := m["name"].(string)
		if !ok {
			return nil, true, fmt.Errorf("symbol literal needs a name")
		}
		return &ast.SymbolLiteral{Name: name}, true, nil
	case "regex":
		pattern, ok := m["pattern"].(string)
		if !ok {
			return nil, true, fmt.Errorf("regex literal needs a pattern")
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, true, fmt.Errorf("regex literal: %w", err)
		}
		return &ast.RegexLiteral{Pattern: pattern}, true, nil
	case "pair":
		key, err := decodeChild(m, "key")
		if err != nil {
			return nil, true, err
		}
		val, err := decodeChild(m, "value")
		if err != nil {
			return nil, true, err
		}
		return &ast.PairLiteral{Key: key, Value: val}, true, nil
	case "hash":
		entries, err := decodeChildren(m, "pairs")
		if err != nil {
			return nil, true, err
		}
		pairs := make([]*ast.PairLiteral, 0, len(entries))
		for _, entry := range entries {
			pair, ok := entry.(*ast.PairLiteral)
			if !ok {
				return nil, true, fmt.Errorf("hash entries must be pairs, got %T", entry)
			}
			pairs = append(pairs, pair)
		}
		return &ast.HashLiteral{Pairs: pairs}, true, nil
	case "tuple":
		elements, err := decodeChildren(m, "elements")
		if err != nil {
			return nil, true, err
		}
		return &ast.TupleLiteral{Elements: elements}, true, nil
	case "array":
		elements, err := decodeChildren(m, "elements")
		if err != nil {
			return nil, true, err
		}
		return &ast.ArrayLiteral{Elements: elements}, true, nil
	}
	return nil, false, nil
}

func decodeReferenceNodes(m map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "ident":
		name, ok := m["name"].(string)
		if !ok {
			return nil, true, fmt.Errorf("ident needs a name")
		}
		return &ast.Identifier{Name: name}, true, nil
	case "member":
		recv, err := decodeChild(m, "receiver")
		if err != nil {
			return nil, true, err
		}
		name, ok := m["name"].(string)
		if !ok {
			return nil, true, fmt.Errorf("member access needs a name")
		}
		return &ast.MemberAccess{Receiver: recv, Name: name}, true, nil
	case "index":
		target, err := decodeChild(m, "target")
		if err != nil {
			return nil, true, err
		}
		index, err := decodeChild(m, "index")
		if err != nil {
			return nil, true, err
		}
		return &ast.IndexExpression{Target: target, Index: index}, true, nil
	case "bind":
		name, ok := m["name"].(string)
		if !ok {
			return nil, true, fmt.Errorf("bind needs a name")
		}
		val, err := decodeChild(m, "value")
		if err != nil {
			return nil, true, err
		}
		return &ast.BindingExpression{Name: name, Value: val}, true, nil
	case "assign":
		target, err := decodeChild(m, "target")
		if err != nil {
			return nil, true, err
		}
		val, err := decodeChild(m, "value")
		if err != nil {
			return nil, true, err
		}
		return &ast.AssignmentExpression{Target: target, Value: val}, true, nil
	}
	return nil, false, nil
}

func decodeControlFlowNodes(m map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "block":
		body, err := decodeChildren(m, "body")
		if err != nil {
			return nil, true, err
		}
		return &ast.BlockExpression{Body: body}, true, nil
	case "if":
		cond, err := decodeChild(m, "cond")
		if err != nil {
			return nil, true, err
		}
		then, err := decodeChild(m, "then")
		if err != nil {
			return nil, true, err
		}
		node := &ast.IfExpression{Condition: cond, Then: then}
		if _, ok := m["else"]; ok {
			els, err := decodeChild(m, "else")
			if err != nil {
				return nil, true, err
			}
			node.Else = els
		}
		return node, true, nil
	case "or":
		left, err := decodeChild(m, "left")
		if err != nil {
			return nil, true, err
		}
		right, err := decodeChild(m, "right")
		if err != nil {
			return nil, true, err
		}
		return &ast.OrExpression{Left: left, Right: right}, true, nil
	case "while":
		cond, err := decodeChild(m, "cond")
		if err != nil {
			return nil, true, err
		}
		body, err := decodeChild(m, "body")
		if err != nil {
			return nil, true, err
		}
		return &ast.WhileExpression{Condition: cond, Body: body}, true, nil
	case "do_while":
		body, err := decodeChild(m, "body")
		if err != nil {
			return nil, true, err
		}
		cond, err := decodeChild(m, "cond")
		if err != nil {
			return nil, true, err
		}
		return &ast.DoWhileExpression{Body: body, Condition: cond}, true, nil
	case "for":
		// Any of init, cond, and step may be omitted; only the body is
		// required.
		init, err := decodeOptionalChild(m, "init")
		if err != nil {
			return nil, true, err
		}
		cond, err := decodeOptionalChild(m, "cond")
		if err != nil {
			return nil, true, err
		}
		step, err := decodeOptionalChild(m, "step")
		if err != nil {
			return nil, true, err
		}
		body, err := decodeChild(m, "body")
		if err != nil {
			return nil, true, err
		}
		return &ast.ForExpression{Init: init, Condition: cond, Step: step, Body: body}, true, nil
	case "unary":
		op, ok := m["op"].(string)
		if !ok {
			return nil, true, fmt.Errorf("unary expression needs an op")
		}
		operand, err := decodeChild(m, "operand")
		if err != nil {
			return nil, true, err
		}
		return &ast.UnaryExpression{Op: op, Operand: operand}, true, nil
	case "binary":
		op, ok := m["op"].(string)
		if !ok {
			return nil, true, fmt.Errorf("binary expression needs an op")
		}
		left, err := decodeChild(m, "left")
		if err != nil {
			return nil, true, err
		}
		right, err := decodeChild(m, "right")
		if err != nil {
			return nil, true, err
		}
		return &ast.BinaryExpression{Op: op, Left: left, Right: right}, true, nil
	}
	return nil, false, nil
}

func decodeFunctionNodes(m map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "fn":
		name, _ := m["name"].(string)
		params, err := stringList(m["params"])
		if err != nil {
			return nil, true, err
		}
		body, err := decodeChild(m, "body")
		if err != nil {
			return nil, true, err
		}
		return &ast.FunctionLiteral{Name: name, Params: params, Body: body}, true, nil
	case "call":
		callee, err := decodeChild(m, "callee")
		if err != nil {
			return nil, true, err
		}
		args, err := decodeChildren(m, "args")
		if err != nil {
			return nil, true, err
		}
		return &ast.CallExpression{Callee: callee, Args: args}, true, nil
	case "builtin":
		tag, ok := m["tag"].(string)
		if !ok {
			return nil, true, fmt.Errorf("builtin reference needs a tag")
		}
		return &ast.BuiltinReference{Tag: tag}, true, nil
	case "namespace":
		name, ok := m["name"].(string)
		if !ok {
			return nil, true, fmt.Errorf("namespace needs a name")
		}
		node := &ast.NamespaceDeclaration{Name: name}
		if _, ok := m["ancestor"]; ok {
			ancestor, err := decodeChild(m, "ancestor")
			if err != nil {
				return nil, true, err
			}
			node.Ancestor = ancestor
		}
		body, err := decodeBlock(m, "body")
		if err != nil {
			return nil, true, err
		}
		node.Body = body
		return node, true, nil
	case "class":
		name, ok := m["name"].(string)
		if !ok {
			return nil, true, fmt.Errorf("class needs a name")
		}
		supers, err := decodeChildren(m, "supers")
		if err != nil {
			return nil, true, err
		}
		body, err := decodeBlock(m, "body")
		if err != nil {
			return nil, true, err
		}
		return &ast.ClassDeclaration{Name: name, Supers: supers, Body: body}, true, nil
	}
	return nil, false, nil
}

func decodeChild(m map[string]any, key string) (ast.Node, error) {
	entry, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	node, err := DecodeNode(entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return node, nil
}

func decodeOptionalChild(m map[string]any, key string) (ast.Node, error) {
	if _, ok := m[key]; !ok {
		return nil, nil
	}
	return decodeChild(m, key)
}

func decodeChildren(m map[string]any, key string) ([]ast.Node, error) {
	entry, ok := m[key]
	if !ok {
		return nil, nil
	}
	list, ok := entry.([]any)
	if !ok {
		return nil, fmt.Errorf("%q must be a sequence, got %T", key, entry)
	}
	nodes := make([]ast.Node, 0, len(list))
	for idx, child := range list {
		node, err := DecodeNode(child)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, idx, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func decodeBlock(m map[string]any, key string) (*ast.BlockExpression, error) {
	node, err := decodeChild(m, key)
	if err != nil {
		return nil, err
	}
	block, ok := node.(*ast.BlockExpression)
	if !ok {
		return nil, fmt.Errorf("%q must be a block, got %T", key, node)
	}
	return block, nil
}

func decodeSpan(entry any) (ast.Span, bool) {
	list, ok := entry.([]any)
	if !ok || len(list) != 4 {
		return ast.Span{}, false
	}
	nums := make([]int, 4)
	for i, item := range list {
		n, ok := item.(int)
		if !ok {
			return ast.Span{}, false
		}
		nums[i] = n
	}
	return ast.Span{
		Start: ast.Position{Line: nums[0], Column: nums[1]},
		End:   ast.Position{Line: nums[2], Column: nums[3]},
	}, true
}

func toStringMap(entry any) (map[string]any, bool) {
	switch m := entry.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func bigFromAny(entry any) (*big.Int, error) {
	switch v := entry.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		val, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", v)
		}
		return val, nil
	default:
		return nil, fmt.Errorf("integer literal needs an integer value, got %T", entry)
	}
}

func decimalFromAny(entry any) (*apd.Decimal, error) {
	var text string
	switch v := entry.(type) {
	case float64:
		dec := new(apd.Decimal)
		if _, err := dec.SetFloat64(v); err != nil {
			return nil, fmt.Errorf("invalid float literal %v: %w", v, err)
		}
		return dec, nil
	case int:
		return apd.New(int64(v), 0), nil
	case string:
		text = v
	default:
		return nil, fmt.Errorf("float literal needs a numeric value, got %T", entry)
	}
	dec, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid float literal %q: %w", text, err)
	}
	return dec, nil
}

func stringList(entry any) ([]string, error) {
	if entry == nil {
		return nil, nil
	}
	list, ok := entry.([]any)
	if !ok {
		return nil, fmt.Errorf("params must be a sequence, got %T", entry)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("params must be strings, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
