package ast

import "fmt"

// Position is a zero-based source location inside a term document.
type Position struct {
	Line   int
	Column int
}

// Span delimits the region of a term document a node was decoded from.
// Spans feed diagnostics only; evaluation never depends on them.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}
