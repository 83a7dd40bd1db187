package ast

// ThisTypeRefNode refers to the type currently bound as "this" at the
// point of resolution. It carries no payload of its own; the resolver
// supplies the binding.
type ThisTypeRefNode struct {
	Base
}

func (n *ThisTypeRefNode) Kind() NodeKind { return KindThisTypeRef }

// TypeOpNode applies a type-level operator (reference-of, content-of, and
// the like) to its operand within a reference expression.
type TypeOpNode struct {
	Base
	Op      string
	Operand Node
}

func (n *TypeOpNode) Kind() NodeKind { return KindTypeOp }
