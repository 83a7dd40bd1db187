// Package ast implements the AST Model: a tagged tree of expression,
// statement, and definition nodes with metadata and source locations,
// produced by parser handlers during reduction.
//
// Rather than mimic the panic-on-wrong-variant accessor idiom used for
// Suhuf's smaller sum types (grammar.Term, grammar.CharGroupUnit), the AST's
// two dozen node kinds are exposed as ordinary Go types behind the Node
// interface and discriminated with a type switch on Kind() plus a type
// assertion to the concrete pointer type; an accessor per variant would be
// unwieldy at this many kinds.
package ast

import (
	"github.com/dekarrin/suhuf/ids"
	"github.com/dekarrin/suhuf/notice"
)

// NodeKind discriminates the AST node sum type.
type NodeKind int

const (
	KindIdentifier NodeKind = iota
	KindIntegerLiteral
	KindFloatLiteral
	KindCharLiteral
	KindStringLiteral
	KindPrefix
	KindPostfix
	KindAssignment
	KindComparison
	KindAddition
	KindMultiplication
	KindBitwise
	KindLog
	KindLink
	KindConditional
	KindParamPass
	KindRoute
	KindScope
	KindList
	KindMap
	KindBracket
	KindDefinition
	KindBridge
	KindAlias
	KindGenericCommand
	KindThisTypeRef
	KindTypeOp
)

var kindNames = map[NodeKind]string{
	KindIdentifier:     "Identifier",
	KindIntegerLiteral: "IntegerLiteral",
	KindFloatLiteral:   "FloatLiteral",
	KindCharLiteral:    "CharLiteral",
	KindStringLiteral:  "StringLiteral",
	KindPrefix:         "Prefix",
	KindPostfix:        "Postfix",
	KindAssignment:     "Assignment",
	KindComparison:     "Comparison",
	KindAddition:       "Addition",
	KindMultiplication: "Multiplication",
	KindBitwise:        "Bitwise",
	KindLog:            "Log",
	KindLink:           "Link",
	KindConditional:    "Conditional",
	KindParamPass:      "ParamPass",
	KindRoute:          "Route",
	KindScope:          "Scope",
	KindList:           "List",
	KindMap:            "Map",
	KindBracket:        "Bracket",
	KindDefinition:     "Definition",
	KindBridge:         "Bridge",
	KindAlias:          "Alias",
	KindGenericCommand: "GenericCommand",
	KindThisTypeRef:    "ThisTypeRef",
	KindTypeOp:         "TypeOp",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Node is satisfied by every AST node type. ProdID identifies the
// production that produced the node; Location is nil for synthetic nodes
// that have no corresponding source text; Owner is the parent container
// that actually contains this node (or nil for the root), a non-owning
// back link used by traversal.
type Node interface {
	Kind() NodeKind
	ProdID() ids.ID
	Location() *notice.SourceLocation
	Owner() Node
	Modifiers() []Node
	AddModifier(mod Node)

	// setOwner is called by container nodes when this node is inserted;
	// it is unexported because ownership is a tree-structural invariant
	// callers outside this package must not violate directly.
	setOwner(owner Node)
}

// Base is embedded by every concrete node type to supply the common Node
// fields. It is not itself a Node.
type Base struct {
	Prod ids.ID
	Loc  *notice.SourceLocation

	owner Node
	mods  []Node
}

func (b *Base) ProdID() ids.ID                   { return b.Prod }
func (b *Base) Location() *notice.SourceLocation { return b.Loc }
func (b *Base) Owner() Node                      { return b.owner }
func (b *Base) setOwner(owner Node)              { b.owner = owner }

// Modifiers returns the nodes attached to this one via a leading or
// trailing modifier side grammar, in attachment order.
func (b *Base) Modifiers() []Node { return b.mods }

// AddModifier attaches mod to this node.
func (b *Base) AddModifier(mod Node) { b.mods = append(b.mods, mod) }

// SetOwner is exported for parser handlers that build container nodes
// incrementally outside of a container's own Append/Set methods (e.g. when
// synthesizing a node that substitutes for one already owned elsewhere).
func SetOwner(child, owner Node) {
	if child == nil {
		return
	}
	child.setOwner(owner)
}
