package ast

// VisibilityFlags are the modifier-derived flags a DefinitionNode carries.
type VisibilityFlags int

const (
	// Private restricts visibility to the defining scope (default is
	// public if neither flag is set).
	Private VisibilityFlags = 1 << iota
	// Injection marks a scope entry whose members are transparently
	// searchable as if directly declared in the enclosing type.
	Injection
	// NoBindInjection marks an Injection entry that does not rebind
	// "this" to the injected field when its members are searched; the
	// outer this binding is preserved.
	NoBindInjection
)

func (f VisibilityFlags) Has(flag VisibilityFlags) bool { return f&flag != 0 }

// DefinitionNode binds Name to Target within its owning scope. Mods holds
// the textual modifier words that appeared on the definition; structured
// modifier nodes attach through the Base's modifier list like any other
// node.
type DefinitionNode struct {
	Base
	Name   string
	Target Node
	Mods   []string
	Flags  VisibilityFlags
}

func (n *DefinitionNode) Kind() NodeKind { return KindDefinition }

// BridgeNode is the AST surface form of a "use" statement: it makes
// Target's scope's names visible at the bridge's location, via the
// Seeker's bridge-following rule.
type BridgeNode struct {
	Base
	Target Node
}

func (n *BridgeNode) Kind() NodeKind { return KindBridge }

// AliasNode re-exports Reference under the alias's own defining name.
type AliasNode struct {
	Base
	Reference Node
}

func (n *AliasNode) Kind() NodeKind { return KindAlias }

// GenericCommandNode is an extensible keyword command with positional
// arguments, used for grammar-supplied commands like "do" or
// "dump_ast" that don't need a dedicated node type.
type GenericCommandNode struct {
	Base
	Keyword string
	Args    []Node
}

func (n *GenericCommandNode) Kind() NodeKind { return KindGenericCommand }
