package grammar

import "fmt"

// Graph is the top-level Grammar Graph container: a traversable, mutable
// collection of named modules reachable from a single root, supporting
// dotted path lookup and context-sensitive references.
type Graph struct {
	Root *Module

	modules map[string]*Module // dotted path (without leading "root.") -> module
}

// NewGraph creates a Graph whose root module is named "root".
func NewGraph() *Graph {
	return NewGraphWithRoot(NewModule("root"))
}

// NewGraphWithRoot creates a Graph rooted at an existing module, typically
// one produced by a Factory.
func NewGraphWithRoot(root *Module) *Graph {
	return &Graph{
		Root:    root,
		modules: map[string]*Module{"": root},
	}
}

// DefineModule installs mod as a named submodule reachable at dotted path
// (relative to the graph root, e.g. "mod" or "mod.sub").
func (g *Graph) DefineModule(path string, mod *Module) {
	g.modules[path] = mod
}

// ModuleAt returns the module at the given dotted path ("" for the root).
func (g *Graph) ModuleAt(path string) (*Module, bool) {
	m, ok := g.modules[path]
	return m, ok
}

// TraversalContext carries the information a Reference resolves against:
// the module currently being expanded, the argument bindings in scope (for
// template/parameterized productions), and "self" (the definition whose
// term tree is currently being traversed, for self.base style references).
type TraversalContext struct {
	Module *Module
	Args   map[string]*SymbolDefinition
	Self   *SymbolDefinition
}

// Resolve resolves ref against ctx, returning the SymbolDefinition it
// names. Every Reference in a resolved grammar must point to an existing
// node; callers that construct references dynamically should treat a
// resolution failure here as a notice-worthy condition, not a panic, since
// it can stem from user-supplied grammar data.
func (g *Graph) Resolve(ref Reference, ctx TraversalContext) (*SymbolDefinition, error) {
	switch ref.Qualifier {
	case QualRoot:
		return g.resolvePath(g.Root, ref.Path)
	case QualModule:
		if ctx.Module == nil {
			return nil, fmt.Errorf("grammar: reference %q used module qualifier with no module in context", ref.String())
		}
		return g.resolvePath(ctx.Module, ref.Path)
	case QualArgs:
		if len(ref.Path) != 1 {
			return nil, fmt.Errorf("grammar: args reference %q must name exactly one argument", ref.String())
		}
		def, ok := ctx.Args[ref.Path[0]]
		if !ok {
			return nil, fmt.Errorf("grammar: no bound argument named %q", ref.Path[0])
		}
		return def, nil
	case QualSelf:
		cur := ctx.Self
		path := ref.Path
		for len(path) > 0 && path[0] == "base" {
			if cur == nil {
				return nil, fmt.Errorf("grammar: reference %q has no self in context", ref.String())
			}
			base, ok := cur.ResolveBase()
			if !ok {
				return nil, fmt.Errorf("grammar: %q has no base to resolve self.base against", cur.Name)
			}
			cur = base
			path = path[1:]
		}
		if len(path) == 0 {
			if cur == nil {
				return nil, fmt.Errorf("grammar: reference %q has no self in context", ref.String())
			}
			return cur, nil
		}
		// self.<name...> with no module to search in is not resolvable
		// further without a module context.
		if ctx.Module == nil {
			return nil, fmt.Errorf("grammar: reference %q needs a module to resolve %v against", ref.String(), path)
		}
		return g.resolvePath(ctx.Module, path)
	default: // QualNone: resolve against the current module, falling
		// through to its base chain.
		if ctx.Module == nil {
			return nil, fmt.Errorf("grammar: unqualified reference %q with no module in context", ref.String())
		}
		return g.resolvePath(ctx.Module, ref.Path)
	}
}

// resolvePath walks path against mod: the first segment resolves within
// mod (falling through to mod.Base); if more segments remain, the first
// segment must instead name a module registered in g at
// "<enclosing path>.<name>" (the nested-module convention), and the rest of
// the path is resolved there. A definition of that name in mod plays no
// part in the multi-segment case.
func (g *Graph) resolvePath(mod *Module, path []string) (*SymbolDefinition, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("grammar: empty reference path against module %q", mod.Name)
	}

	def, ok := mod.Lookup(path[0])
	if len(path) == 1 {
		if !ok {
			return nil, fmt.Errorf("grammar: %q not found in module %q", path[0], mod.Name)
		}
		return def, nil
	}

	// more segments remain: path[0] must name a nested module.
	nextPath := modulePath(mod, path[0])
	nextMod, ok := g.modules[nextPath]
	if !ok {
		return nil, fmt.Errorf("grammar: %q is not a module in %q", path[0], mod.Name)
	}
	return g.resolvePath(nextMod, path[1:])
}

func modulePath(parent *Module, name string) string {
	if parent.Name == "root" {
		return name
	}
	return parent.Name + "." + name
}
