package grammar

import "fmt"

// Module is a named scope containing definitions. It may declare
// a Base module (inheritance) and a Start reference. Lookups fall through
// to Base definitions; a locally-defined name shadows the inherited one
// while leaving the base definition reachable via SymbolDefinition.Base (if
// the local definition was created as an explicit override, see
// Module.Override) or via a Lookup on m.Base.
type Module struct {
	Name string
	Base *Module
	Start *Reference

	defs       map[string]*SymbolDefinition
	defOrder   []string
	charGroups map[string]*CharGroup
	cgOrder    []string
	dims       []ParsingDimension
	errSync    [][2]string // {open, close} token text pairs
}

// NewModule creates an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		defs:       make(map[string]*SymbolDefinition),
		charGroups: make(map[string]*CharGroup),
	}
}

// Define installs def under its own Name, overwriting a local name of the
// same string if one already exists. It does not touch Base.
func (m *Module) Define(def *SymbolDefinition) {
	if _, exists := m.defs[def.Name]; !exists {
		m.defOrder = append(m.defOrder, def.Name)
	}
	m.defs[def.Name] = def
}

// Override installs def as a local shadow of whatever name def.Name
// currently resolves to (local-or-base), setting def.Base to that prior
// definition if one exists and def.Base was not already set explicitly.
func (m *Module) Override(def *SymbolDefinition) {
	if def.Base == nil {
		if prior, ok := m.Lookup(def.Name); ok {
			def.Base = prior
		}
	}
	m.Define(def)
}

// LookupLocal returns the definition installed directly on m (ignoring
// Base).
func (m *Module) LookupLocal(name string) (*SymbolDefinition, bool) {
	d, ok := m.defs[name]
	return d, ok
}

// Lookup resolves name against m, falling through to m.Base (and its
// Base, transitively) if not found locally.
func (m *Module) Lookup(name string) (*SymbolDefinition, bool) {
	for mod := m; mod != nil; mod = mod.Base {
		if d, ok := mod.defs[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Definitions returns every locally-defined SymbolDefinition in declaration
// order (does not include inherited-only definitions).
func (m *Module) Definitions() []*SymbolDefinition {
	out := make([]*SymbolDefinition, len(m.defOrder))
	for i, name := range m.defOrder {
		out[i] = m.defs[name]
	}
	return out
}

// RootTokenDefs returns every token definition reachable from m (local or
// inherited) that has RootToken set, in the order their names were first
// declared walking from the deepest Base up to m itself. A name locally
// overridden shadows its base entry in place rather than appearing twice,
// matching Lookup's fall-through semantics. The lexer attempts every
// definition this returns at each input position.
func (m *Module) RootTokenDefs() []*SymbolDefinition {
	var chain []*Module
	for mod := m; mod != nil; mod = mod.Base {
		chain = append(chain, mod)
	}

	var order []string
	seen := make(map[string]bool)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, name := range chain[i].defOrder {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}

	var out []*SymbolDefinition
	for _, name := range order {
		if d, ok := m.Lookup(name); ok && d.IsToken() {
			out = append(out, d)
		}
	}
	return out
}

// DefineCharGroup installs a named character-group definition on m.
func (m *Module) DefineCharGroup(cg *CharGroup) {
	if _, exists := m.charGroups[cg.Name]; !exists {
		m.cgOrder = append(m.cgOrder, cg.Name)
	}
	m.charGroups[cg.Name] = cg
}

// LookupCharGroup resolves a character-group name against m, falling
// through to Base like Lookup does for definitions.
func (m *Module) LookupCharGroup(name string) (*CharGroup, bool) {
	for mod := m; mod != nil; mod = mod.Base {
		if cg, ok := mod.charGroups[name]; ok {
			return cg, true
		}
	}
	return nil, false
}

// AddParsingDimension installs a side-grammar entry point on m.
func (m *Module) AddParsingDimension(dim ParsingDimension) {
	m.dims = append(m.dims, dim)
}

// ParsingDimensions returns every ParsingDimension installed on m (not
// inherited; dimensions are per-module entry points).
func (m *Module) ParsingDimensions() []ParsingDimension {
	return m.dims
}

// AddErrorSyncPair registers an open/close token-text pair the parser's
// error recovery tracks nesting depth of.
func (m *Module) AddErrorSyncPair(open, close string) {
	m.errSync = append(m.errSync, [2]string{open, close})
}

// ErrorSyncBlockPairs returns every registered open/close pair.
func (m *Module) ErrorSyncBlockPairs() [][2]string {
	return m.errSync
}

// ResolveStart returns the SymbolDefinition m.Start points to. Returns an
// error if Start is nil or does not resolve within m's reachable
// definitions.
func (m *Module) ResolveStart() (*SymbolDefinition, error) {
	if m.Start == nil {
		return nil, fmt.Errorf("grammar: module %q has no start reference", m.Name)
	}
	if m.Start.Qualifier != QualNone && m.Start.Qualifier != QualModule {
		return nil, fmt.Errorf("grammar: module %q start reference %q must be unqualified or module-qualified", m.Name, m.Start.String())
	}
	if len(m.Start.Path) != 1 {
		return nil, fmt.Errorf("grammar: module %q start reference %q must name exactly one definition", m.Name, m.Start.String())
	}
	def, ok := m.Lookup(m.Start.Path[0])
	if !ok {
		return nil, fmt.Errorf("grammar: module %q start reference %q does not resolve", m.Name, m.Start.String())
	}
	return def, nil
}
