package grammar

// SymbolFlags are the per-definition behavior flags.
type SymbolFlags int

const (
	// RootToken marks a definition the lexer attempts at the top of its
	// dispatch loop.
	RootToken SymbolFlags = 1 << iota
	// IgnoredToken marks a root token whose matches are consumed but never
	// emitted (whitespace, comments).
	IgnoredToken
	// PreferShorter overrides the lexer's default longest-match rule for
	// this definition, used for constructs like block comments where the
	// closing delimiter must win greedily but the body should not.
	PreferShorter
	// EnforcesProdObj marks a production whose parsing handler must
	// produce exactly one AST node (as opposed to passing children
	// through unchanged).
	EnforcesProdObj
	// HasErrorSync marks a production that declared an error-sync
	// position via ErrSyncPos; the zero value of ErrSyncPos is a valid
	// position, so presence is flagged here rather than sentinel-encoded.
	HasErrorSync
)

func (f SymbolFlags) Has(flag SymbolFlags) bool { return f&flag != 0 }

// SymbolDefinition is a production or token definition. Token definitions
// are distinguished only by having RootToken set; both kinds share the
// same term-tree/args/handler/inheritance machinery.
type SymbolDefinition struct {
	Name string

	Flags SymbolFlags

	// Term is the structural body of this definition.
	Term *Term

	// Args names the argument variables a template-style production
	// accepts (resolved via a Reference with Qualifier==QualArgs).
	Args []string

	// Handler names the parsing handler to invoke when a production level
	// using this definition is popped. Empty means the default
	// GenericParsingHandler.
	Handler string

	// Base is the definition this one overrides via grammar inheritance,
	// or nil. Overriding a definition locally shadows the inherited one
	// while leaving the base reachable through ResolveBase.
	Base *SymbolDefinition

	// ErrSyncPos is the index within this production's top-level Concat
	// at which error recovery may resume after skipping a balanced
	// erroring region. Only meaningful when Flags has HasErrorSync.
	ErrSyncPos int
}

// ErrorSyncAt returns the declared error-sync Concat index, or ok==false
// if this definition declares none.
func (d *SymbolDefinition) ErrorSyncAt() (int, bool) {
	if d == nil || !d.Flags.Has(HasErrorSync) {
		return 0, false
	}
	return d.ErrSyncPos, true
}

// ResolveBase returns the definition this one overrides, if any.
func (d *SymbolDefinition) ResolveBase() (*SymbolDefinition, bool) {
	if d == nil || d.Base == nil {
		return nil, false
	}
	return d.Base, true
}

// IsToken returns whether this definition is a token definition (as opposed
// to a production).
func (d *SymbolDefinition) IsToken() bool {
	return d.Flags.Has(RootToken)
}
