package grammar

import "fmt"

// Factory is the construction protocol for a module: a script installs
// character groups, then token definitions, then productions, then
// error-sync block pairs, then a start reference, in that order.
// Build() performs the const-token promotion pass before returning the
// finished module.
type Factory struct {
	mod *Module

	stage   factoryStage
	pending []*Term // term trees registered so far, for the promotion pass

	constTokenName string
	constSeen      map[string]bool
	constTexts     []string // distinct promoted literals, in first-seen order
}

type factoryStage int

const (
	stageCharGroups factoryStage = iota
	stageTokens
	stageProductions
	stageErrorSync
	stageStart
	stageDone
)

// NewFactory begins constructing a new module named name. constTokenName
// is the shared name given to the synthetic token definition that all
// promoted ConstTerm literals are attached to, so every keyword occurrence
// is emitted under one token id with distinct text.
func NewFactory(name, constTokenName string) *Factory {
	return &Factory{
		mod:            NewModule(name),
		constTokenName: constTokenName,
		constSeen:      make(map[string]bool),
	}
}

func (f *Factory) requireStage(max factoryStage, what string) error {
	if f.stage > max {
		return fmt.Errorf("grammar: factory: cannot add %s after stage %d has begun", what, f.stage)
	}
	return nil
}

// CharGroup installs a character-group definition. Must be called before
// any Token/Production/ErrorSync/Start call.
func (f *Factory) CharGroup(name string, unit CharGroupUnit) error {
	if err := f.requireStage(stageCharGroups, "a char group"); err != nil {
		return err
	}
	f.stage = stageCharGroups
	f.mod.DefineCharGroup(&CharGroup{Name: name, Unit: unit})
	return nil
}

// Token installs a token definition. Must be called after any CharGroup
// calls and before any Production/ErrorSync/Start calls.
func (f *Factory) Token(name string, term *Term, flags SymbolFlags) error {
	if err := f.requireStage(stageTokens, "a token"); err != nil {
		return err
	}
	f.stage = stageTokens
	f.mod.Define(&SymbolDefinition{Name: name, Term: term, Flags: flags | RootToken})
	f.pending = append(f.pending, term)
	return nil
}

// Production installs a non-terminal production definition. Must be called
// after any Token calls and before any ErrorSync/Start calls.
func (f *Factory) Production(name string, term *Term, opts ...ProductionOption) error {
	if err := f.requireStage(stageProductions, "a production"); err != nil {
		return err
	}
	f.stage = stageProductions
	def := &SymbolDefinition{Name: name, Term: term}
	for _, opt := range opts {
		opt(def)
	}
	f.mod.Define(def)
	f.pending = append(f.pending, term)
	return nil
}

// ProductionOption customizes a production installed via Factory.Production.
type ProductionOption func(*SymbolDefinition)

// WithArgs declares the argument variable names a template production
// accepts.
func WithArgs(names ...string) ProductionOption {
	return func(d *SymbolDefinition) { d.Args = names }
}

// WithHandler names the parsing handler invoked when this production's
// level is popped.
func WithHandler(name string) ProductionOption {
	return func(d *SymbolDefinition) { d.Handler = name }
}

// WithBase declares the definition this production overrides (grammar
// inheritance at the production level).
func WithBase(base *SymbolDefinition) ProductionOption {
	return func(d *SymbolDefinition) { d.Base = base }
}

// WithFlags ORs additional SymbolFlags onto the production.
func WithFlags(flags SymbolFlags) ProductionOption {
	return func(d *SymbolDefinition) { d.Flags |= flags }
}

// WithErrorSync declares that error recovery may resume this production at
// child index pos of its top-level Concat, after skipping a balanced
// erroring region.
func WithErrorSync(pos int) ProductionOption {
	return func(d *SymbolDefinition) {
		d.Flags |= HasErrorSync
		d.ErrSyncPos = pos
	}
}

// ErrorSyncPair registers an open/close token-text pair. Must be called
// after any Production calls and before Start.
func (f *Factory) ErrorSyncPair(open, close string) error {
	if err := f.requireStage(stageErrorSync, "an error-sync pair"); err != nil {
		return err
	}
	f.stage = stageErrorSync
	f.mod.AddErrorSyncPair(open, close)
	return nil
}

// Start sets the module's start reference. Must be the last call made to
// this Factory before Build.
func (f *Factory) Start(ref Reference) error {
	if err := f.requireStage(stageStart, "the start reference"); err != nil {
		return err
	}
	f.stage = stageStart
	f.mod.Start = &ref
	return nil
}

// Build finalizes construction: every ConstTerm reachable from a
// registered term tree is promoted to reference a synthetic token
// definition shared by all literals, and the finished Module is returned.
func (f *Factory) Build() (*Module, error) {
	if f.mod.Start == nil {
		return nil, fmt.Errorf("grammar: factory: module %q built with no start reference", f.mod.Name)
	}
	for _, t := range f.pending {
		f.promoteConsts(t)
	}
	f.installConstTokenDef()
	f.stage = stageDone
	return f.mod, nil
}

// promoteConsts walks t's tree in place, replacing every ConstTerm with a
// TokenTerm pointing at the shared const-token definition, creating that
// definition on first use.
func (f *Factory) promoteConsts(t *Term) {
	if t == nil {
		return
	}
	switch t.kind {
	case KindConcat, KindAlternate:
		for _, c := range t.children {
			f.promoteConsts(c)
		}
	case KindMultiply:
		f.promoteConsts(t.child)
	case KindConstTerm:
		text := t.constText
		*t = *TokenTerm(f.constTokenName, text)
		if !f.constSeen[text] {
			f.constSeen[text] = true
			f.constTexts = append(f.constTexts, text)
		}
	default:
		// Reference, TokenTerm, CharGroupTerm: no nested terms to promote.
	}
}

// installConstTokenDef gives the shared const-token definition a term tree
// alternating over every promoted literal, so the lexer can match keyword
// occurrences directly and emit them all under the one const-token id with
// distinct text. Installed after the promotion pass so its own ConstTerm
// children are never themselves promoted.
func (f *Factory) installConstTokenDef() {
	if len(f.constTexts) == 0 {
		return
	}
	alts := make([]*Term, len(f.constTexts))
	for i, text := range f.constTexts {
		alts[i] = ConstTerm(text)
	}
	f.mod.Define(&SymbolDefinition{
		Name:  f.constTokenName,
		Term:  Alternate(alts...),
		Flags: RootToken,
	})
}
