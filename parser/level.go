package parser

import (
	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
)

// LevelKind discriminates the two kinds of stack level a ParserState can
// hold: a production being expanded, or a term within one being walked.
type LevelKind int

const (
	LevelProduction LevelKind = iota
	LevelTerm
)

func (k LevelKind) String() string {
	if k == LevelProduction {
		return "Production"
	}
	return "Term"
}

// Level is one entry of a ParserState's level stack.
//
// For a production level, Def is the definition currently being expanded
// and Module is the module it was resolved in (needed so a later Reference
// term resolves relative to the right module); PosID is unused (expansion
// happens by pushing a single term level for Def.Term).
//
// For a term level, Term is the term node being walked and PosID carries
// a kind-specific cursor: Concat's current child
// index, Multiply's repetition count so far, Alternate's chosen index (-1
// undecided), Reference's 0/1 descended flag, Token's 0/1 consumed flag.
type Level struct {
	Kind   LevelKind
	Module *grammar.Module
	Def    *grammar.SymbolDefinition
	Term   *grammar.Term
	PosID  int

	// expanded marks a production level whose single child term level has
	// already been pushed, so settle does not push it a second time.
	expanded bool

	// Children accumulates the AST nodes produced by this level's
	// sub-levels, in order, for the owning handler to assemble.
	Children []ast.Node

	// ErrSync marks a Concat term level whose production declared an
	// error-sync position; SyncPos is the child index recovery may resume
	// at once the erroring region has been skipped.
	ErrSync bool
	SyncPos int

	// Modifiers accumulates modifier nodes parsed via a ParsingDimension
	// and pending attachment to this level's eventual AST node.
	Modifiers []ast.Node
}

func newProductionLevel(mod *grammar.Module, def *grammar.SymbolDefinition) *Level {
	return &Level{Kind: LevelProduction, Module: mod, Def: def}
}

func newTermLevel(mod *grammar.Module, term *grammar.Term) *Level {
	lvl := &Level{Kind: LevelTerm, Module: mod, Term: term}
	if term != nil && term.Kind() == grammar.KindAlternate {
		lvl.PosID = -1
	}
	return lvl
}

// clone returns a deep-enough copy of lvl for branch speculation: Children
// and Modifiers are copied slice headers sharing node pointers (AST nodes
// already built are immutable from the parser's perspective once created),
// everything else is a value copy.
func (lvl *Level) clone() *Level {
	cp := *lvl
	cp.Children = append([]ast.Node(nil), lvl.Children...)
	cp.Modifiers = append([]ast.Node(nil), lvl.Modifiers...)
	return &cp
}

// signature returns a comparable summary of lvl's grammar cursor position,
// used for duplicate-fate elimination. It deliberately excludes the
// accumulated Children/Modifiers themselves: identical cursor plus
// child-count is sufficient to collapse the common case of two branches
// that raced to the same position via different now-dead alternate
// choices.
type levelSig struct {
	kind     LevelKind
	defName  string
	term     *grammar.Term
	posID    int
	numKids  int
}

func (lvl *Level) signature() levelSig {
	sig := levelSig{kind: lvl.Kind, posID: lvl.PosID, term: lvl.Term, numKids: len(lvl.Children)}
	if lvl.Def != nil {
		sig.defName = lvl.Def.Name
	}
	return sig
}
