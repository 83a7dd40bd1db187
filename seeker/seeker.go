// Package seeker resolves reference expressions over an AST: given a
// reference built from identifiers, link operators, param-passes,
// this-type references, and type operators, it enumerates the AST nodes
// the reference denotes within a target scope, honoring scope ownership,
// use-statement bridges, and injected entries.
package seeker

import (
	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/notice"
)

// Notice codes raised by failed candidate resolutions. A seek that finds at
// least one match suppresses all of them.
const (
	UnknownSymbol       = "UnknownSymbol"
	IdentifierIsNotType = "IdentifierIsNotType"
	InvalidType         = "InvalidType"
	InvalidUseStatement = "InvalidUseStatement"
)

// Verb is a Callback's instruction for what the seek should do after a
// match is yielded.
type Verb int

const (
	// Move keeps searching for further matches.
	Move Verb = iota
	// Stop ends the seek.
	Stop
	// PerformAndMove applies the pending mutation (Set/Remove), then keeps
	// searching.
	PerformAndMove
	// PerformAndStop applies the pending mutation, then ends the seek.
	PerformAndStop
)

// Flags modify a seek.
type Flags int

const (
	// SkipOwners restricts the search to the target scope itself, with no
	// ascent through its owner chain.
	SkipOwners Flags = 1 << iota

	// SkipInjections leaves injected entries out of the search, so a
	// caller can consult directly-declared names first and fold injected
	// members in as a separate fallback pass.
	SkipInjections

	// noBridges is set internally while resolving a bridge's own target,
	// so mutually-referential use statements cannot recurse through each
	// other indefinitely.
	noBridges
)

// Has returns whether flag is set.
func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Match is one resolution the seeker found.
type Match struct {
	// Def is the definition whose name matched: the scope entry for a
	// direct match, or the template's own definition for a template
	// instance; nil for a this-type binding.
	Def *ast.DefinitionNode

	// Node is the matched value.
	Node ast.Node

	// Stack is the resolution path walked to reach Node, outermost first,
	// ending with Node itself.
	Stack []ast.Node

	// ThisIndex indexes Stack at the entry currently bound as "this", or
	// -1 when no binding applies.
	ThisIndex int
}

// Callback receives each match and directs the seek with its return verb.
type Callback func(m *Match) Verb

// Continuation pre-answers one (ref, target) pair from memory, letting a
// caller resume an enumeration mid-path without the seeker re-searching the
// portion it has already walked.
type Continuation struct {
	Ref    ast.Node
	Target ast.Node
	Result *Match
}

// Seeker resolves reference expressions. The zero value is not ready;
// use New.
type Seeker struct {
	store *notice.Store

	continuations []Continuation
	instances     map[instanceKey]*ast.DefinitionNode
}

// New creates a Seeker that files resolution notices in store.
func New(store *notice.Store) *Seeker {
	return &Seeker{
		store:     store,
		instances: make(map[instanceKey]*ast.DefinitionNode),
	}
}

// PushContinuation records that ref resolved against target yields result,
// to be satisfied from memory by a nested seek instead of re-searching.
// Continuations are consulted newest-first; callers pair each push with a
// PopContinuation around the nested call.
func (s *Seeker) PushContinuation(ref, target ast.Node, result *Match) {
	s.continuations = append(s.continuations, Continuation{Ref: ref, Target: target, Result: result})
}

// PopContinuation removes the most recently pushed continuation.
func (s *Seeker) PopContinuation() {
	if n := len(s.continuations); n > 0 {
		s.continuations = s.continuations[:n-1]
	}
}

func (s *Seeker) satisfyContinuation(ref, target ast.Node) (*Match, bool) {
	for i := len(s.continuations) - 1; i >= 0; i-- {
		c := s.continuations[i]
		if c.Ref == ref && c.Target == target {
			return c.Result, true
		}
	}
	return nil, false
}

// Foreach enumerates every node ref resolves to within target, yielding
// each to cb until cb returns Stop or the candidates are exhausted. It
// reports whether at least one match was yielded. Resolution notices are
// filed only when every candidate fails; the first failure encountered
// wins.
func (s *Seeker) Foreach(ref, target ast.Node, cb Callback, flags Flags) bool {
	r := &run{seeker: s, cb: cb}
	return r.seek(ref, target, flags, nil, -1, nil)
}

// Set resolves ref within target and, for each match whose callback verb is
// PerformAndMove or PerformAndStop, replaces the matched definition's
// target with value. Reports whether at least one match was yielded.
func (s *Seeker) Set(ref, target, value ast.Node, cb Callback) bool {
	r := &run{seeker: s, cb: func(m *Match) Verb {
		v := cb(m)
		if (v == PerformAndMove || v == PerformAndStop) && m.Def != nil {
			m.Def.Target = value
			ast.SetOwner(value, m.Def)
		}
		return v
	}}
	return r.seek(ref, target, 0, nil, -1, nil)
}

// Remove resolves ref within target and, for each match whose callback verb
// is PerformAndMove or PerformAndStop, removes the matched definition from
// its owning scope. Reports whether at least one match was yielded.
func (s *Seeker) Remove(ref, target ast.Node, cb Callback) bool {
	r := &run{seeker: s, cb: func(m *Match) Verb {
		v := cb(m)
		if (v == PerformAndMove || v == PerformAndStop) && m.Def != nil {
			removeFromOwner(m.Def)
		}
		return v
	}}
	return r.seek(ref, target, 0, nil, -1, nil)
}

func removeFromOwner(def *ast.DefinitionNode) {
	sc, ok := def.Owner().(*ast.ScopeNode)
	if !ok {
		return
	}
	for i, item := range sc.Items {
		if item == ast.Node(def) {
			sc.Items = append(sc.Items[:i], sc.Items[i+1:]...)
			return
		}
	}
}

// visitKey is the (ref, scope) pair cycle protection is keyed on.
type visitKey struct {
	ref   ast.Node
	scope ast.Node
}
