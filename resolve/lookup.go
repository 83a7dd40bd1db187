package resolve

import (
	"fmt"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/internal/util"
	"github.com/dekarrin/suhuf/notice"
	"github.com/dekarrin/suhuf/seeker"
)

// Notice codes raised by callee lookup.
const (
	ArgsMismatch        = "ArgsMismatch"
	MultipleCalleeMatch = "MultipleCalleeMatch"
	InvalidOperation    = "InvalidOperation"
)

// InitName is the member name a type declares its constructor under.
const InitName = "~init"

// CallOpName is the member name a type declares its call/index operator
// under.
const CallOpName = "()"

// TypeModel supplies the type information callee matching needs. The
// compiler stages behind the front end implement it; tests use a fake.
type TypeModel interface {
	// MatchCall rates how well candidate can be invoked with argTypes and
	// returns the total number of reference layers that must be stripped
	// from the arguments to do so.
	MatchCall(candidate ast.Node, argTypes []ast.Node) (MatchStatus, int)

	// MatchType rates how well a value of type from satisfies to.
	MatchType(from, to ast.Node) MatchStatus

	// IsType reports whether n denotes a data type.
	IsType(n ast.Node) bool

	// IsFunction reports whether n is directly callable.
	IsFunction(n ast.Node) bool

	// FuncPointerTarget returns the pointee function of a
	// function-pointer-typed value, or nil if n is not one.
	FuncPointerTarget(n ast.Node) ast.Node

	// IsArray reports whether n denotes a raw array type.
	IsArray(n ast.Node) bool

	// IsIntegerCastable reports whether a value of type n implicitly
	// converts to an integer index.
	IsIntegerCastable(n ast.Node) bool
}

// CalleeLookupResult is the outcome of a callee lookup.
type CalleeLookupResult struct {
	// Status is the tier of the best candidate found.
	Status MatchStatus

	// Notice is the diagnostic describing why the lookup is not usable,
	// or nil when Callee is valid. An ambiguity notice here means no
	// single callee was chosen even though Status is Callable.
	Notice *notice.Notice

	// Callee is the chosen candidate, nil when none or ambiguous.
	Callee ast.Node

	// Stack is the resolution path the seeker walked to reach Callee.
	Stack []ast.Node

	// ThisIndex indexes Stack at the entry bound as this, or -1.
	ThisIndex int

	// Type is the result type context of the match: the looked-up type
	// for constructor lookups, otherwise the callee itself.
	Type ast.Node

	// Derefs counts the reference layers stripped to obtain the call.
	Derefs int

	// Init records how a constructor lookup was satisfied, if one ran.
	Init InitKind
}

// Lookup performs callee resolution over a seeker and a type model,
// filing diagnostics in store.
type Lookup struct {
	seeker *seeker.Seeker
	types  TypeModel
	store  *notice.Store
}

// NewLookup creates a Lookup.
func NewLookup(sk *seeker.Seeker, types TypeModel, store *notice.Store) *Lookup {
	return &Lookup{seeker: sk, types: types, store: store}
}

// Callee finds the best candidate named name, reachable from scope, for a
// call with the given argument types. thisType, when non-nil, is the type
// whose members are searched before the enclosing scopes.
//
// Candidates are rated by MatchStatus tier. A strictly better candidate
// replaces the best so far and clears any ambiguity; an equal-tier
// candidate makes the lookup ambiguous, and the ambiguity sticks unless a
// strictly better tier supersedes it. Directly-declared names are rated
// first; only when they leave the best status below Exact are injected
// members folded in as additional candidates, so a direct exact match
// wins outright without consulting injections.
func (l *Lookup) Callee(name string, scope ast.Node, thisType ast.Node, argTypes []ast.Node) CalleeLookupResult {
	root := scope
	if thisType != nil {
		if tsc := typeScope(thisType); tsc != nil {
			root = tsc
		}
	}

	collect := func(from ast.Node, flags seeker.Flags) []*seeker.Match {
		var out []*seeker.Match
		l.seeker.Foreach(&ast.IdentifierNode{Name: name}, from, func(m *seeker.Match) seeker.Verb {
			out = append(out, m)
			return seeker.Move
		}, flags)
		return out
	}

	direct := collect(root, seeker.SkipInjections)
	if len(direct) == 0 && thisType != nil {
		// nothing on the type itself; fall back to the call-site scope.
		root = scope
		direct = collect(root, seeker.SkipInjections)
	}

	// a lone type candidate with no this context takes the constructor
	// path instead of call matching.
	if len(direct) == 1 && thisType == nil && l.types.IsType(direct[0].Node) {
		return l.constructor(name, direct[0], argTypes)
	}

	best := CalleeLookupResult{Status: None, ThisIndex: -1}
	var tied []*seeker.Match
	var bestMatch *seeker.Match
	considered := 0

	consider := func(cand *seeker.Match) {
		considered++
		status, derefs, callee := l.rate(cand.Node, argTypes)
		if !status.Callable() {
			return
		}
		switch {
		case status > best.Status:
			best = CalleeLookupResult{
				Status:    status,
				Callee:    callee,
				Stack:     cand.Stack,
				ThisIndex: cand.ThisIndex,
				Type:      callee,
				Derefs:    derefs,
			}
			bestMatch = cand
			tied = nil
		case status == best.Status:
			if len(tied) == 0 && bestMatch != nil {
				tied = append(tied, bestMatch)
			}
			tied = append(tied, cand)
		}
	}

	for _, cand := range direct {
		consider(cand)
	}

	if best.Status < Exact {
		seen := make(map[ast.Node]bool, len(direct))
		for _, cand := range direct {
			seen[cand.Node] = true
		}
		for _, cand := range collect(root, 0) {
			if seen[cand.Node] {
				continue
			}
			consider(cand)
		}
	}

	if considered == 0 {
		return CalleeLookupResult{Status: None, ThisIndex: -1}
	}

	if best.Status == None {
		n := notice.Notice{
			Code:     ArgsMismatch,
			Severity: notice.Error,
			Message:  fmt.Sprintf("no candidate named %q accepts the given arguments", name),
		}
		l.store.Add(n)
		return CalleeLookupResult{Status: None, Notice: &n, ThisIndex: -1}
	}

	if len(tied) > 1 {
		n := l.ambiguityNotice(name, tied)
		l.store.Add(n)
		return CalleeLookupResult{Status: best.Status, Notice: &n, ThisIndex: -1}
	}

	return best
}

// rate scores one candidate: functions match directly, function-pointer
// values dereference once and match the pointee, array types match a
// single integer-castable index, and anything with a call operator member
// matches through it.
func (l *Lookup) rate(node ast.Node, argTypes []ast.Node) (MatchStatus, int, ast.Node) {
	deref, stripped := seeker.DeepDeref(node)

	if l.types.IsFunction(deref) {
		status, derefs := l.types.MatchCall(deref, argTypes)
		return status, derefs + stripped, deref
	}

	if fp := l.types.FuncPointerTarget(deref); fp != nil {
		status, derefs := l.types.MatchCall(fp, argTypes)
		return status, derefs + stripped + 1, fp
	}

	if l.types.IsArray(deref) {
		if len(argTypes) == 1 && l.types.IsIntegerCastable(argTypes[0]) {
			return Exact, stripped, deref
		}
		return None, 0, nil
	}

	if sc := typeScope(deref); sc != nil {
		var callOp *seeker.Match
		l.seeker.Foreach(&ast.IdentifierNode{Name: CallOpName}, sc, func(m *seeker.Match) seeker.Verb {
			callOp = m
			return seeker.Stop
		}, seeker.SkipOwners)
		if callOp != nil {
			status, derefs := l.types.MatchCall(callOp.Node, argTypes)
			return status, derefs + stripped, callOp.Node
		}
	}

	return None, 0, nil
}

// constructor resolves a call on a bare type name: a declared init member
// wins; failing that, one argument implicitly castable to the type itself
// is a synthesized copy init; failing that, zero arguments is a trivial
// init.
func (l *Lookup) constructor(name string, typeCand *seeker.Match, argTypes []ast.Node) CalleeLookupResult {
	typeNode := typeCand.Node

	if sc := typeScope(typeNode); sc != nil {
		var init *seeker.Match
		l.seeker.Foreach(&ast.IdentifierNode{Name: InitName}, sc, func(m *seeker.Match) seeker.Verb {
			init = m
			return seeker.Stop
		}, seeker.SkipOwners)
		if init != nil {
			status, derefs := l.types.MatchCall(init.Node, argTypes)
			if status.Callable() {
				return CalleeLookupResult{
					Status:    status,
					Callee:    init.Node,
					Stack:     init.Stack,
					ThisIndex: init.ThisIndex,
					Type:      typeNode,
					Derefs:    derefs,
					Init:      DeclaredInit,
				}
			}
			n := notice.Notice{
				Code:     ArgsMismatch,
				Severity: notice.Error,
				Message:  fmt.Sprintf("no init of %q accepts the given arguments", name),
			}
			l.store.Add(n)
			return CalleeLookupResult{Status: None, Notice: &n, ThisIndex: -1, Type: typeNode}
		}
	}

	if len(argTypes) == 1 {
		if status := l.types.MatchType(argTypes[0], typeNode); status >= ImplicitCast {
			return CalleeLookupResult{
				Status:    status,
				Callee:    typeNode,
				Stack:     typeCand.Stack,
				ThisIndex: typeCand.ThisIndex,
				Type:      typeNode,
				Init:      SynthesizedCopyInit,
			}
		}
	}

	if len(argTypes) == 0 {
		return CalleeLookupResult{
			Status:    Exact,
			Callee:    typeNode,
			Stack:     typeCand.Stack,
			ThisIndex: typeCand.ThisIndex,
			Type:      typeNode,
			Init:      TrivialInit,
		}
	}

	n := notice.Notice{
		Code:     InvalidOperation,
		Severity: notice.Error,
		Message:  fmt.Sprintf("type %q cannot be constructed from the given arguments", name),
	}
	l.store.Add(n)
	return CalleeLookupResult{Status: None, Notice: &n, ThisIndex: -1, Type: typeNode}
}

func (l *Lookup) ambiguityNotice(name string, tied []*seeker.Match) notice.Notice {
	descs := make([]string, len(tied))
	var locs []notice.SourceLocation
	for i, m := range tied {
		desc := fmt.Sprintf("candidate %d", i+1)
		if m.Def != nil && m.Def.Location() != nil {
			desc = fmt.Sprintf("the one at %s", m.Def.Location().String())
			locs = append(locs, *m.Def.Location())
		}
		descs[i] = desc
	}
	return notice.Notice{
		Code:     MultipleCalleeMatch,
		Severity: notice.Error,
		Message:  fmt.Sprintf("call of %q matches %s equally well", name, util.MakeTextList(descs)),
		Location: locs,
	}
}

// typeScope finds the member scope of a type node, stripping reference
// wrappers first.
func typeScope(n ast.Node) *ast.ScopeNode {
	deref, _ := seeker.DeepDeref(n)
	switch t := deref.(type) {
	case *ast.ScopeNode:
		return t
	case *ast.DefinitionNode:
		return typeScope(t.Target)
	case *ast.BracketNode:
		return typeScope(t.Inner)
	default:
		return nil
	}
}
