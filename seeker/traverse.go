package seeker

import (
	"fmt"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/internal/util"
	"github.com/dekarrin/suhuf/notice"
)

// task is one unit of pending search work: resolve ref within scope. The
// run's work stack holds tasks instead of the seeker recursing natively, so
// deeply nested templates and long bridge chains cannot exhaust the Go
// stack.
type task struct {
	ref   ast.Node
	scope ast.Node
	flags Flags

	this      ast.Node
	thisIndex int
	stack     []ast.Node

	// external marks a scope entered through a bridge, where entries
	// flagged Private are not visible.
	external bool
}

// run is the per-seek state: the callback, stop latch, cycle-protection
// set, pending work, and the first failed-candidate notice (reported only
// if the whole seek yields nothing).
type run struct {
	seeker *Seeker
	cb     Callback

	found   bool
	stopped bool
	visited *util.Set[visitKey]
	work    []*task
	saved   *notice.Notice
}

func (r *run) yield(m *Match) Verb {
	r.found = true
	v := r.cb(m)
	if v == Stop || v == PerformAndStop {
		r.stopped = true
	}
	return v
}

func (r *run) fail(code string, msg string, at ast.Node) {
	if r.saved != nil {
		return
	}
	n := notice.Notice{Code: code, Severity: notice.Error, Message: msg}
	if at != nil && at.Location() != nil {
		n.Location = []notice.SourceLocation{*at.Location()}
	}
	r.saved = &n
}

func (r *run) seek(ref, target ast.Node, flags Flags, this ast.Node, thisIndex int, stack []ast.Node) bool {
	if ref == nil || target == nil {
		return false
	}
	r.visited = util.NewSet[visitKey]()
	r.work = []*task{{ref: ref, scope: target, flags: flags, this: this, thisIndex: thisIndex, stack: stack}}

	for len(r.work) > 0 && !r.stopped {
		t := r.work[len(r.work)-1]
		r.work = r.work[:len(r.work)-1]

		key := visitKey{ref: t.ref, scope: t.scope}
		if r.visited.Has(key) {
			continue
		}
		r.visited.Add(key)

		if m, ok := r.seeker.satisfyContinuation(t.ref, t.scope); ok {
			r.yield(m)
			continue
		}

		switch refNode := t.ref.(type) {
		case *ast.IdentifierNode:
			r.seekIdent(refNode, t)
		case *ast.LinkNode:
			r.seekLink(refNode, t)
		case *ast.ParamPassNode:
			r.seekParamPass(refNode, t)
		case *ast.ThisTypeRefNode:
			if t.this != nil {
				r.yield(&Match{Node: t.this, Stack: appendStack(t.stack, t.this), ThisIndex: t.thisIndex})
			} else {
				r.fail(InvalidType, "this-type reference outside of any type body", refNode)
			}
		case *ast.ComparisonNode:
			// a constrained reference resolves through its left operand;
			// the constraint itself is the caller's to check.
			r.push(&task{ref: refNode.First, scope: t.scope, flags: t.flags, this: t.this, thisIndex: t.thisIndex, stack: t.stack, external: t.external})
		case *ast.TypeOpNode:
			r.push(&task{ref: refNode.Operand, scope: t.scope, flags: t.flags, this: t.this, thisIndex: t.thisIndex, stack: t.stack, external: t.external})
		case *ast.AliasNode:
			r.push(&task{ref: refNode.Reference, scope: t.scope, flags: t.flags, this: t.this, thisIndex: t.thisIndex, stack: t.stack, external: t.external})
		case *ast.BracketNode:
			r.push(&task{ref: refNode.Inner, scope: t.scope, flags: t.flags, this: t.this, thisIndex: t.thisIndex, stack: t.stack, external: t.external})
		default:
			r.fail(InvalidType, fmt.Sprintf("%s is not a reference expression", t.ref.Kind()), t.ref)
		}
	}

	if !r.found && r.saved != nil {
		r.seeker.store.Add(*r.saved)
	}
	return r.found
}

func (r *run) push(t *task) {
	r.work = append(r.work, t)
}

// seekIdent resolves a bare name: direct definitions in the scope first,
// then injected entries, then bridged scopes, then the owner chain. The
// work stack pops in that order, so later stages run only as earlier ones
// are exhausted without a Stop.
func (r *run) seekIdent(id *ast.IdentifierNode, t *task) {
	sc := scopeOf(t.scope)
	if sc == nil {
		r.fail(IdentifierIsNotType, fmt.Sprintf("%q is searched within something that has no scope", id.Name), id)
		return
	}

	// schedule fallbacks first; the stack pops them after direct entries
	// have been yielded below.
	if !t.flags.Has(SkipOwners) {
		if ownerSc := owningScope(sc); ownerSc != nil {
			r.push(&task{ref: t.ref, scope: ownerSc, flags: t.flags, this: t.this, thisIndex: t.thisIndex, stack: t.stack})
		}
	}
	if !t.flags.Has(noBridges) {
		brs := sc.Bridges()
		for i := len(brs) - 1; i >= 0; i-- {
			r.scheduleBridge(brs[i], sc, t)
		}
	}
	if !t.flags.Has(SkipInjections) {
		for i := len(sc.Items) - 1; i >= 0; i-- {
			def, ok := sc.Items[i].(*ast.DefinitionNode)
			if !ok || !def.Flags.Has(ast.Injection) {
				continue
			}
			r.scheduleInjection(def, t)
		}
	}

	for _, item := range sc.Items {
		if r.stopped {
			return
		}
		def, ok := item.(*ast.DefinitionNode)
		if !ok || def.Name != id.Name {
			continue
		}
		if t.external && def.Flags.Has(ast.Private) {
			continue
		}
		if al, ok := def.Target.(*ast.AliasNode); ok {
			r.push(&task{ref: al.Reference, scope: sc, flags: t.flags, this: t.this, thisIndex: t.thisIndex, stack: t.stack, external: t.external})
			continue
		}
		r.yield(&Match{
			Def:       def,
			Node:      def.Target,
			Stack:     appendStack(t.stack, def.Target),
			ThisIndex: t.thisIndex,
		})
	}
}

// scheduleBridge resolves a use-statement's target and queues the bridged
// scope for searching. The bridged scope is searched without further owner
// ascension, which also keeps bridge chains from looping back through
// their own containers.
func (r *run) scheduleBridge(br *ast.BridgeNode, sc *ast.ScopeNode, t *task) {
	sub := &run{seeker: r.seeker}
	var bridged *Match
	sub.cb = func(m *Match) Verb { bridged = m; return Stop }
	sub.seek(br.Target, sc, t.flags|noBridges, t.this, t.thisIndex, nil)
	if bridged == nil {
		r.fail(InvalidUseStatement, "use target does not resolve", br)
		return
	}
	deref, _ := DeepDeref(bridged.Node)
	bsc := scopeOf(deref)
	if bsc == nil {
		r.fail(InvalidUseStatement, "use target is not a scope", br)
		return
	}
	r.push(&task{
		ref: t.ref, scope: bsc, flags: t.flags | SkipOwners,
		this: t.this, thisIndex: t.thisIndex, stack: t.stack,
		external: true,
	})
}

// scheduleInjection queues an injected entry's type scope for searching, as
// if its members were members of the enclosing scope. A no-bind injection
// preserves the outer this binding; otherwise the injected entry becomes
// the new this target and its position in the result stack is recorded.
func (r *run) scheduleInjection(def *ast.DefinitionNode, t *task) {
	deref, _ := DeepDeref(def.Target)
	isc := scopeOf(deref)
	if isc == nil {
		return
	}
	newThis, newIdx := t.this, t.thisIndex
	stack := t.stack
	if !def.Flags.Has(ast.NoBindInjection) {
		newThis = def.Target
		newIdx = len(t.stack)
		stack = appendStack(t.stack, def.Target)
	}
	r.push(&task{
		ref: t.ref, scope: isc, flags: t.flags | SkipOwners,
		this: newThis, thisIndex: newIdx, stack: stack,
		external: true,
	})
}

// seekLink resolves "a.b" / "a->b": a first, then b within a's result, with
// no owner ascension from there. A reference-typed left side is
// dereferenced once before b is searched on the content type.
func (r *run) seekLink(link *ast.LinkNode, t *task) {
	lhs := r.resolveFirst(link.First, t.scope, t.flags, t.this, t.thisIndex, t.stack)
	if lhs == nil {
		r.fail(UnknownSymbol, fmt.Sprintf("left side of %q link does not resolve", link.Type), link.First)
		return
	}
	base := lhs.Node
	if inner, ok := derefOnce(base); ok {
		base = inner
	}
	bsc := scopeOf(base)
	if bsc == nil {
		r.fail(IdentifierIsNotType, fmt.Sprintf("left side of %q link has no members", link.Type), link.First)
		return
	}
	r.push(&task{
		ref: link.Second, scope: bsc, flags: t.flags | SkipOwners,
		this: t.this, thisIndex: t.thisIndex, stack: lhs.Stack,
		external: t.external,
	})
}

// seekParamPass resolves operand(args): a round-bracket pass on a template
// definition yields its cached instance; any other pass yields the operand
// resolution itself, leaving argument matching to the caller.
func (r *run) seekParamPass(pp *ast.ParamPassNode, t *task) {
	op := r.resolveFirst(pp.Operand, t.scope, t.flags, t.this, t.thisIndex, t.stack)
	if op == nil {
		r.fail(UnknownSymbol, "param-pass operand does not resolve", pp.Operand)
		return
	}
	if pp.Bracket == ast.RoundBracket && op.Def != nil && isTemplate(op.Def) {
		inst := r.seeker.instantiate(op.Def, pp.Param)
		r.yield(&Match{Def: op.Def, Node: inst, Stack: appendStack(op.Stack, inst), ThisIndex: op.ThisIndex})
		return
	}
	r.yield(op)
}

// resolveFirst runs a nested seek for the first match of ref within scope,
// without filing its failure notices (the enclosing run decides whether the
// overall resolution failed).
func (r *run) resolveFirst(ref, scope ast.Node, flags Flags, this ast.Node, thisIndex int, stack []ast.Node) *Match {
	sub := &run{seeker: r.seeker}
	var out *Match
	sub.cb = func(m *Match) Verb { out = m; return Stop }
	sub.seek(ref, scope, flags, this, thisIndex, stack)
	return out
}

func appendStack(stack []ast.Node, n ast.Node) []ast.Node {
	out := make([]ast.Node, len(stack)+1)
	copy(out, stack)
	out[len(stack)] = n
	return out
}

// scopeOf finds the searchable scope behind n: a scope itself, a
// definition's target, or a bracketed inner node.
func scopeOf(n ast.Node) *ast.ScopeNode {
	switch t := n.(type) {
	case *ast.ScopeNode:
		return t
	case *ast.DefinitionNode:
		return scopeOf(t.Target)
	case *ast.BracketNode:
		return scopeOf(t.Inner)
	default:
		return nil
	}
}

// owningScope ascends n's owner chain to the nearest enclosing scope.
func owningScope(n ast.Node) *ast.ScopeNode {
	for cur := n.Owner(); cur != nil; cur = cur.Owner() {
		if sc, ok := cur.(*ast.ScopeNode); ok {
			return sc
		}
	}
	return nil
}

// DeepDeref strips every reference-type wrapper from n, returning the
// content node and how many layers were removed.
func DeepDeref(n ast.Node) (ast.Node, int) {
	count := 0
	for {
		inner, ok := derefOnce(n)
		if !ok {
			return n, count
		}
		n = inner
		count++
	}
}

func derefOnce(n ast.Node) (ast.Node, bool) {
	if op, ok := n.(*ast.TypeOpNode); ok && op.Operand != nil {
		return op.Operand, true
	}
	return nil, false
}
