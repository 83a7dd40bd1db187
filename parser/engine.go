package parser

import (
	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/lex"
)

// settleStatus is what settle found when it ran out of non-consuming moves
// to make on a ParserState.
type settleStatus int

const (
	settleReady settleStatus = iota
	settleDone
	settleDecisionAlternate
	settleDecisionMultiply
	settleBlocked
)

// maxLevelDepth bounds the level stack so a left-recursive grammar kills
// its branch instead of expanding forever.
const maxLevelDepth = 4096

// settle advances s through every non-consuming construct — Concat
// descending into its next child, Reference resolving and descending into
// the named production, Multiply forced below its minimum — until the
// cursor sits at a TokenTerm or at an Alternate/Multiply that needs the
// incoming token to resolve.
func (p *Parser) settle(s *ParserState) settleStatus {
	for {
		top := s.top()
		if top == nil {
			return settleDone
		}
		if len(s.stack) > maxLevelDepth {
			return settleBlocked
		}

		if top.Kind == LevelProduction {
			if top.expanded {
				// Its single child term level should already have been
				// popped and delivered by (*Parser).deliver, which also
				// pops the production itself; lingering here means the
				// child never completed cleanly.
				return settleBlocked
			}
			top.expanded = true
			h := p.handlerFor(top.Def)
			h.OnProdStart(p, s, top)
			if len(s.pendingModifiers) > 0 {
				top.Modifiers = append(top.Modifiers, s.pendingModifiers...)
				s.pendingModifiers = nil
			}
			if top.Def.Term == nil {
				p.deliver(s, nil)
				continue
			}
			child := newTermLevel(top.Module, top.Def.Term)
			if pos, ok := top.Def.ErrorSyncAt(); ok && top.Def.Term.Kind() == grammar.KindConcat {
				child.ErrSync = true
				child.SyncPos = pos
			}
			s.push(child)
			h.OnTermStart(p, s, child)
			continue
		}

		switch top.Term.Kind() {
		case grammar.KindConcat:
			children := top.Term.ConcatChildren()
			if top.PosID >= len(children) {
				return settleBlocked
			}
			child := newTermLevel(top.Module, children[top.PosID])
			s.push(child)
			continue

		case grammar.KindReference:
			if top.PosID != 0 {
				return settleBlocked
			}
			def, err := p.graph.Resolve(top.Term.RefOf(), grammar.TraversalContext{Module: top.Module, Self: nearestSelf(s)})
			if err != nil {
				return settleBlocked
			}
			top.PosID = 1
			s.push(newProductionLevel(owningModule(p, top.Module, def), def))
			continue

		case grammar.KindMultiply:
			min, max := top.Term.MultiplyMin(), top.Term.MultiplyMax()
			reps := top.PosID
			if reps < min {
				p.multiplyContinue(s, top)
				continue
			}
			if max != grammar.Endless && reps >= max {
				s.pop()
				p.deliver(s, []ast.Node{wrapMultiplyList(top)})
				continue
			}
			return settleDecisionMultiply

		case grammar.KindAlternate:
			if top.PosID == -1 {
				return settleDecisionAlternate
			}
			return settleBlocked

		default: // TokenTerm, ConstTerm, CharGroupTerm: leaves, wait for input.
			return settleReady
		}
	}
}

// deliver hands items, already shaped by whatever level produced them, to
// s's new top level, cascading further completions (a Concat that has now
// received its last child, a production whose sole term level just
// finished) until it reaches a level that still needs more input or more
// repetitions.
func (p *Parser) deliver(s *ParserState, items []ast.Node) {
	for {
		top := s.top()
		if top == nil {
			if len(items) > 0 {
				s.lastProduced = items[0]
			}
			return
		}

		if top.Kind == LevelProduction {
			top.Children = append(top.Children, items...)
			s.pop()
			h := p.handlerFor(top.Def)
			h.OnLevelExit(p, s, top)
			node := h.OnProdEnd(p, s, top)
			if node == nil && top.Def != nil && top.Def.Flags.Has(grammar.EnforcesProdObj) {
				// this production must contribute exactly one node even
				// when its handler had nothing to assemble.
				node = &ast.ListNode{Base: ast.Base{Prod: defID(top.Def)}}
			}
			for _, mod := range top.Modifiers {
				if node != nil {
					node.AddModifier(mod)
				}
			}
			if node != nil {
				s.lastProduced = node
				items = []ast.Node{node}
			} else {
				items = nil
			}
			continue
		}

		switch top.Term.Kind() {
		case grammar.KindConcat:
			top.Children = append(top.Children, items...)
			top.PosID++
			children := top.Term.ConcatChildren()
			if top.PosID < len(children) {
				return
			}
			flat := top.Children
			s.pop()
			items = flat
			continue

		case grammar.KindMultiply:
			top.Children = append(top.Children, wrapAsOneMultiplyItem(items))
			top.PosID++
			return

		case grammar.KindAlternate:
			top.Children = append(top.Children, items...)
			s.pop()
			route := &ast.RouteNode{RouteIndex: top.PosID}
			if len(top.Children) > 0 {
				route.Data = top.Children[0]
			}
			items = []ast.Node{route}
			continue

		case grammar.KindReference:
			s.pop()
			continue

		default:
			// TokenTerm levels are popped explicitly by consume, never
			// reached here.
			return
		}
	}
}

func wrapAsOneMultiplyItem(items []ast.Node) ast.Node {
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 0 {
		return nil
	}
	list := &ast.ListNode{}
	for _, it := range items {
		list.Append(it)
	}
	return list
}

func wrapMultiplyList(lvl *Level) ast.Node {
	list := &ast.ListNode{}
	for _, it := range lvl.Children {
		list.Append(it)
	}
	return list
}

// multiplyContinue pushes one more repetition of lvl's child term onto s.
func (p *Parser) multiplyContinue(s *ParserState, lvl *Level) {
	s.push(newTermLevel(lvl.Module, lvl.Term.MultiplyChild()))
}

// multiplyStop retires lvl, delivering its accumulated repetitions as a
// single ast.ListNode.
func (p *Parser) multiplyStop(s *ParserState, lvl *Level) {
	s.pop()
	p.deliver(s, []ast.Node{wrapMultiplyList(lvl)})
}

// tokenMatchesTerm reports whether tok can be consumed by a ready TokenTerm
// level.
func tokenMatchesTerm(term *grammar.Term, tok lex.Token) bool {
	if term == nil || term.Kind() != grammar.KindTokenTerm {
		return false
	}
	if text := term.MatchText(); text != "" {
		return tok.Text == text
	}
	return tok.Name == term.TokenID()
}

// consume retires a ready TokenTerm level against tok, building its leaf AST
// node and delivering it upward.
func (p *Parser) consume(s *ParserState, tok lex.Token) {
	lvl := s.pop()
	node := p.buildLeaf(lvl.Term, tok)
	p.deliver(s, []ast.Node{node})
}

func (p *Parser) buildLeaf(term *grammar.Term, tok lex.Token) ast.Node {
	if fn, ok := p.tokenBuilders[tok.Name]; ok {
		return fn(tok)
	}
	loc := tok.Loc
	return &ast.IdentifierNode{Base: ast.Base{Loc: &loc}, Name: tok.Text}
}

// resolveDecisions settles every state in frontier against tok, branching at
// every Alternate/Multiply decision point via testState until each surviving
// candidate is either ready to consume tok or fully reduced, then collapses
// duplicate fates.
func (p *Parser) resolveDecisions(frontier []*ParserState, tok lex.Token) []*ParserState {
	for {
		var next []*ParserState
		branched := false
		for _, s := range frontier {
			switch p.settle(s) {
			case settleReady, settleDone:
				next = append(next, s)
			case settleDecisionAlternate:
				branched = true
				next = append(next, p.branchAlternate(s, tok)...)
			case settleDecisionMultiply:
				branched = true
				next = append(next, p.branchMultiply(s, tok)...)
			case settleBlocked:
				// dead branch, dropped
			}
		}
		frontier = dedupeStates(next)
		if !branched {
			return frontier
		}
	}
}

func (p *Parser) branchAlternate(s *ParserState, tok lex.Token) []*ParserState {
	top := s.top()
	alts := top.Term.Alternatives()
	filter := top.Term.Filter()
	var winners []*ParserState
	for i, alt := range alts {
		if filter != nil && !filter(i) {
			continue
		}
		cand := s.clone()
		ctop := cand.top()
		ctop.PosID = i
		cand.push(newTermLevel(ctop.Module, alt))
		if p.testState(cand.clone(), tok, 0) {
			winners = append(winners, cand)
		}
	}
	return winners
}

func (p *Parser) branchMultiply(s *ParserState, tok lex.Token) []*ParserState {
	contCand := s.clone()
	p.multiplyContinue(contCand, contCand.top())
	contOK := p.testState(contCand.clone(), tok, 0)

	stopCand := s.clone()
	p.multiplyStop(stopCand, stopCand.top())
	stopOK := p.testState(stopCand.clone(), tok, 0)

	var winners []*ParserState
	// Greedy tie-break: when both the repeat and the exit branch could
	// consume the next token, only the repeat branch survives, so "*" and
	// "+" repetitions behave intuitively.
	if contOK {
		winners = append(winners, contCand)
	} else if stopOK {
		winners = append(winners, stopCand)
	}
	return winners
}

// testState is a bounded-depth simulation of whether cand can eventually
// consume tok, trying every nested decision along the way. It mutates cand
// (always a throwaway clone) freely.
func (p *Parser) testState(cand *ParserState, tok lex.Token, depth int) bool {
	if depth > p.maxLookahead {
		return false
	}
	switch p.settle(cand) {
	case settleReady:
		return tokenMatchesTerm(cand.top().Term, tok)
	case settleDone, settleBlocked:
		return false
	case settleDecisionAlternate:
		top := cand.top()
		filter := top.Term.Filter()
		for i, alt := range top.Term.Alternatives() {
			if filter != nil && !filter(i) {
				continue
			}
			sub := cand.clone()
			stop := sub.top()
			stop.PosID = i
			sub.push(newTermLevel(stop.Module, alt))
			if p.testState(sub, tok, depth+1) {
				return true
			}
		}
		return false
	case settleDecisionMultiply:
		contSub := cand.clone()
		p.multiplyContinue(contSub, contSub.top())
		if p.testState(contSub, tok, depth+1) {
			return true
		}
		stopSub := cand.clone()
		p.multiplyStop(stopSub, stopSub.top())
		if p.testState(stopSub, tok, depth+1) {
			return true
		}
		return false
	}
	return false
}

func dedupeStates(in []*ParserState) []*ParserState {
	var out []*ParserState
	var sigs [][]levelSig
	for _, s := range in {
		sig := s.signature()
		dup := false
		for _, existing := range sigs {
			if sigsEqual(sig, existing) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
			sigs = append(sigs, sig)
		}
	}
	return out
}

// owningModule is a simplifying approximation: a resolved definition's term
// tree is walked in the module context it was resolved against, rather than
// re-deriving the module that textually declared it (the Grammar Graph does
// not track that separately — a definition's Reference children resolve
// relative to whatever module a Reference to it was reached through, which
// matches this module's own QualModule/QualNone resolution rules).
func owningModule(p *Parser, from *grammar.Module, def *grammar.SymbolDefinition) *grammar.Module {
	return from
}

// nearestSelf finds the SymbolDefinition of the innermost production level
// still on s's stack, the context a self./self.base Reference resolves
// against.
func nearestSelf(s *ParserState) *grammar.SymbolDefinition {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].Kind == LevelProduction {
			return s.stack[i].Def
		}
	}
	return nil
}
