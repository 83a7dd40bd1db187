// Package parser implements a multi-branch speculative parser: unlike an
// LL(k)/LR(k) table-driven parser, it walks a live, mutable grammar.Graph
// directly, keeping every grammatically viable
// interpretation of the input alive as a separate ParserState until enough
// lookahead resolves which one the grammar actually intends.
package parser

import (
	"fmt"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/lex"
	"github.com/dekarrin/suhuf/notice"
)

// TraceListener receives a line of diagnostic trace output describing the
// parser's branch decisions as they happen.
type TraceListener func(msg string)

// Parser drives the multi-branch protocol over a grammar.Graph, producing a
// single ast.Node per BeginParsing/Feed*/EndParsing cycle.
type Parser struct {
	graph *grammar.Graph
	store *notice.Store

	handlers      map[string]Handler
	tokenBuilders map[string]func(lex.Token) ast.Node

	states    []*ParserState
	completed []*ParserState

	unexpectedRaised bool
	maxLookahead     int

	recovering    bool
	recoverModule *grammar.Module
	recoverDepth  int
	recoverState  *ParserState
	recoverTerm   *grammar.Term

	// lastDead holds the final frontier of a parse that died with no
	// recovery point, so EndParsing can still salvage its partial AST.
	lastDead []*ParserState

	openBlocks []lex.Token

	activeModifier *modifierFrame

	traceListeners []TraceListener
}

// NewParser builds a Parser over graph, filing notices in store.
func NewParser(graph *grammar.Graph, store *notice.Store) *Parser {
	return &Parser{
		graph:         graph,
		store:         store,
		handlers:      make(map[string]Handler),
		tokenBuilders: make(map[string]func(lex.Token) ast.Node),
		maxLookahead:  64,
	}
}

// RegisterHandler names a Handler a production can select via its
// grammar.SymbolDefinition.Handler field.
func (p *Parser) RegisterHandler(name string, h Handler) {
	p.handlers[name] = h
}

// RegisterTokenBuilder installs the leaf-node constructor used whenever a
// token named tokenName is consumed, overriding the default
// (*ast.IdentifierNode wrapping its raw text).
func (p *Parser) RegisterTokenBuilder(tokenName string, fn func(lex.Token) ast.Node) {
	p.tokenBuilders[tokenName] = fn
}

// SetMaxLookahead bounds how deep testState's nested-decision search may
// recurse while resolving a single token.
func (p *Parser) SetMaxLookahead(n int) {
	if n > 0 {
		p.maxLookahead = n
	}
}

// RegisterTraceListener subscribes fn to every trace line this Parser
// emits for the remainder of its lifetime.
func (p *Parser) RegisterTraceListener(fn TraceListener) {
	p.traceListeners = append(p.traceListeners, fn)
}

func (p *Parser) notifyTrace(format string, args ...any) {
	if len(p.traceListeners) == 0 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	for _, l := range p.traceListeners {
		l(msg)
	}
}

func (p *Parser) handlerFor(def *grammar.SymbolDefinition) Handler {
	if def != nil && def.Handler != "" {
		if h, ok := p.handlers[def.Handler]; ok {
			return h
		}
	}
	return GenericParsingHandler
}

// BeginParsing starts a new parse rooted at start, resolved against mod.
func (p *Parser) BeginParsing(mod *grammar.Module, start grammar.Reference) error {
	def, err := p.graph.Resolve(start, grammar.TraversalContext{Module: mod})
	if err != nil {
		return fmt.Errorf("suhuf/parser: resolving start reference: %w", err)
	}
	s := newParserState()
	s.push(newProductionLevel(mod, def))
	p.states = []*ParserState{s}
	p.completed = nil
	p.unexpectedRaised = false
	p.openBlocks = nil
	p.notifyTrace("begin parsing at %q", def.Name)
	return nil
}

// Feed advances every active ParserState by one token: it resolves pending
// Alternate/Multiply decisions using tok as lookahead, consumes tok against
// every resulting ready state, and drops any branch that cannot.
func (p *Parser) Feed(tok lex.Token) {
	if p.recovering {
		p.feedRecovery(tok)
		return
	}

	if p.activeModifier != nil {
		p.feedModifier(tok)
		return
	}

	p.trackBlockPairs(tok)

	if p.tryEnterModifier(tok) {
		return
	}

	if len(p.states) == 0 {
		p.raiseUnexpectedOnce(tok)
		return
	}

	frontier := p.resolveDecisions(p.states, tok)

	var survivors []*ParserState
	for _, s := range frontier {
		top := s.top()
		if top == nil {
			p.completed = append(p.completed, s)
			continue
		}
		if !tokenMatchesTerm(top.Term, tok) {
			continue
		}
		p.consume(s, tok)
		survivors = append(survivors, s)
	}
	survivors = dedupeStates(survivors)

	if len(survivors) == 0 {
		if len(p.completed) > 0 {
			p.states = nil
			return
		}
		p.beginErrorSync(tok, frontier)
		return
	}

	p.notifyTrace("consumed %q (%s), %d active branch(es)", tok.Text, tok.Name, len(survivors))
	p.states = survivors
}

func (p *Parser) raiseUnexpectedOnce(tok lex.Token) {
	if p.unexpectedRaised {
		return
	}
	p.unexpectedRaised = true
	p.store.Add(notice.Notice{
		Code:     "UnexpectedToken",
		Severity: notice.Error,
		Message:  fmt.Sprintf("unexpected token %q", tok.Text),
		Location: []notice.SourceLocation{tok.Loc},
	})
}

// EndParsing folds out every remaining active state against end-of-input —
// forcing Multiply exits and trying Alternate branches that lead to
// completion with no further tokens available — and returns the surviving
// parse.
func (p *Parser) EndParsing() (ast.Node, error) {
	if frame := p.activeModifier; frame != nil {
		p.activeModifier = nil
		p.finishModifier(frame)
	}

	remaining := p.states
	if p.recovering {
		p.recovering = false
		if p.recoverState != nil {
			remaining = append(remaining, p.recoverState)
			p.recoverState = nil
		}
	}

	finished := append([]*ParserState(nil), p.completed...)
	for _, s := range remaining {
		if p.foldout(s, 0) {
			finished = append(finished, s)
		}
	}

	if len(finished) == 0 {
		if n := len(p.openBlocks); n > 0 {
			open := p.openBlocks[n-1]
			p.store.Add(notice.Notice{
				Code:     "UnclosedBlock",
				Severity: notice.Blocker,
				Message:  fmt.Sprintf("block opened by %q is never closed", open.Text),
				Location: []notice.SourceLocation{open.Loc},
			})
		} else {
			p.store.Add(notice.Notice{Code: "IncompleteParse", Severity: notice.Blocker, Message: "input ended without completing a parse"})
		}
		salv := remaining
		if len(salv) == 0 {
			salv = p.lastDead
		}
		return p.salvage(salv), nil
	}

	winner := finished[0]
	p.store.Promote(winner.BranchID())
	for _, s := range finished[1:] {
		p.store.Discard(s.BranchID())
	}
	p.notifyTrace("parse complete, %d candidate(s) reached completion", len(finished))
	return winner.lastProduced, nil
}

// salvage assembles whatever partial AST a failed parse built, so callers
// can still inspect it alongside the notice log: every child accumulated on
// any level of the most advanced remaining state, bottom-up, gathered into
// one scope.
func (p *Parser) salvage(remaining []*ParserState) ast.Node {
	scope := &ast.ScopeNode{}
	if len(remaining) == 0 {
		return scope
	}
	s := remaining[0]
	for _, lvl := range s.stack {
		for _, child := range flattenParts(lvl.Children) {
			if child != nil {
				scope.Append(child)
			}
		}
	}
	if len(scope.Items) == 0 && s.lastProduced != nil {
		scope.Append(s.lastProduced)
	}
	return scope
}

// foldout tries to drive s to completion using no further input, in place.
func (p *Parser) foldout(s *ParserState, depth int) bool {
	if depth > p.maxLookahead {
		return false
	}
	switch p.settle(s) {
	case settleDone:
		return true
	case settleReady, settleBlocked:
		return false
	case settleDecisionAlternate:
		top := s.top()
		filter := top.Term.Filter()
		for i, alt := range top.Term.Alternatives() {
			if filter != nil && !filter(i) {
				continue
			}
			cand := s.clone()
			ctop := cand.top()
			ctop.PosID = i
			cand.push(newTermLevel(ctop.Module, alt))
			if p.foldout(cand, depth+1) {
				*s = *cand
				return true
			}
		}
		return false
	case settleDecisionMultiply:
		top := s.top()
		if top.PosID < top.Term.MultiplyMin() {
			return false
		}
		cand := s.clone()
		p.multiplyStop(cand, cand.top())
		if p.foldout(cand, depth+1) {
			*s = *cand
			return true
		}
		return false
	}
	return false
}
