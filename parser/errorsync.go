package parser

import (
	"github.com/dekarrin/suhuf/lex"
)

// beginErrorSync fires when tok killed every remaining branch: it raises
// UnexpectedToken at most once per parse, then looks for the deepest level
// with a still-reachable error-sync position among the branches that just
// died. If one exists, the parser enters recovery: it skips tokens,
// tracking the module's registered open/close block pairs at nest depth,
// until the sync token appears at depth zero, and resumes parsing from
// that token.
func (p *Parser) beginErrorSync(tok lex.Token, deadFrontier []*ParserState) {
	p.raiseUnexpectedOnce(tok)

	if len(deadFrontier) == 0 {
		deadFrontier = p.states
	}

	lvl, owner := findErrorSync(deadFrontier)
	if lvl == nil {
		p.lastDead = deadFrontier
		p.states = nil
		return
	}

	recovered := owner.clone()
	// Discard every level pushed after the sync point; the sync level
	// itself stays, with its cursor moved to the sync position, so the
	// sync token is consumed through the normal path once it arrives.
	for i, l := range recovered.stack {
		if l.signature() == lvl.signature() {
			recovered.stack = recovered.stack[:i+1]
			break
		}
	}
	top := recovered.top()
	top.PosID = lvl.SyncPos

	p.recovering = true
	p.recoverModule = lvl.Module
	p.recoverDepth = 0
	p.recoverState = recovered
	p.recoverTerm = lvl.Term.ConcatChildren()[lvl.SyncPos]
	// the erroring token itself may open a block; recovery then starts one
	// level deep so the matching close token is not mistaken for the
	// resumption point.
	for _, pair := range lvl.Module.ErrorSyncBlockPairs() {
		if tok.Text == pair[0] {
			p.recoverDepth = 1
			break
		}
	}
	p.notifyTrace("error sync: skipping after %q until sync token", tok.Text)
}

// findErrorSync searches each dead-end state's stack, from the top down,
// for the first Concat level flagged ErrSync whose sync position has not
// yet been passed, returning it and the state it was found in.
func findErrorSync(states []*ParserState) (*Level, *ParserState) {
	for _, s := range states {
		for i := len(s.stack) - 1; i >= 0; i-- {
			lvl := s.stack[i]
			if lvl.ErrSync && lvl.PosID <= lvl.SyncPos {
				return lvl, s
			}
		}
	}
	return nil, nil
}

// feedRecovery consumes tok while p.recovering: block-pair tokens adjust
// the nesting depth, the sync token at depth zero ends recovery and is
// re-fed through the normal consumption path, and everything else is
// discarded.
func (p *Parser) feedRecovery(tok lex.Token) {
	if tok.IsEOF() {
		p.recovering = false
		if p.recoverState != nil {
			p.lastDead = []*ParserState{p.recoverState}
			p.recoverState = nil
		}
		p.states = nil
		return
	}

	if p.recoverDepth == 0 && tokenMatchesTerm(p.recoverTerm, tok) {
		p.recovering = false
		p.states = []*ParserState{p.recoverState}
		p.recoverState = nil
		p.notifyTrace("error sync: resumed at %q", tok.Text)
		p.Feed(tok)
		return
	}

	for _, pair := range p.recoverModule.ErrorSyncBlockPairs() {
		switch tok.Text {
		case pair[0]:
			p.recoverDepth++
			return
		case pair[1]:
			if p.recoverDepth > 0 {
				p.recoverDepth--
			}
			return
		}
	}
	// not a block-pair token and not the sync token: just skip it.
}

// trackBlockPairs maintains the parse-wide stack of open block tokens so
// EndParsing can report an unclosed block at its opening location.
func (p *Parser) trackBlockPairs(tok lex.Token) {
	if p.graph == nil || p.graph.Root == nil {
		return
	}
	for _, pair := range p.graph.Root.ErrorSyncBlockPairs() {
		switch tok.Text {
		case pair[0]:
			p.openBlocks = append(p.openBlocks, tok)
			return
		case pair[1]:
			if n := len(p.openBlocks); n > 0 && p.openBlocks[n-1].Text == pair[0] {
				p.openBlocks = p.openBlocks[:n-1]
			}
			return
		}
	}
}
