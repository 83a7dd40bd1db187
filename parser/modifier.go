package parser

import (
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/lex"
	"github.com/dekarrin/suhuf/notice"
)

// modifierFrame tracks a ParsingDimension side-parse entered mid-stream: a
// leading or trailing sentinel token hands control to a separate small
// grammar until it completes.
type modifierFrame struct {
	trailing bool
	loc      notice.SourceLocation
	inner    *Parser
}

// lookupDimension searches every module reachable from p's active states
// (plus the graph root) for a ParsingDimension whose EntryTokenText matches
// text.
func (p *Parser) lookupDimension(text string) (grammar.ParsingDimension, *grammar.Module, bool) {
	seen := make(map[*grammar.Module]bool)
	check := func(mod *grammar.Module) (grammar.ParsingDimension, bool) {
		if mod == nil || seen[mod] {
			return grammar.ParsingDimension{}, false
		}
		seen[mod] = true
		for _, dim := range mod.ParsingDimensions() {
			if dim.EntryTokenText == text {
				return dim, true
			}
		}
		return grammar.ParsingDimension{}, false
	}

	if dim, ok := check(p.graph.Root); ok {
		return dim, p.graph.Root, true
	}
	for _, s := range p.states {
		for _, lvl := range s.stack {
			if dim, ok := check(lvl.Module); ok {
				return dim, lvl.Module, true
			}
		}
	}
	return grammar.ParsingDimension{}, nil, false
}

// tryEnterModifier checks whether tok is the entry sentinel of a registered
// ParsingDimension and, if so, spins up a nested Parser to consume the side
// grammar starting at that dimension's Start reference.
func (p *Parser) tryEnterModifier(tok lex.Token) bool {
	dim, mod, ok := p.lookupDimension(tok.Text)
	if !ok {
		return false
	}
	inner := NewParser(p.graph, p.store)
	inner.handlers = p.handlers
	inner.tokenBuilders = p.tokenBuilders
	inner.maxLookahead = p.maxLookahead
	if err := inner.BeginParsing(mod, dim.Start); err != nil {
		p.store.Add(notice.Notice{
			Code:     "MislocatedModifier",
			Severity: notice.Warning,
			Message:  "modifier dimension entered at an unresolvable start reference",
			Location: []notice.SourceLocation{tok.Loc},
		})
		return false
	}
	p.activeModifier = &modifierFrame{trailing: dim.Trailing, loc: tok.Loc, inner: inner}
	return true
}

// feedModifier routes tok to the active modifier's nested parse. The side
// parse ends on the first token it cannot consume; that token then re-enters
// the main parse, with the finished modifier node queued for attachment.
func (p *Parser) feedModifier(tok lex.Token) {
	frame := p.activeModifier
	frame.inner.Feed(tok)

	if len(frame.inner.states) != 0 {
		return // side parse still in progress
	}

	p.activeModifier = nil
	p.finishModifier(frame)
	// the token that ended the side parse was not consumed by it.
	p.Feed(tok)
}

// finishModifier closes frame's nested parse and attaches its result:
// leading modifiers queue on pendingModifiers for the next production to
// claim; trailing modifiers attach directly to the most recently completed
// node, or raise a diagnostic if there is none to attach to.
func (p *Parser) finishModifier(frame *modifierFrame) {
	node, err := frame.inner.EndParsing()
	if err != nil || node == nil {
		p.store.Add(notice.Notice{
			Code:     "MislocatedModifier",
			Severity: notice.Warning,
			Message:  "modifier did not produce a value",
			Location: []notice.SourceLocation{frame.loc},
		})
		return
	}

	if !frame.trailing {
		for _, s := range p.states {
			s.pendingModifiers = append(s.pendingModifiers, node)
		}
		return
	}

	attached := false
	for _, s := range p.states {
		if s.lastProduced != nil {
			s.lastProduced.AddModifier(node)
			attached = true
		}
	}
	if !attached {
		p.store.Add(notice.Notice{
			Code:     "MislocatedModifier",
			Severity: notice.Warning,
			Message:  "trailing modifier has no preceding production to attach to",
			Location: []notice.SourceLocation{frame.loc},
		})
	}
}
