// Package suhuf is a language front end built around a live grammar graph:
// a caller-constructed grammar drives a multi-branch speculative parser
// whose handlers build an AST, and a seeker resolves names over that AST.
// The concrete keyword dictionary of the language being parsed — Latin,
// Arabic, or both — is data supplied through the grammar, not part of this
// module.
package suhuf

import (
	"fmt"
	"io"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/lex"
	"github.com/dekarrin/suhuf/notice"
	"github.com/dekarrin/suhuf/parser"
	"github.com/dekarrin/suhuf/seeker"
)

// Frontend wires the front-end phases together for one grammar module:
// lexing, parsing, and name resolution, all reporting through one shared
// notice store.
type Frontend struct {
	Graph  *grammar.Graph
	Module *grammar.Module
	Store  *notice.Store
	Lexer  *lex.Lexer
	Parser *parser.Parser
	Seeker *seeker.Seeker
}

// New creates a Frontend for mod, which must carry a start reference (as
// every Factory-built module does).
func New(mod *grammar.Module) (*Frontend, error) {
	if mod == nil {
		return nil, fmt.Errorf("suhuf: nil grammar module")
	}
	if _, err := mod.ResolveStart(); err != nil {
		return nil, fmt.Errorf("suhuf: %w", err)
	}

	store := notice.NewStore()
	graph := grammar.NewGraphWithRoot(mod)
	return &Frontend{
		Graph:  graph,
		Module: mod,
		Store:  store,
		Lexer:  lex.NewLexer(mod, store),
		Parser: parser.NewParser(graph, store),
		Seeker: seeker.New(store),
	}, nil
}

// AnalyzeString lexes and parses src (attributed to file in diagnostics)
// and returns the resulting AST. The AST may be partial when the notice
// store holds blockers; callers decide whether to proceed.
func (fe *Frontend) AnalyzeString(src, file string) (ast.Node, error) {
	if err := fe.Parser.BeginParsing(fe.Module, *fe.Module.Start); err != nil {
		return nil, err
	}
	ts := fe.Lexer.Lex(src, file)
	for ts.HasNext() {
		fe.Parser.Feed(ts.Next())
	}
	return fe.Parser.EndParsing()
}

// Analyze reads all of r and analyzes it as AnalyzeString does.
func (fe *Frontend) Analyze(r io.Reader, file string) (ast.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("suhuf: reading %s: %w", file, err)
	}
	return fe.AnalyzeString(string(data), file)
}

// Resolve finds the first node ref resolves to within target, a
// convenience over Seeker.Foreach for the common did-it-resolve case.
func (fe *Frontend) Resolve(ref, target ast.Node) (ast.Node, bool) {
	var out ast.Node
	found := fe.Seeker.Foreach(ref, target, func(m *seeker.Match) seeker.Verb {
		out = m.Node
		return seeker.Stop
	}, 0)
	return out, found
}
